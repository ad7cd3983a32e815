package main

import (
	"strings"
	"testing"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable([]string{"Video", "Matches"}, [][]string{
		{"session01", "3"},
		{"s2", "12"},
	}, 1)

	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.HasPrefix(lines[len(lines)-1], "╰") {
		t.Fatalf("expected rounded borders:\n%s", out)
	}
	requireContains(t, strings.ToUpper(lines[1]), "│ VIDEO     │ MATCHES │")
	requireContains(t, lines[3], "│ session01 │       3 │")
	requireContains(t, lines[4], "│ s2        │      12 │")
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Check", "Status", "Detail"}, [][]string{{"ffmpeg"}})
	requireContains(t, out, "│ ffmpeg │        │        │")
}

func TestRenderTableWithoutHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
