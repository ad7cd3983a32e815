package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"matchtracker/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "vs.png")
	testsupport.WriteFile(t, f, 10)

	if r := CheckReadableFile("tmpl", f, true); !r.Passed || !r.Optional {
		t.Fatalf("expected pass, got %+v", r)
	}
	if r := CheckReadableFile("tmpl", "", true); r.Passed || r.Detail != "not configured" {
		t.Fatalf("expected not configured, got %+v", r)
	}
	if r := CheckReadableFile("tmpl", filepath.Join(dir, "missing.png"), false); r.Passed || r.Optional {
		t.Fatalf("expected required failure, got %+v", r)
	}
	if r := CheckReadableFile("tmpl", dir, true); r.Passed {
		t.Fatalf("directory should not pass, got %+v", r)
	}
}

func TestRunAllOnlyBlocksOnDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if blocking := Blocking(results); len(blocking) != 0 {
		t.Fatalf("unexpected blocking results: %+v", blocking)
	}

	templateFailures := 0
	for _, r := range results {
		if !r.Passed && r.Optional {
			templateFailures++
		}
	}
	if templateFailures != 3 {
		t.Fatalf("expected 3 optional template failures, got %d in %+v", templateFailures, results)
	}

	cfg.Paths.ResultsDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	if blocking := Blocking(RunAll(context.Background(), cfg)); len(blocking) != 1 || blocking[0].Name != "Results directory" {
		t.Fatalf("expected results directory to block, got %+v", blocking)
	}
}

func TestRunAllChecksOCRLanguagesWhenEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOCR(), testsupport.WithScript("tesseract", "echo eng"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	blocking := Blocking(RunAll(context.Background(), cfg))
	if len(blocking) != 1 || blocking[0].Name != "OCR languages" {
		t.Fatalf("expected missing jpn data to block, got %+v", blocking)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.OCR.Binary = "clearly-not-present-binary"
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("expected stubbed ffmpeg and ffprobe, got %+v", statuses)
	}
	if statuses[2].Available || !statuses[2].Optional {
		t.Fatalf("expected optional missing tesseract, got %+v", statuses[2])
	}
}
