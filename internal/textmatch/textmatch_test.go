package textmatch

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"circled digit prefix", "①ν", "1ν"},
		{"interior spaces", "ν ガンダム", "νガンダム"},
		{"circled ten", "ガンダム ⑩", "ガンダム10"},
		{"surrounding whitespace", "\t Amuro \n", "Amuro"},
		{"all circled digits", "①②③④⑤⑥⑦⑧⑨⑩", "12345678910"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 100},
		{"", "", 100},
		{"", "abc", 0},
		{"abc", "abd", 100 * (1 - 2.0/6.0)},
		{"ガンダム", "ガンダ", 100 * (1 - 1.0/7.0)},
		{"Amur0", "Amuro", 80},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !approxEqual(got, tt.want) {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"騎士ガンダム", "KKCCCC"},
		{"νガンダム", "SCCCC"},
		{"Zガンダム2", "ECCCCN"},
		{"ＧＮ００１", "SSNNN"},
		{"a b　c", "EEE"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Pattern(tt.in); got != tt.want {
			t.Errorf("Pattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlayerScoreIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Amuro", "Amur0"},
		{"Char", "Charles"},
		{"", "Kamille"},
		{"シャア", "シャア・アズナブル"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		if PlayerScore(p[0], p[1]) != PlayerScore(p[1], p[0]) {
			t.Errorf("PlayerScore not symmetric for %q/%q: %v vs %v",
				p[0], p[1], PlayerScore(p[0], p[1]), PlayerScore(p[1], p[0]))
		}
	}
}

func TestPlayerScoreLengthPenalty(t *testing.T) {
	got := PlayerScore("abc", "abcd")
	want := 100*(1-1.0/7.0) - 5
	if !approxEqual(got, want) {
		t.Fatalf("PlayerScore = %v, want %v", got, want)
	}
}

func TestUnitScorePrefersSameCharacterClass(t *testing.T) {
	sameClass := UnitScore("ab", "ac")
	crossClass := UnitScore("ab", "a1")
	if !approxEqual(sameClass, 65) {
		t.Fatalf("UnitScore(ab, ac) = %v, want 65", sameClass)
	}
	if !approxEqual(crossClass, 50) {
		t.Fatalf("UnitScore(ab, a1) = %v, want 50", crossClass)
	}
	if got := UnitScore("abc", "ab"); !approxEqual(got, 70) {
		t.Fatalf("UnitScore(abc, ab) = %v, want 70", got)
	}
	if got := UnitScore("νガンダム", "νガンダム"); !approxEqual(got, 100) {
		t.Fatalf("UnitScore of identical names = %v, want 100", got)
	}
}

func TestCategoryForField(t *testing.T) {
	if CategoryForField("player3_name") != CategoryPlayer {
		t.Fatal("expected player category for name field")
	}
	if CategoryForField("player3_unit") != CategoryUnit {
		t.Fatal("expected unit category for unit field")
	}
}

func newTestCorrector(cutoff float64) *Corrector {
	players := NewVocabulary([]string{"Amuro", "Char", "Kamille"})
	units := NewVocabulary([]string{"νガンダム", "Hi-νガンダム", "騎士ガンダム", "ガンダムエピオン"})
	return NewCorrector(players, units, cutoff)
}

func TestCorrectReturnsClosestCandidate(t *testing.T) {
	c := newTestCorrector(30)
	tests := []struct {
		name     string
		raw      string
		category Category
		want     string
	}{
		{"player typo", "Amur0", CategoryPlayer, "Amuro"},
		{"unit with space", "ν ガンダム", CategoryUnit, "νガンダム"},
		{"unit prefix", "Hi-ν ガンダム", CategoryUnit, "Hi-νガンダム"},
		{"kanji unit", "騎土ガンダム", CategoryUnit, "騎士ガンダム"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Correct(tt.raw, tt.category)
			if !ok {
				t.Fatalf("Correct(%q) returned unknown", tt.raw)
			}
			if got != tt.want {
				t.Fatalf("Correct(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCorrectIsIdempotentForVocabularyMembers(t *testing.T) {
	c := newTestCorrector(30)
	for _, name := range c.players.Entries() {
		m, ok := c.Best(name, CategoryPlayer)
		if !ok || m.Candidate != name || !approxEqual(m.Score, 100) {
			t.Errorf("Best(%q) = %+v (ok=%v), want exact match at 100", name, m, ok)
		}
	}
	for _, name := range c.units.Entries() {
		m, ok := c.Best(name, CategoryUnit)
		if !ok || m.Candidate != name || !approxEqual(m.Score, 100) {
			t.Errorf("Best(%q) = %+v (ok=%v), want exact match at 100", name, m, ok)
		}
	}
}

func TestCorrectUnknownCases(t *testing.T) {
	c := newTestCorrector(30)
	if _, ok := c.Correct("", CategoryPlayer); ok {
		t.Error("expected empty text to be unknown")
	}
	if _, ok := c.Correct("   ", CategoryUnit); ok {
		t.Error("expected whitespace text to be unknown")
	}
	if _, ok := c.Correct("zzzzzzzzzzzz", CategoryPlayer); ok {
		t.Error("expected unrelated text below cutoff to be unknown")
	}
	empty := NewCorrector(Vocabulary{}, Vocabulary{}, 0)
	if _, ok := empty.Correct("Amuro", CategoryPlayer); ok {
		t.Error("expected empty vocabulary to yield unknown")
	}
}

func TestCorrectTieKeepsFirstCandidate(t *testing.T) {
	c := NewCorrector(NewVocabulary([]string{"abcx", "abcy"}), Vocabulary{}, 0)
	got, ok := c.Correct("abc", CategoryPlayer)
	if !ok || got != "abcx" {
		t.Fatalf("Correct = %q (ok=%v), want abcx", got, ok)
	}
}

func TestCorrectCutoffIsInclusive(t *testing.T) {
	// Ratio("Amur0", "Amuro") is exactly 80 with no length penalty.
	c := NewCorrector(NewVocabulary([]string{"Amuro"}), Vocabulary{}, 80)
	if got, ok := c.Correct("Amur0", CategoryPlayer); !ok || got != "Amuro" {
		t.Fatalf("expected score equal to cutoff to be accepted, got %q (ok=%v)", got, ok)
	}
	strict := NewCorrector(NewVocabulary([]string{"Amuro"}), Vocabulary{}, 80.5)
	if _, ok := strict.Correct("Amur0", CategoryPlayer); ok {
		t.Fatal("expected score below cutoff to be rejected")
	}
}

func TestReadVocabulary(t *testing.T) {
	input := "\ufeffAmuro\nChar,extra\n\n  \n\"Kamille, Bidan\"\n"
	vocab, err := ReadVocabulary(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadVocabulary: %v", err)
	}
	want := []string{"Amuro", "Char", "Kamille, Bidan"}
	got := vocab.Entries()
	if len(got) != len(want) {
		t.Fatalf("entries = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit_names.csv")
	if err := os.WriteFile(path, []byte("νガンダム\n騎士ガンダム\n"), 0o644); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}
	vocab, err := LoadVocabulary(path, nil)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if vocab.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", vocab.Len())
	}

	missing, err := LoadVocabulary(filepath.Join(dir, "absent.csv"), nil)
	if err != nil {
		t.Fatalf("expected missing vocabulary to be tolerated, got %v", err)
	}
	if missing.Len() != 0 {
		t.Fatalf("expected empty vocabulary, got %d entries", missing.Len())
	}
}
