package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"matchtracker/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Templates are cleared and recognition is off so tests opt in explicitly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.FramesDir = filepath.Join(base, "frames")
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.History.Path = filepath.Join(base, "history.db")
	cfgVal.Screen.MatchingTemplate = ""
	cfgVal.Screen.WinTemplate = ""
	cfgVal.Screen.LoseTemplate = ""
	cfgVal.Screen.Workers = 2
	cfgVal.Vocabulary.PlayerNames = filepath.Join(base, "player_names.csv")
	cfgVal.Vocabulary.UnitNames = filepath.Join(base, "unit_names.csv")
	cfgVal.OCR.Enabled = false
	cfgVal.Video.MinFreeGiB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFrameInterval overrides the sampling interval in seconds.
func WithFrameInterval(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Video.FrameInterval = seconds
	}
}

// WithOCR enables field recognition.
func WithOCR() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OCR.Enabled = true
	}
}

// WithoutCache disables the result cache.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default matchtracker
// external binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "tesseract"}
		}
		for _, name := range names {
			writeStub(b, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithScript writes an executable shell script named name onto PATH.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		writeStub(b, name, "#!/bin/sh\n"+body+"\n")
	}
}

func writeStub(b *configBuilder, name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if filepath.SplitList(oldPath)[0] == binDir {
		return
	}
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.FramesDir)
}
