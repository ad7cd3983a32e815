package preflight

import (
	"context"

	"matchtracker/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
// Directories are expected to exist already (see config.EnsureDirectories).
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Frames directory", cfg.Paths.FramesDir))
	results = append(results, CheckDirectoryAccess("Results directory", cfg.Paths.ResultsDir))
	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Cache.Dir))
	}

	templates := []struct {
		name string
		path string
	}{
		{"Matching template", cfg.Screen.MatchingTemplate},
		{"Win template", cfg.Screen.WinTemplate},
		{"Lose template", cfg.Screen.LoseTemplate},
	}
	for _, tmpl := range templates {
		results = append(results, CheckReadableFile(tmpl.name, tmpl.path, true))
	}

	if cfg.OCR.Enabled {
		results = append(results, CheckReadableFile("Player name list", cfg.Vocabulary.PlayerNames, true))
		results = append(results, CheckReadableFile("Unit name list", cfg.Vocabulary.UnitNames, true))
		results = append(results, CheckOCRLanguages(ctx, cfg.OCR))
	}

	return results
}

// Blocking returns the failed checks that are not optional.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}
