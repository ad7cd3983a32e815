package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"matchtracker/internal/config"
)

// Requirements lists the external binaries a run with cfg needs. Tesseract
// is optional unless recognition is enabled.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Video.FFmpegBinary,
			Description: "Samples frames from recordings",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Video.FFprobeBinary,
			Description: "Validates recordings before sampling",
		},
		{
			Name:        "Tesseract",
			Command:     cfg.OCR.Binary,
			Description: "Reads player and unit names",
			Optional:    !cfg.OCR.Enabled,
		},
	}
}

// CheckTesseractLanguages verifies that every language in a "+"-joined
// tesseract language spec has trained data installed.
func CheckTesseractLanguages(ctx context.Context, binary, language string) Status {
	status := Status{
		Name:        "Tesseract languages",
		Command:     strings.TrimSpace(binary),
		Description: fmt.Sprintf("Trained data for %s", language),
	}
	output, err := exec.CommandContext(ctx, status.Command, "--list-langs").CombinedOutput()
	if err != nil {
		status.Detail = fmt.Sprintf("list languages: %v", err)
		return status
	}

	installed := make(map[string]bool)
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		installed[line] = true
	}
	var missing []string
	for _, lang := range strings.Split(language, "+") {
		lang = strings.TrimSpace(lang)
		if lang != "" && !installed[lang] {
			missing = append(missing, lang)
		}
	}
	if len(missing) > 0 {
		status.Detail = "missing trained data: " + strings.Join(missing, ", ")
		return status
	}
	status.Available = true
	return status
}
