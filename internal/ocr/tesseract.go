package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"matchtracker/internal/config"
	"matchtracker/internal/imaging"
)

// Tesseract runs the tesseract CLI once per field, piping a PNG through
// stdin and reading the text from stdout.
type Tesseract struct {
	binary   string
	language string
	psm      int
	timeout  time.Duration
}

// NewTesseract configures a Tesseract recognizer from cfg.
func NewTesseract(cfg config.OCR) *Tesseract {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{
		binary:   binary,
		language: cfg.Language,
		psm:      cfg.PSM,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Args returns the command-line arguments passed to tesseract.
func (t *Tesseract) Args() []string {
	args := []string{"stdin", "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}
	return append(args, "--psm", strconv.Itoa(t.psm))
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	var input bytes.Buffer
	if err := imaging.EncodePNG(&input, img); err != nil {
		return "", fmt.Errorf("tesseract: encode input: %w", err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.binary, t.Args()...)
	cmd.Stdin = &input
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
