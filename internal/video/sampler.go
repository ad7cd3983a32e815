package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"matchtracker/internal/config"
	"matchtracker/internal/logging"
	"matchtracker/internal/screen"
)

const gib = 1 << 30

// Sampler extracts frames from recordings with ffmpeg.
type Sampler struct {
	ffmpeg    string
	interval  time.Duration
	framesDir string
	minFree   uint64
	statfs    statfsFunc
	logger    *slog.Logger
}

// NewSampler builds a Sampler from the video and paths configuration.
func NewSampler(cfg *config.Config, logger *slog.Logger) *Sampler {
	binary := strings.TrimSpace(cfg.Video.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	minFree := uint64(0)
	if cfg.Video.MinFreeGiB > 0 {
		minFree = uint64(cfg.Video.MinFreeGiB) * gib
	}
	return &Sampler{
		ffmpeg:    binary,
		interval:  cfg.FrameInterval(),
		framesDir: cfg.Paths.FramesDir,
		minFree:   minFree,
		statfs:    realStatfs,
		logger:    logging.NewComponentLogger(logger, "video"),
	}
}

// FramesDir returns the directory frames of src are written to.
func (s *Sampler) FramesDir(key string) string {
	return filepath.Join(s.framesDir, key)
}

// Args returns the ffmpeg arguments used to sample src into dir.
func (s *Sampler) Args(src, dir string) []string {
	rate := "1/" + strconv.FormatFloat(s.interval.Seconds(), 'f', -1, 64)
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-an",
		"-sn",
		"-dn",
		"-vf", "fps=" + rate,
		"-start_number", "0",
		filepath.Join(dir, FramePattern),
	}
}

// SampleFrames writes one frame per interval of src and returns them in
// order. Frames left over from an earlier sampling of the same key are
// removed first.
func (s *Sampler) SampleFrames(ctx context.Context, src Source) ([]screen.Frame, error) {
	if s.interval <= 0 {
		return nil, fmt.Errorf("sample frames: invalid interval %v", s.interval)
	}
	dir := s.FramesDir(src.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}
	if err := checkFreeSpace(s.statfs, dir, s.minFree); err != nil {
		return nil, err
	}
	if err := removeFrames(dir); err != nil {
		return nil, fmt.Errorf("clear old frames: %w", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("sampling frames",
		logging.String("source", src.Path),
		logging.Duration("interval", s.interval),
		logging.String("frames_dir", dir),
	)
	started := time.Now()

	cmd := exec.CommandContext(ctx, s.ffmpeg, s.Args(src.Path, dir)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg sample: %v: %s", ErrSourceUnreadable, err, strings.TrimSpace(string(output)))
	}

	frames, err := ListFrames(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no frames for %s", ErrSourceUnreadable, src.Path)
	}
	logger.Info("frames sampled",
		logging.Int("frames", len(frames)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return frames, nil
}
