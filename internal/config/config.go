package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output directory configuration.
type Paths struct {
	FramesDir  string `toml:"frames_dir"`
	ResultsDir string `toml:"results_dir"`
	LogDir     string `toml:"log_dir"`
}

// Video contains frame sampling configuration.
type Video struct {
	// FrameInterval is the spacing in seconds between sampled frames.
	FrameInterval float64 `toml:"frame_interval"`
	FFmpegBinary  string  `toml:"ffmpeg_binary"`
	FFprobeBinary string  `toml:"ffprobe_binary"`
	// MinFreeGiB is the free space required in frames_dir before sampling. 0 disables the check.
	MinFreeGiB int `toml:"min_free_gib"`
}

// Screen contains per-label template matching configuration. Regions are
// [x1, y1, x2, y2] ratios of the frame width and height.
type Screen struct {
	MatchingTemplate  string    `toml:"matching_template"`
	WinTemplate       string    `toml:"win_template"`
	LoseTemplate      string    `toml:"lose_template"`
	MatchingThreshold float64   `toml:"matching_threshold"`
	WinThreshold      float64   `toml:"win_threshold"`
	LoseThreshold     float64   `toml:"lose_threshold"`
	MatchingROI       []float64 `toml:"matching_roi"`
	WinROI            []float64 `toml:"win_roi"`
	LoseROI           []float64 `toml:"lose_roi"`
	Workers           int       `toml:"workers"`
}

// Boundary contains match boundary scan policy.
type Boundary struct {
	// SkipOtherFrames drops frames labelled other before the scan so that a
	// matching run interrupted by other frames still pairs with its result.
	SkipOtherFrames bool `toml:"skip_other_frames"`
}

// OCR contains text recognition and correction configuration.
type OCR struct {
	Enabled        bool    `toml:"enabled"`
	Binary         string  `toml:"binary"`
	Language       string  `toml:"language"`
	PSM            int     `toml:"psm"`
	ScoreCutoff    float64 `toml:"score_cutoff"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Preprocess contains image preparation settings applied before recognition.
type Preprocess struct {
	Scale     int     `toml:"scale"`
	Alpha     float64 `toml:"alpha"`
	Beta      float64 `toml:"beta"`
	Threshold int     `toml:"threshold"`
	Sharpen   bool    `toml:"sharpen"`
}

// Fields contains the pre-match screen region of every extracted field.
type Fields struct {
	Player1Name []float64 `toml:"player1_name"`
	Player1Unit []float64 `toml:"player1_unit"`
	Player2Name []float64 `toml:"player2_name"`
	Player2Unit []float64 `toml:"player2_unit"`
	Player3Name []float64 `toml:"player3_name"`
	Player3Unit []float64 `toml:"player3_unit"`
	Player4Name []float64 `toml:"player4_name"`
	Player4Unit []float64 `toml:"player4_unit"`
}

// NamedRegion pairs a field key with its region ratios.
type NamedRegion struct {
	Name string
	ROI  []float64
}

// Ordered returns the field regions in output column order: all player
// names first, then all unit names.
func (f Fields) Ordered() []NamedRegion {
	return []NamedRegion{
		{Name: "player1_name", ROI: f.Player1Name},
		{Name: "player2_name", ROI: f.Player2Name},
		{Name: "player3_name", ROI: f.Player3Name},
		{Name: "player4_name", ROI: f.Player4Name},
		{Name: "player1_unit", ROI: f.Player1Unit},
		{Name: "player2_unit", ROI: f.Player2Unit},
		{Name: "player3_unit", ROI: f.Player3Unit},
		{Name: "player4_unit", ROI: f.Player4Unit},
	}
}

// Vocabulary contains candidate list locations.
type Vocabulary struct {
	PlayerNames string `toml:"player_names"`
	UnitNames   string `toml:"unit_names"`
}

// Cache contains result cache configuration.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	// VerifySource discards entries whose recorded source size or mtime no
	// longer matches the video. When false a mismatch is only logged.
	VerifySource bool `toml:"verify_source"`
}

// History contains run archive configuration.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for matchtracker.
//
// Configuration sections by subsystem:
//   - Paths: frame, result, and log directories
//   - Video: sampling interval and ffmpeg/ffprobe binaries
//   - Screen: templates, thresholds, and regions for screen labels
//   - Boundary: match boundary scan policy
//   - OCR: recognition engine and corrector cutoff
//   - Preprocess: image preparation before recognition
//   - Fields: per-field regions on the pre-match screen
//   - Vocabulary: candidate name lists
//   - Cache: per-video result cache
//   - History: SQLite run archive
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Video      Video      `toml:"video"`
	Screen     Screen     `toml:"screen"`
	Boundary   Boundary   `toml:"boundary"`
	OCR        OCR        `toml:"ocr"`
	Preprocess Preprocess `toml:"preprocess"`
	Fields     Fields     `toml:"fields"`
	Vocabulary Vocabulary `toml:"vocabulary"`
	Cache      Cache      `toml:"cache"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/matchtracker/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The second and third results report
// the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("matchtracker.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directories used by an analysis run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.FramesDir, c.Paths.ResultsDir, c.Paths.LogDir}
	if c.Cache.Enabled {
		dirs = append(dirs, c.Cache.Dir)
	}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FrameInterval returns the sampling interval as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Video.FrameInterval * float64(time.Second))
}

// OCRTimeout returns the per-field recognition timeout.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSeconds) * time.Second
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
