package config

import (
	"fmt"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	if err := c.normalizeScreen(); err != nil {
		return err
	}
	c.normalizeOCR()
	if err := c.normalizeVocabulary(); err != nil {
		return err
	}
	if err := c.normalizeStores(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.FramesDir, err = expandPath(c.Paths.FramesDir); err != nil {
		return fmt.Errorf("paths.frames_dir: %w", err)
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.FFprobeBinary == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeScreen() error {
	// An empty template path stays empty: that label is simply not detected.
	for _, target := range []struct {
		key   string
		value *string
	}{
		{"screen.matching_template", &c.Screen.MatchingTemplate},
		{"screen.win_template", &c.Screen.WinTemplate},
		{"screen.lose_template", &c.Screen.LoseTemplate},
	} {
		trimmed := strings.TrimSpace(*target.value)
		if trimmed == "" {
			*target.value = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", target.key, err)
		}
		*target.value = expanded
	}
	if c.Screen.Workers <= 0 {
		c.Screen.Workers = runtime.NumCPU()
	}
	return nil
}

func (c *Config) normalizeOCR() {
	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	if c.OCR.Binary == "" {
		c.OCR.Binary = defaultOCRBinary
	}
	c.OCR.Language = strings.TrimSpace(c.OCR.Language)
	if c.OCR.Language == "" {
		c.OCR.Language = defaultOCRLanguage
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeout
	}
	if c.Preprocess.Scale <= 0 {
		c.Preprocess.Scale = defaultPreprocessScale
	}
}

func (c *Config) normalizeVocabulary() error {
	var err error
	if strings.TrimSpace(c.Vocabulary.PlayerNames) == "" {
		c.Vocabulary.PlayerNames = defaultPlayerNamesPath
	}
	if c.Vocabulary.PlayerNames, err = expandPath(strings.TrimSpace(c.Vocabulary.PlayerNames)); err != nil {
		return fmt.Errorf("vocabulary.player_names: %w", err)
	}
	if strings.TrimSpace(c.Vocabulary.UnitNames) == "" {
		c.Vocabulary.UnitNames = defaultUnitNamesPath
	}
	if c.Vocabulary.UnitNames, err = expandPath(strings.TrimSpace(c.Vocabulary.UnitNames)); err != nil {
		return fmt.Errorf("vocabulary.unit_names: %w", err)
	}
	return nil
}

func (c *Config) normalizeStores() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
