package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateScreen(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FrameInterval <= 0 {
		return errors.New("video.frame_interval must be positive (seconds)")
	}
	if c.Video.MinFreeGiB < 0 {
		return errors.New("video.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validateScreen() error {
	thresholds := []struct {
		key   string
		value float64
	}{
		{"screen.matching_threshold", c.Screen.MatchingThreshold},
		{"screen.win_threshold", c.Screen.WinThreshold},
		{"screen.lose_threshold", c.Screen.LoseThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", th.key)
		}
	}
	regions := []struct {
		key   string
		value []float64
	}{
		{"screen.matching_roi", c.Screen.MatchingROI},
		{"screen.win_roi", c.Screen.WinROI},
		{"screen.lose_roi", c.Screen.LoseROI},
	}
	for _, region := range regions {
		if err := validateRatioRegion(region.key, region.value); err != nil {
			return err
		}
	}
	if c.Screen.Workers <= 0 {
		return errors.New("screen.workers must be positive")
	}
	return nil
}

func (c *Config) validateOCR() error {
	if c.OCR.PSM < 0 || c.OCR.PSM > 13 {
		return errors.New("ocr.psm must be between 0 and 13")
	}
	if c.OCR.TimeoutSeconds <= 0 {
		return errors.New("ocr.timeout_seconds must be positive")
	}
	if c.Preprocess.Scale <= 0 {
		return errors.New("preprocess.scale must be positive")
	}
	if c.Preprocess.Threshold < 0 || c.Preprocess.Threshold > 255 {
		return errors.New("preprocess.threshold must be between 0 and 255")
	}
	if c.Preprocess.Alpha <= 0 {
		return errors.New("preprocess.alpha must be positive")
	}
	return nil
}

func (c *Config) validateFields() error {
	for _, field := range c.Fields.Ordered() {
		// An empty region disables the field.
		if len(field.ROI) == 0 {
			continue
		}
		if err := validateRatioRegion("fields."+field.Name, field.ROI); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateRatioRegion(key string, values []float64) error {
	if len(values) != 4 {
		return fmt.Errorf("%s must have exactly 4 values [x1, y1, x2, y2], got %d", key, len(values))
	}
	for _, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s values must be ratios between 0 and 1", key)
		}
	}
	if values[0] >= values[2] || values[1] >= values[3] {
		return fmt.Errorf("%s must satisfy x1 < x2 and y1 < y2", key)
	}
	return nil
}
