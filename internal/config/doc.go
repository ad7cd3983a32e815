// Package config loads, normalizes, and validates matchtracker configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type enumerates every knob the
// analysis pipeline recognizes: sampling interval, per-label template
// thresholds and regions, per-field OCR regions, corrector cutoffs, cache and
// history locations, and logging output.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, validated region ratios, and clear validation errors.
package config
