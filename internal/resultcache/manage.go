package resultcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"matchtracker/internal/logging"
)

// Summary describes the cached state of one video key.
type Summary struct {
	Key        string
	HasFrames  bool
	HasScreens bool
	Frames     int
	Matches    int
	Bytes      int64
	UpdatedAt  time.Time
	Corrupt    bool
}

// List summarizes every key in the store, newest first.
func (s *Store) List() ([]Summary, error) {
	if !s.Enabled() {
		return nil, nil
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key := entry.Name()
		sum := Summary{Key: key, HasFrames: s.HasFrames(key), HasScreens: s.HasScreens(key)}
		if !sum.HasFrames && !sum.HasScreens {
			continue
		}
		if sum.HasFrames {
			fe, err := s.LoadFrames(key)
			if err != nil {
				sum.Corrupt = true
			} else {
				sum.Frames = len(fe.Frames)
				sum.UpdatedAt = fe.CachedAt
			}
		}
		if sum.HasScreens {
			se, err := s.LoadScreens(key)
			if err != nil {
				sum.Corrupt = true
			} else {
				sum.Matches = se.MatchCount
				if se.CachedAt.After(sum.UpdatedAt) {
					sum.UpdatedAt = se.CachedAt
				}
			}
		}
		sum.Bytes = dirSize(filepath.Join(s.root, key))
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Clear removes every entry for key.
func (s *Store) Clear(key string) error {
	if !s.Enabled() {
		return nil
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove cache entry %s: %w", key, err)
	}
	s.logger.Info("cleared cache entry", logging.String(logging.FieldVideoKey, key))
	return nil
}

// ClearAll removes every key and returns how many were removed.
func (s *Store) ClearAll() (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache directory: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove cache entry %s: %w", entry.Name(), err)
		}
		removed++
	}
	s.logger.Info("cleared cache", logging.Int("entries", removed))
	return removed, nil
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
