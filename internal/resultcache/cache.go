package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"matchtracker/internal/fileutil"
	"matchtracker/internal/logging"
	"matchtracker/internal/screen"
)

const (
	framesFile  = "frames.json"
	screensFile = "screens.json"
	lockFile    = ".lock"

	lockRetryDelay = 200 * time.Millisecond
)

var (
	// ErrCorruptEntry reports a cache entry that exists but cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt cache entry")
	// ErrNotFound reports a missing cache entry.
	ErrNotFound = errors.New("cache entry not found")
)

// SourceInfo identifies the recording an entry was computed from.
type SourceInfo struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Matches reports whether other has the same size and modification time.
func (s SourceInfo) Matches(other SourceInfo) bool {
	return s.Size == other.Size && s.ModTime.Equal(other.ModTime)
}

// FramesEntry is the cached output of frame sampling.
type FramesEntry struct {
	Key      string         `json:"key"`
	Source   SourceInfo     `json:"source"`
	Interval float64        `json:"interval_seconds"`
	Frames   []screen.Frame `json:"frames"`
	CachedAt time.Time      `json:"cached_at"`
}

// ScreensEntry is the cached output of classification. MatchCount follows
// the skip-other policy in effect when the entry was saved.
type ScreensEntry struct {
	Key        string                   `json:"key"`
	Source     SourceInfo               `json:"source"`
	Screens    []screen.ClassifiedFrame `json:"screens"`
	MatchCount int                      `json:"match_count"`
	CachedAt   time.Time                `json:"cached_at"`
}

// Store is a directory of per-video cache entries. A Store with an empty
// root is disabled: nothing is found and saves are no-ops.
type Store struct {
	root   string
	logger *slog.Logger
}

// Open returns a Store rooted at dir.
func Open(dir string, logger *slog.Logger) *Store {
	return &Store{
		root:   strings.TrimSpace(dir),
		logger: logging.NewComponentLogger(logger, "resultcache"),
	}
}

// Enabled reports whether the store persists anything.
func (s *Store) Enabled() bool {
	return s != nil && s.root != ""
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) keyDir(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

// Lock takes the per-key lock, waiting until ctx is done. The returned
// function releases it.
func (s *Store) Lock(ctx context.Context, key string) (func(), error) {
	if !s.Enabled() {
		return func() {}, nil
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFile))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock for %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire cache lock for %s: not acquired", key)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock",
				logging.String(logging.FieldVideoKey, key),
				logging.Error(err))
		}
	}, nil
}

// HasFrames reports whether a frames entry exists for key.
func (s *Store) HasFrames(key string) bool {
	return s.exists(key, framesFile)
}

// LoadFrames reads the frames entry for key.
func (s *Store) LoadFrames(key string) (FramesEntry, error) {
	var entry FramesEntry
	if err := s.load(key, framesFile, &entry); err != nil {
		return FramesEntry{}, err
	}
	return entry, nil
}

// SaveFrames persists a frames entry.
func (s *Store) SaveFrames(entry FramesEntry) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}
	if err := s.save(entry.Key, framesFile, entry); err != nil {
		return err
	}
	s.logger.Debug("cached frames",
		logging.String(logging.FieldVideoKey, entry.Key),
		logging.Int("frames", len(entry.Frames)))
	return nil
}

// HasScreens reports whether a screens entry exists for key.
func (s *Store) HasScreens(key string) bool {
	return s.exists(key, screensFile)
}

// LoadScreens reads the screens entry for key.
func (s *Store) LoadScreens(key string) (ScreensEntry, error) {
	var entry ScreensEntry
	if err := s.load(key, screensFile, &entry); err != nil {
		return ScreensEntry{}, err
	}
	return entry, nil
}

// SaveScreens persists a screens entry.
func (s *Store) SaveScreens(entry ScreensEntry) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}
	if err := s.save(entry.Key, screensFile, entry); err != nil {
		return err
	}
	s.logger.Debug("cached screens",
		logging.String(logging.FieldVideoKey, entry.Key),
		logging.Int("screens", len(entry.Screens)),
		logging.Int("matches", entry.MatchCount))
	return nil
}

// Invalidate removes both entries for key, keeping the lock file.
func (s *Store) Invalidate(key string) error {
	if !s.Enabled() {
		return nil
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return err
	}
	for _, name := range []string{framesFile, screensFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) exists(key, name string) bool {
	if !s.Enabled() {
		return false
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) load(key, name string, dst any) error {
	if !s.Enabled() {
		return ErrNotFound
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: read %s: %v", ErrCorruptEntry, path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrCorruptEntry, path, err)
	}
	return nil
}

// save writes the entry atomically.
func (s *Store) save(key, name string, entry any) error {
	if !s.Enabled() {
		return nil
	}
	dir, err := s.keyDir(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, name), data); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
