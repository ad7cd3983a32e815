package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the log file written under paths.log_dir.
const FileName = "matchtracker.log"

const pollInterval = 250 * time.Millisecond

// Path returns the log file location inside logDir.
func Path(logDir string) string {
	return filepath.Join(logDir, FileName)
}

// Filter keeps the lines a caller wants to see. A nil Filter keeps all.
type Filter func(line string) bool

// RunFilter keeps lines tagged with the run ID or a prefix of it, in both
// the console and JSON log formats.
func RunFilter(runID string) Filter {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil
	}
	return func(line string) bool {
		return strings.Contains(line, "run_id="+runID) || strings.Contains(line, `"run_id":"`+runID)
	}
}

// Last returns up to limit of the final lines of path accepted by filter,
// and the offset just past the end of the file. limit <= 0 returns every
// accepted line. A missing file yields no lines and offset 0.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	lines, err := scanLines(file, filter)
	if err != nil {
		return nil, 0, err
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, offset, nil
}

// Follow polls path from offset and calls emit for every new accepted line
// until ctx is done. A truncated file is read again from the start.
func Follow(ctx context.Context, path string, offset int64, filter Filter, emit func(string)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		lines, next, err := readFrom(path, offset, filter)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	// Only complete lines are consumed; a partial last line is picked up
	// on the next poll.
	reader := bufio.NewReader(file)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if filter == nil || filter(line) {
			lines = append(lines, line)
		}
	}
	return lines, offset, nil
}

func scanLines(r io.Reader, filter Filter) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if filter == nil || filter(line) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return lines, nil
}
