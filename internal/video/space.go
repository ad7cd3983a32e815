package video

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// ErrInsufficientSpace reports that the frames directory is too full to
// sample into.
var ErrInsufficientSpace = errors.New("insufficient free space")

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (free uint64, err error)

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

func checkFreeSpace(statfs statfsFunc, path string, minBytes uint64) error {
	if minBytes == 0 {
		return nil
	}
	free, err := statfs(path)
	if err != nil {
		return fmt.Errorf("statfs %s: %w", path, err)
	}
	if free < minBytes {
		return fmt.Errorf("%w: %s free in %s, need %s",
			ErrInsufficientSpace, humanize.IBytes(free), path, humanize.IBytes(minBytes))
	}
	return nil
}
