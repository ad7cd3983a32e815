// Package report writes run outputs as CSV files. Files are UTF-8 with a
// byte order mark so spreadsheet tools detect the encoding of player and
// unit names, and are replaced atomically.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"matchtracker/internal/fileutil"
	"matchtracker/internal/match"
	"matchtracker/internal/screen"
)

// ScreenLogName is the file name of the per-frame label log.
const ScreenLogName = "screen_log.csv"

// ResultPath returns the match records file for a video key.
func ResultPath(dir, key string) string {
	return filepath.Join(dir, "result_"+key+".csv")
}

// TimestampsPath returns the timestamps file for a video key.
func TimestampsPath(dir, key string) string {
	return filepath.Join(dir, "timestamps_"+key+".csv")
}

// ScreenLogPath returns the screen log file inside dir.
func ScreenLogPath(dir string) string {
	return filepath.Join(dir, ScreenLogName)
}

// ScreenLogRow is one line of the screen log.
type ScreenLogRow struct {
	FramePath  string `csv:"frame_path"`
	ScreenType string `csv:"screen_type"`
}

// WriteRecords writes match records in column order.
func WriteRecords(path string, records []match.Record) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeRows(w, match.Record{}, records)
	})
}

// WriteTimestamps writes the timestamps-only output.
func WriteTimestamps(path string, timestamps []match.Timestamp) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeRows(w, match.Timestamp{}, timestamps)
	})
}

// WriteScreenLog writes one row per classified frame.
func WriteScreenLog(path string, seq []screen.ClassifiedFrame) error {
	rows := make([]ScreenLogRow, len(seq))
	for i, cf := range seq {
		rows[i] = ScreenLogRow{FramePath: cf.Frame.Path, ScreenType: string(cf.Label)}
	}
	return writeAtomic(path, func(w io.Writer) error {
		return encodeRows(w, ScreenLogRow{}, rows)
	})
}

// encodeRows writes the header of zero and then every row, so an empty
// result still yields a header line.
func encodeRows[T any](w io.Writer, zero T, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(zero); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeAtomic(path string, write func(io.Writer) error) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		bom := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		if err := write(bom); err != nil {
			return err
		}
		if err := bom.Close(); err != nil {
			return fmt.Errorf("flush %s: %w", path, err)
		}
		return nil
	})
}
