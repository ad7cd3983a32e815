package textmatch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"matchtracker/internal/logging"
)

// Vocabulary is an ordered, immutable list of accepted strings.
type Vocabulary struct {
	entries []string
}

// NewVocabulary copies entries into a Vocabulary, dropping blank values.
func NewVocabulary(entries []string) Vocabulary {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		out = append(out, entry)
	}
	return Vocabulary{entries: out}
}

// Len reports the number of candidates.
func (v Vocabulary) Len() int {
	return len(v.entries)
}

// Entries returns a copy of the candidates in load order.
func (v Vocabulary) Entries() []string {
	return append([]string(nil), v.entries...)
}

// LoadVocabulary reads the first column of every non-empty row of a CSV file.
// A UTF-8 byte order mark is ignored. A missing file yields an empty
// vocabulary and a warning; every correction against it resolves to unknown.
func LoadVocabulary(path string, logger *slog.Logger) (Vocabulary, error) {
	logger = logging.NewComponentLogger(logger, "vocabulary")
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "vocabulary file not found", "vocabulary_missing",
				logging.String("path", path),
				logging.String(logging.FieldErrorHint, "create the file with one accepted name per row"),
				logging.String(logging.FieldImpact, "fields of this category will be reported as unknown"))
			return Vocabulary{}, nil
		}
		return Vocabulary{}, fmt.Errorf("open vocabulary: %w", err)
	}
	defer file.Close()

	vocab, err := ReadVocabulary(file)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	logger.Debug("loaded vocabulary",
		logging.String("path", path),
		logging.Int("entry_count", vocab.Len()))
	return vocab, nil
}

// ReadVocabulary parses vocabulary rows from r.
func ReadVocabulary(r io.Reader) (Vocabulary, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	var entries []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Vocabulary{}, err
		}
		if len(record) == 0 {
			continue
		}
		entries = append(entries, record[0])
	}
	return NewVocabulary(entries), nil
}
