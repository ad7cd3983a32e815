package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"matchtracker/internal/match"
)

// Mode names the kind of run that was archived.
type Mode string

const (
	ModeAnalyze    Mode = "analyze"
	ModeTimestamps Mode = "timestamps"
)

var (
	// ErrRunNotFound reports an unknown run identifier.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun reports an ID prefix matching more than one run.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Run is one archived analysis.
type Run struct {
	ID            string
	VideoKey      string
	SourcePath    string
	Mode          Mode
	FrameInterval float64
	FrameCount    int
	MatchCount    int
	OutputPath    string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// timeLayout keeps a fixed-width fraction so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores run and its records in one transaction. A run without an
// ID is assigned one; the stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run, records []match.Record) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = NewRunID()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, video_key, source_path, mode, frame_interval,
            frame_count, match_count, output_path, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.VideoKey,
		run.SourcePath,
		string(run.Mode),
		run.FrameInterval,
		run.FrameCount,
		run.MatchCount,
		nullableString(run.OutputPath),
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (
            run_id, seq,
            player1_name, player2_name, player3_name, player4_name,
            player1_unit, player2_unit, player3_unit, player4_unit,
            player1_result, player2_result, player3_result, player4_result,
            start_time, frame_name
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			run.ID, i+1,
			rec.Player1Name, rec.Player2Name, rec.Player3Name, rec.Player4Name,
			rec.Player1Unit, rec.Player2Unit, rec.Player3Unit, rec.Player4Unit,
			string(rec.Player1Result), string(rec.Player2Result), string(rec.Player3Result), string(rec.Player4Result),
			rec.StartTime, rec.FrameName,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

const runColumns = `id, video_key, source_path, mode, frame_interval,
    frame_count, match_count, output_path, started_at, finished_at`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
// A non-empty videoKey restricts the list to that recording.
func (s *Store) ListRuns(ctx context.Context, videoKey string, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if videoKey = strings.TrimSpace(videoKey); videoKey != "" {
		query += " WHERE video_key = ?"
		args = append(args, videoKey)
	}
	query += " ORDER BY started_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a full run ID or a unique prefix of one.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, ErrRunNotFound
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// RunRecords returns the records of a run in output order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]match.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player1_name, player2_name, player3_name, player4_name,
            player1_unit, player2_unit, player3_unit, player4_unit,
            player1_result, player2_result, player3_result, player4_result,
            start_time, frame_name
        FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []match.Record
	for rows.Next() {
		var rec match.Record
		var r1, r2, r3, r4 string
		if err := rows.Scan(
			&rec.Player1Name, &rec.Player2Name, &rec.Player3Name, &rec.Player4Name,
			&rec.Player1Unit, &rec.Player2Unit, &rec.Player3Unit, &rec.Player4Unit,
			&r1, &r2, &r3, &r4,
			&rec.StartTime, &rec.FrameName,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Player1Result = match.Outcome(r1)
		rec.Player2Result = match.Outcome(r2)
		rec.Player3Result = match.Outcome(r3)
		rec.Player4Result = match.Outcome(r4)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		mode       string
		outputPath sql.NullString
		started    string
		finished   string
	)
	if err := row.Scan(
		&run.ID, &run.VideoKey, &run.SourcePath, &mode, &run.FrameInterval,
		&run.FrameCount, &run.MatchCount, &outputPath, &started, &finished,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Mode = Mode(mode)
	run.OutputPath = outputPath.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
