package report

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clipsight/internal/analysis"
	"clipsight/internal/validation"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ValidationRun is one stored validation of a document.
type ValidationRun struct {
	ID         string             `json:"id"`
	VideoID    string             `json:"video_id"`
	SourcePath string             `json:"source_path,omitempty"`
	Mode       string             `json:"mode"`
	Passed     bool               `json:"passed"`
	IssueCount int                `json:"issue_count"`
	Report     *validation.Report `json:"report,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// InsightRun is one stored LLM insight result.
type InsightRun struct {
	ID        string          `json:"id"`
	VideoID   string          `json:"video_id"`
	Purpose   string          `json:"purpose"`
	Model     string          `json:"model,omitempty"`
	Insight   json.RawMessage `json:"insight"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the report database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure report directory: %w", err)
		}
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
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
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
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveValidation stores a validation report and returns the run with its
// generated ID and timestamp filled in.
func (s *Store) SaveValidation(ctx context.Context, videoID, sourcePath, mode string, rep *validation.Report) (*ValidationRun, error) {
	if rep == nil {
		return nil, errors.New("save validation: nil report")
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	run := &ValidationRun{
		ID:         uuid.NewString(),
		VideoID:    videoID,
		SourcePath: sourcePath,
		Mode:       mode,
		Passed:     rep.StructurallyValid(),
		IssueCount: rep.IssueCount(),
		Report:     rep,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, video_id, source_path, mode, passed, issue_count, report_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoID, run.SourcePath, run.Mode,
		boolToInt(run.Passed), run.IssueCount, string(payload),
		run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert validation run: %w", err)
	}
	return run, nil
}

// ListValidations returns the most recent runs, newest first.
func (s *Store) ListValidations(ctx context.Context, limit int) ([]ValidationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, source_path, mode, passed, issue_count, report_json, created_at
         FROM validation_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation runs: %w", err)
	}
	defer rows.Close()

	runs := []ValidationRun{}
	for rows.Next() {
		run, err := scanValidation(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetValidation fetches one run by ID.
func (s *Store) GetValidation(ctx context.Context, id string) (*ValidationRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, source_path, mode, passed, issue_count, report_json, created_at
         FROM validation_runs WHERE id = ?`, id)
	run, err := scanValidation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.Wrap(analysis.ErrNotFound, "report", "get validation",
			fmt.Sprintf("run %s", id), nil)
	}
	return run, err
}

// LatestValidationForVideo fetches the newest run for a video.
func (s *Store) LatestValidationForVideo(ctx context.Context, videoID string) (*ValidationRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, source_path, mode, passed, issue_count, report_json, created_at
         FROM validation_runs WHERE video_id = ? ORDER BY created_at DESC LIMIT 1`, videoID)
	run, err := scanValidation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.Wrap(analysis.ErrNotFound, "report", "latest validation",
			fmt.Sprintf("video %s", videoID), nil)
	}
	return run, err
}

// SaveInsight stores an LLM insight payload.
func (s *Store) SaveInsight(ctx context.Context, videoID, purpose, model string, insight json.RawMessage) (*InsightRun, error) {
	if len(insight) == 0 {
		insight = json.RawMessage("{}")
	}
	run := &InsightRun{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		Purpose:   purpose,
		Model:     model,
		Insight:   insight,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insight_runs (id, video_id, purpose, model, insight_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoID, run.Purpose, run.Model, string(run.Insight),
		run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert insight run: %w", err)
	}
	return run, nil
}

// ListInsights returns a video's insight runs, newest first.
func (s *Store) ListInsights(ctx context.Context, videoID string) ([]InsightRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, purpose, model, insight_json, created_at
         FROM insight_runs WHERE video_id = ? ORDER BY created_at DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list insight runs: %w", err)
	}
	defer rows.Close()

	runs := []InsightRun{}
	for rows.Next() {
		var run InsightRun
		var insightJSON, createdAt string
		if err := rows.Scan(&run.ID, &run.VideoID, &run.Purpose, &run.Model, &insightJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan insight run: %w", err)
		}
		run.Insight = json.RawMessage(insightJSON)
		run.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanValidation(row rowScanner) (*ValidationRun, error) {
	var run ValidationRun
	var passed int
	var reportJSON, createdAt string
	if err := row.Scan(&run.ID, &run.VideoID, &run.SourcePath, &run.Mode,
		&passed, &run.IssueCount, &reportJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan validation run: %w", err)
	}
	run.Passed = passed != 0
	run.CreatedAt = parseTimestamp(createdAt)
	rep := new(validation.Report)
	if err := json.Unmarshal([]byte(reportJSON), rep); err == nil {
		run.Report = rep
	}
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
