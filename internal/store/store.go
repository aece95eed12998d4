// Package store keeps AOP submissions, their analyses and reviewer feedback
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sozercan/aop-analyst/apimodels"
)

var (
	ErrNotFound      = errors.New("submission not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNoReviewer    = errors.New("reviewer is required")
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New opens (or creates) the database at path and runs migrations.
func New(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS submissions (
			id          TEXT PRIMARY KEY,
			department  TEXT NOT NULL,
			fiscal_year TEXT NOT NULL,
			status      TEXT NOT NULL,
			request     TEXT NOT NULL,
			analysis    TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_submissions_department ON submissions(department COLLATE NOCASE);

		CREATE TABLE IF NOT EXISTS feedback (
			id            TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			reviewer      TEXT NOT NULL,
			comments      TEXT NOT NULL DEFAULT '',
			sections      TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_feedback_submission ON feedback(submission_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CreateSubmission stores req as a new draft.
func (s *Store) CreateSubmission(ctx context.Context, req apimodels.AnalysisRequest) (*apimodels.Submission, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	now := s.timestamp()
	sub := &apimodels.Submission{
		ID:        uuid.NewString(),
		Status:    apimodels.StatusDraft,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, department, fiscal_year, status, request, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, strings.TrimSpace(req.DepartmentName), req.FiscalYear, string(sub.Status), string(body),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	s.logger.Info("Created submission", zap.String("id", sub.ID), zap.String("department", req.DepartmentName))
	return sub, nil
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*apimodels.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, request, analysis, created_at, updated_at FROM submissions WHERE id = ?`, id,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// ListSubmissions returns submissions newest first. A non-empty department
// filters case-insensitively.
func (s *Store) ListSubmissions(ctx context.Context, department string) ([]apimodels.Submission, error) {
	query := `SELECT id, status, request, analysis, created_at, updated_at FROM submissions`
	var args []any
	if d := strings.TrimSpace(department); d != "" {
		query += ` WHERE department = ? COLLATE NOCASE`
		args = append(args, d)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := []apimodels.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status apimodels.SubmissionStatus) (*apimodels.Submission, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(s.timestamp()), id,
	)
	if err := affectedOne(res, err); err != nil {
		return nil, err
	}

	s.logger.Info("Updated submission status", zap.String("id", id), zap.String("status", string(status)))
	return s.GetSubmission(ctx, id)
}

// SaveAnalysis attaches the latest analysis result to a submission.
func (s *Store) SaveAnalysis(ctx context.Context, id string, result *apimodels.AnalysisResult) (*apimodels.Submission, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET analysis = ?, updated_at = ? WHERE id = ?`,
		string(body), formatTime(s.timestamp()), id,
	)
	if err := affectedOne(res, err); err != nil {
		return nil, err
	}
	return s.GetSubmission(ctx, id)
}

// AddFeedback records a reviewer's feedback. Section statuses left empty are
// stored as pending.
func (s *Store) AddFeedback(ctx context.Context, fb apimodels.Feedback) (*apimodels.Feedback, error) {
	if strings.TrimSpace(fb.Reviewer) == "" {
		return nil, ErrNoReviewer
	}

	sections := make(map[string]apimodels.SectionStatus, len(fb.Sections))
	for name, status := range fb.Sections {
		if status == "" {
			status = apimodels.SectionPending
		}
		if !status.Valid() {
			return nil, fmt.Errorf("%w: section %q has status %q", ErrInvalidStatus, name, status)
		}
		sections[name] = status
	}

	if _, err := s.GetSubmission(ctx, fb.SubmissionID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}

	out := &apimodels.Feedback{
		ID:           uuid.NewString(),
		SubmissionID: fb.SubmissionID,
		Reviewer:     strings.TrimSpace(fb.Reviewer),
		Comments:     fb.Comments,
		Sections:     sections,
		CreatedAt:    s.timestamp(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, submission_id, reviewer, comments, sections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		out.ID, out.SubmissionID, out.Reviewer, out.Comments, string(body), formatTime(out.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	s.logger.Info("Added feedback", zap.String("submission", out.SubmissionID), zap.String("reviewer", out.Reviewer))
	return out, nil
}

// ListFeedback returns a submission's feedback oldest first.
func (s *Store) ListFeedback(ctx context.Context, submissionID string) ([]apimodels.Feedback, error) {
	if _, err := s.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, reviewer, comments, sections, created_at
		 FROM feedback WHERE submission_id = ? ORDER BY created_at, id`, submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := []apimodels.Feedback{}
	for rows.Next() {
		var (
			fb        apimodels.Feedback
			sections  string
			createdAt string
		)
		if err := rows.Scan(&fb.ID, &fb.SubmissionID, &fb.Reviewer, &fb.Comments, &sections, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sections), &fb.Sections); err != nil {
			return nil, fmt.Errorf("decode feedback %s: %w", fb.ID, err)
		}
		if fb.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*apimodels.Submission, error) {
	var (
		sub                  apimodels.Submission
		status, request      string
		analysis             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&sub.ID, &status, &request, &analysis, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	sub.Status = apimodels.SubmissionStatus(status)
	if err := json.Unmarshal([]byte(request), &sub.Request); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", sub.ID, err)
	}
	if analysis.Valid {
		sub.Analysis = &apimodels.AnalysisResult{}
		if err := json.Unmarshal([]byte(analysis.String), sub.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis %s: %w", sub.ID, err)
		}
	}

	var err error
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sub.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
