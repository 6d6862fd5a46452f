package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/venuescope/pkg/domain"
)

// RunRepository stores finished batch run reports
type RunRepository struct {
	db *sqlx.DB
}

// runSQL represents a run for SQL operations
type runSQL struct {
	ID          string    `db:"id"`
	Started     time.Time `db:"started"`
	Finished    time.Time `db:"finished"`
	Total       int       `db:"total"`
	Successful  int       `db:"successful"`
	TotalEvents int       `db:"total_events"`
	Stopped     bool      `db:"stopped"`
	Summary     string    `db:"summary"`
	Report      string    `db:"report"`
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores the report, replacing a previous report with the same id
func (r *RunRepository) SaveRun(ctx context.Context, report *domain.Report) error {
	if report == nil || report.ID == "" {
		return errors.New("save run: report without id")
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	rec := runSQL{
		ID:          report.ID,
		Started:     report.StartedAt.UTC(),
		Finished:    report.FinishedAt.UTC(),
		Total:       report.Summary.TotalProcessed,
		Successful:  report.Summary.Successful,
		TotalEvents: report.Summary.TotalEvents,
		Stopped:     report.Summary.Stopped,
		Summary:     string(summary),
		Report:      string(body),
	}

	query := `
		INSERT INTO runs (id, started, finished, total, successful, total_events, stopped, summary, report)
		VALUES (:id, :started, :finished, :total, :successful, :total_events, :stopped, :summary, :report)
		ON CONFLICT(id) DO UPDATE SET
			started = excluded.started,
			finished = excluded.finished,
			total = excluded.total,
			successful = excluded.successful,
			total_events = excluded.total_events,
			stopped = excluded.stopped,
			summary = excluded.summary,
			report = excluded.report
	`
	err = withLockRetry(ctx, func() error {
		_, err := r.db.NamedExecContext(ctx, query, rec)
		return err
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.ID, err)
	}
	return nil
}

// GetRun returns the full report of a run, ErrNotFound if there is no such run
func (r *RunRepository) GetRun(ctx context.Context, id string) (*domain.Report, error) {
	var body string
	err := r.db.GetContext(ctx, &body, "SELECT report FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	return &report, nil
}

// ListRuns returns run headlines, newest first. Non-positive limit means no limit.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	var recs []runSQL
	query := `SELECT id, started, finished, summary FROM runs ORDER BY started DESC, id LIMIT ?`
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	res := make([]domain.RunInfo, 0, len(recs))
	for _, rec := range recs {
		info := domain.RunInfo{ID: rec.ID, StartedAt: rec.Started, FinishedAt: rec.Finished}
		if err := json.Unmarshal([]byte(rec.Summary), &info.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary of %s: %w", rec.ID, err)
		}
		res = append(res, info)
	}
	return res, nil
}

// DeleteRun removes a run, ErrNotFound if there is no such run
func (r *RunRepository) DeleteRun(ctx context.Context, id string) error {
	var affected int64
	err := withLockRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}
