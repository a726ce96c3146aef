package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kaamgarau/internal/core"
	"kaamgarau/internal/ports"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements ports.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RecordCompletedJob implements ports.JobRecorder
func (r *SQLiteRepository) RecordCompletedJob(ctx context.Context, userID string, job core.CompletedJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.CreateCompletedJob(ctx, CompletedJobRow{
		UserID:       userID,
		ProjectID:    job.ProjectID,
		BudgetPaisa:  job.Budget.Paisa,
		Difficulty:   job.Difficulty.String(),
		IsUrgent:     job.IsUrgent,
		ClientRating: job.ClientRating,
		CompletedOn:  job.CompletedOn.String(),
	})
	if err != nil {
		return "", fmt.Errorf("create completed job: %w", err)
	}

	slog.InfoContext(ctx, "Completed job saved to SQLite",
		"id", id,
		"user_id", userID,
		"project_id", job.ProjectID,
		"budget_paisa", job.Budget.Paisa,
		"difficulty", job.Difficulty.String())

	return strconv.FormatInt(id, 10), nil
}

// RecordPostedJob implements ports.JobRecorder
func (r *SQLiteRepository) RecordPostedJob(ctx context.Context, userID string, job core.PostedJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.CreatePostedJob(ctx, PostedJobRow{
		UserID:           userID,
		ProjectID:        job.ProjectID,
		BudgetPaisa:      job.Budget.Paisa,
		FreelancerRating: job.FreelancerRating,
		PostedOn:         job.PostedOn.String(),
	})
	if err != nil {
		return "", fmt.Errorf("create posted job: %w", err)
	}

	slog.InfoContext(ctx, "Posted job saved to SQLite",
		"id", id,
		"user_id", userID,
		"project_id", job.ProjectID,
		"budget_paisa", job.Budget.Paisa)

	return strconv.FormatInt(id, 10), nil
}

// RecordSpending implements ports.SpendingRecorder
func (r *SQLiteRepository) RecordSpending(ctx context.Context, userID string, e core.SpendingEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.CreateSpendingEvent(ctx, SpendingEventRow{
		UserID:      userID,
		EventDate:   e.Date.String(),
		AmountPaisa: e.Amount.Paisa,
		Category:    e.Category,
	})
	if err != nil {
		return "", fmt.Errorf("create spending event: %w", err)
	}

	slog.InfoContext(ctx, "Spending event saved to SQLite",
		"id", id,
		"user_id", userID,
		"date", e.Date.String(),
		"amount_paisa", e.Amount.Paisa,
		"category", e.Category)

	return strconv.FormatInt(id, 10), nil
}

// CompletedJobs implements ports.JobHistoryReader
func (r *SQLiteRepository) CompletedJobs(ctx context.Context, userID string) ([]core.CompletedJob, error) {
	rows, err := r.queries.ListCompletedJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed jobs: %w", err)
	}

	jobs := make([]core.CompletedJob, 0, len(rows))
	for _, row := range rows {
		completedOn, err := optionalDate(row.CompletedOn)
		if err != nil {
			return nil, fmt.Errorf("completed job %d: %w", row.ID, err)
		}
		jobs = append(jobs, core.CompletedJob{
			ProjectID:    row.ProjectID,
			Budget:       core.Money{Paisa: row.BudgetPaisa},
			Difficulty:   core.ParseDifficulty(row.Difficulty),
			IsUrgent:     row.IsUrgent,
			ClientRating: row.ClientRating,
			CompletedOn:  completedOn,
		})
	}
	return jobs, nil
}

// PostedJobs implements ports.JobHistoryReader
func (r *SQLiteRepository) PostedJobs(ctx context.Context, userID string) ([]core.PostedJob, error) {
	rows, err := r.queries.ListPostedJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posted jobs: %w", err)
	}

	jobs := make([]core.PostedJob, 0, len(rows))
	for _, row := range rows {
		postedOn, err := optionalDate(row.PostedOn)
		if err != nil {
			return nil, fmt.Errorf("posted job %d: %w", row.ID, err)
		}
		jobs = append(jobs, core.PostedJob{
			ProjectID:        row.ProjectID,
			Budget:           core.Money{Paisa: row.BudgetPaisa},
			FreelancerRating: row.FreelancerRating,
			PostedOn:         postedOn,
		})
	}
	return jobs, nil
}

// SpendingEvents implements ports.SpendingReader
func (r *SQLiteRepository) SpendingEvents(ctx context.Context, userID string) ([]core.SpendingEvent, error) {
	rows, err := r.queries.ListSpendingEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spending events: %w", err)
	}

	events := make([]core.SpendingEvent, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.EventDate)
		if err != nil {
			return nil, fmt.Errorf("spending event %d: %w", row.ID, err)
		}
		events = append(events, core.SpendingEvent{
			Date:     date,
			Amount:   core.Money{Paisa: row.AmountPaisa},
			Category: row.Category,
		})
	}
	return events, nil
}

// SaveSnapshot implements ports.LevelSnapshotStore
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, s core.LevelSnapshot) error {
	if s.UserID == "" || !s.Role.Valid() {
		return fmt.Errorf("save snapshot: %w", core.ErrInvalidRole)
	}
	if s.RecordedAt.IsZero() {
		s.RecordedAt = time.Now().UTC()
	}
	id, err := r.queries.CreateLevelSnapshot(ctx, LevelSnapshotRow{
		UserID:     s.UserID,
		Role:       string(s.Role),
		XP:         s.XP,
		Level:      int64(s.Level),
		TierEN:     s.TierName.EN,
		TierNP:     s.TierName.NP,
		Progress:   int64(s.Progress),
		RecordedAt: s.RecordedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("create level snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Level snapshot saved",
		"id", id,
		"user_id", s.UserID,
		"role", s.Role,
		"level", s.Level)
	return nil
}

// LatestSnapshot implements ports.LevelSnapshotStore
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, userID string, role core.Role) (core.LevelSnapshot, error) {
	list, err := r.ListSnapshots(ctx, userID, role, 1)
	if err != nil {
		return core.LevelSnapshot{}, err
	}
	if len(list) == 0 {
		return core.LevelSnapshot{}, ports.ErrNotFound
	}
	return list[0], nil
}

// ListSnapshots implements ports.LevelSnapshotStore
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, userID string, role core.Role, limit int) ([]core.LevelSnapshot, error) {
	lim := int64(limit)
	if limit <= 0 {
		lim = -1
	}
	rows, err := r.queries.ListLevelSnapshots(ctx, userID, string(role), lim)
	if err != nil {
		return nil, fmt.Errorf("list level snapshots: %w", err)
	}

	out := make([]core.LevelSnapshot, 0, len(rows))
	for _, row := range rows {
		recordedAt, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("level snapshot %d: parse recorded_at: %w", row.ID, err)
		}
		out = append(out, core.LevelSnapshot{
			ID:         row.ID,
			UserID:     row.UserID,
			Role:       core.Role(row.Role),
			XP:         row.XP,
			Level:      int(row.Level),
			TierName:   core.Label{EN: row.TierEN, NP: row.TierNP},
			Progress:   int(row.Progress),
			RecordedAt: recordedAt,
		})
	}
	return out, nil
}

// UsersWithoutSnapshot implements ports.LevelSnapshotStore
func (r *SQLiteRepository) UsersWithoutSnapshot(ctx context.Context) ([]ports.UserRole, error) {
	rows, err := r.queries.ListUsersWithoutSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users without snapshot: %w", err)
	}
	out := make([]ports.UserRole, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.UserRole{UserID: row.UserID, Role: core.Role(row.Role)})
	}
	return out, nil
}

func optionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
