package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type CompletedJobRow struct {
	ID           int64
	UserID       string
	ProjectID    string
	BudgetPaisa  int64
	Difficulty   string
	IsUrgent     bool
	ClientRating float64
	CompletedOn  string
}

type PostedJobRow struct {
	ID               int64
	UserID           string
	ProjectID        string
	BudgetPaisa      int64
	FreelancerRating float64
	PostedOn         string
}

type SpendingEventRow struct {
	ID          int64
	UserID      string
	EventDate   string
	AmountPaisa int64
	Category    string
}

type LevelSnapshotRow struct {
	ID         int64
	UserID     string
	Role       string
	XP         float64
	Level      int64
	TierEN     string
	TierNP     string
	Progress   int64
	RecordedAt string
}

const createCompletedJob = `
INSERT INTO completed_jobs (user_id, project_id, budget_paisa, difficulty, is_urgent, client_rating, completed_on)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateCompletedJob(ctx context.Context, arg CompletedJobRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createCompletedJob,
		arg.UserID, arg.ProjectID, arg.BudgetPaisa, arg.Difficulty, arg.IsUrgent, arg.ClientRating, arg.CompletedOn,
	).Scan(&id)
	return id, err
}

const listCompletedJobs = `
SELECT id, user_id, project_id, budget_paisa, difficulty, is_urgent, client_rating, completed_on
FROM completed_jobs
WHERE user_id = ?
ORDER BY id`

func (q *Queries) ListCompletedJobs(ctx context.Context, userID string) ([]CompletedJobRow, error) {
	rows, err := q.db.QueryContext(ctx, listCompletedJobs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CompletedJobRow
	for rows.Next() {
		var i CompletedJobRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.ProjectID, &i.BudgetPaisa, &i.Difficulty, &i.IsUrgent, &i.ClientRating, &i.CompletedOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createPostedJob = `
INSERT INTO posted_jobs (user_id, project_id, budget_paisa, freelancer_rating, posted_on)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreatePostedJob(ctx context.Context, arg PostedJobRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createPostedJob,
		arg.UserID, arg.ProjectID, arg.BudgetPaisa, arg.FreelancerRating, arg.PostedOn,
	).Scan(&id)
	return id, err
}

const listPostedJobs = `
SELECT id, user_id, project_id, budget_paisa, freelancer_rating, posted_on
FROM posted_jobs
WHERE user_id = ?
ORDER BY id`

func (q *Queries) ListPostedJobs(ctx context.Context, userID string) ([]PostedJobRow, error) {
	rows, err := q.db.QueryContext(ctx, listPostedJobs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PostedJobRow
	for rows.Next() {
		var i PostedJobRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.ProjectID, &i.BudgetPaisa, &i.FreelancerRating, &i.PostedOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createSpendingEvent = `
INSERT INTO spending_events (user_id, event_date, amount_paisa, category)
VALUES (?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateSpendingEvent(ctx context.Context, arg SpendingEventRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createSpendingEvent,
		arg.UserID, arg.EventDate, arg.AmountPaisa, arg.Category,
	).Scan(&id)
	return id, err
}

const listSpendingEvents = `
SELECT id, user_id, event_date, amount_paisa, category
FROM spending_events
WHERE user_id = ?
ORDER BY event_date, id`

func (q *Queries) ListSpendingEvents(ctx context.Context, userID string) ([]SpendingEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listSpendingEvents, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SpendingEventRow
	for rows.Next() {
		var i SpendingEventRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.EventDate, &i.AmountPaisa, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createLevelSnapshot = `
INSERT INTO level_snapshots (user_id, role, xp, level, tier_en, tier_np, progress, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateLevelSnapshot(ctx context.Context, arg LevelSnapshotRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createLevelSnapshot,
		arg.UserID, arg.Role, arg.XP, arg.Level, arg.TierEN, arg.TierNP, arg.Progress, arg.RecordedAt,
	).Scan(&id)
	return id, err
}

const listLevelSnapshots = `
SELECT id, user_id, role, xp, level, tier_en, tier_np, progress, recorded_at
FROM level_snapshots
WHERE user_id = ? AND role = ?
ORDER BY id DESC
LIMIT ?`

// ListLevelSnapshots returns the newest rows first. A negative limit means
// no limit in SQLite.
func (q *Queries) ListLevelSnapshots(ctx context.Context, userID, role string, limit int64) ([]LevelSnapshotRow, error) {
	rows, err := q.db.QueryContext(ctx, listLevelSnapshots, userID, role, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LevelSnapshotRow
	for rows.Next() {
		var i LevelSnapshotRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Role, &i.XP, &i.Level, &i.TierEN, &i.TierNP, &i.Progress, &i.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listUsersWithoutSnapshot = `
SELECT DISTINCT c.user_id, 'freelancer' AS role
FROM completed_jobs c
WHERE NOT EXISTS (
    SELECT 1 FROM level_snapshots s WHERE s.user_id = c.user_id AND s.role = 'freelancer'
)
UNION
SELECT DISTINCT p.user_id, 'client' AS role
FROM posted_jobs p
WHERE NOT EXISTS (
    SELECT 1 FROM level_snapshots s WHERE s.user_id = p.user_id AND s.role = 'client'
)
ORDER BY 1, 2`

type UserRoleRow struct {
	UserID string
	Role   string
}

func (q *Queries) ListUsersWithoutSnapshot(ctx context.Context) ([]UserRoleRow, error) {
	rows, err := q.db.QueryContext(ctx, listUsersWithoutSnapshot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserRoleRow
	for rows.Next() {
		var i UserRoleRow
		if err := rows.Scan(&i.UserID, &i.Role); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
