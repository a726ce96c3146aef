package ports

import (
	"context"
	"errors"

	"kaamgarau/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserRole identifies whose level is being tracked.
type UserRole struct {
	UserID string
	Role   core.Role
}

// Ports for outbound adapters.
type (
	JobHistoryReader interface {
		// CompletedJobs returns a freelancer's jobs oldest first.
		CompletedJobs(ctx context.Context, userID string) ([]core.CompletedJob, error)
		// PostedJobs returns a client's jobs oldest first.
		PostedJobs(ctx context.Context, userID string) ([]core.PostedJob, error)
	}

	JobRecorder interface {
		RecordCompletedJob(ctx context.Context, userID string, job core.CompletedJob) (ref string, err error)
		RecordPostedJob(ctx context.Context, userID string, job core.PostedJob) (ref string, err error)
	}

	// SpendingReader returns events ordered by date, then by insertion.
	SpendingReader interface {
		SpendingEvents(ctx context.Context, userID string) ([]core.SpendingEvent, error)
	}

	SpendingRecorder interface {
		RecordSpending(ctx context.Context, userID string, e core.SpendingEvent) (ref string, err error)
	}

	LevelSnapshotStore interface {
		// LatestSnapshot returns ErrNotFound when the user has none for role.
		LatestSnapshot(ctx context.Context, userID string, role core.Role) (core.LevelSnapshot, error)
		SaveSnapshot(ctx context.Context, s core.LevelSnapshot) error
		// ListSnapshots returns the newest snapshots first; limit <= 0 means all.
		ListSnapshots(ctx context.Context, userID string, role core.Role, limit int) ([]core.LevelSnapshot, error)
		// UsersWithoutSnapshot lists users that have history for a role but
		// no snapshot for it yet.
		UsersWithoutSnapshot(ctx context.Context) ([]UserRole, error)
	}

	// Store is everything a backend provides.
	Store interface {
		JobHistoryReader
		JobRecorder
		SpendingReader
		SpendingRecorder
		LevelSnapshotStore
	}

	// Pinger is implemented by stores that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
