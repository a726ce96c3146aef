package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kaamgarau/internal/amqp"
	"kaamgarau/internal/core"
	"kaamgarau/internal/leveling"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/ports"
)

// Outcome describes what a recalculation did.
type Outcome string

const (
	OutcomeInitial   Outcome = "initial"
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
)

// Store is what the worker reads history from and writes snapshots to.
type Store interface {
	ports.JobHistoryReader
	ports.LevelSnapshotStore
}

// LevelWorker recomputes levels from job history and records a snapshot
// whenever a user's level moves.
type LevelWorker struct {
	store   Store
	table   *leveling.Table
	metrics *metrics.Manager
	logger  *log.Logger
	events  *log.StructuredLogger
	now     func() time.Time
}

type Option func(*LevelWorker)

func WithMetrics(m *metrics.Manager) Option {
	return func(w *LevelWorker) { w.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(w *LevelWorker) {
		if l != nil {
			w.logger = l.WithComponent(log.ComponentWorker)
			w.events = log.NewStructuredLogger(w.logger)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *LevelWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewLevelWorker(store Store, opts ...Option) *LevelWorker {
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	w := &LevelWorker{
		store:  store,
		table:  leveling.Default(),
		logger: logger,
		events: log.NewStructuredLogger(logger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleRecalc processes one message from the recalculation queue.
func (w *LevelWorker) HandleRecalc(ctx context.Context, msg *amqp.LevelRecalcMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	w.logger.DebugContext(ctx, "Processing level recalc",
		log.FieldUserID, msg.UserID,
		log.FieldRole, msg.Role.String(),
		"reason", msg.Reason)

	_, err := w.Recalculate(ctx, msg.UserID, msg.Role)
	return err
}

// Recalculate derives the user's current level and compares it with the
// latest snapshot. A snapshot is written for the first calculation and for
// every level change; an unchanged level writes nothing.
func (w *LevelWorker) Recalculate(ctx context.Context, userID string, role core.Role) (Outcome, error) {
	history, err := w.history(ctx, userID, role)
	if err != nil {
		w.metrics.Recalculated("error")
		return "", err
	}
	summary := w.table.Summarize(role, history)

	prev, err := w.store.LatestSnapshot(ctx, userID, role)
	hasPrev := true
	if errors.Is(err, ports.ErrNotFound) {
		hasPrev = false
	} else if err != nil {
		w.metrics.Recalculated("error")
		return "", fmt.Errorf("latest snapshot: %w", err)
	}

	if hasPrev && prev.Level == summary.Level {
		w.metrics.Recalculated(string(OutcomeUnchanged))
		return OutcomeUnchanged, nil
	}

	snap := core.LevelSnapshot{
		UserID:     userID,
		Role:       role,
		XP:         summary.XP,
		Level:      summary.Level,
		TierName:   summary.Name,
		Progress:   summary.Progress,
		RecordedAt: w.now().UTC(),
	}
	if err := w.store.SaveSnapshot(ctx, snap); err != nil {
		w.metrics.Recalculated("error")
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	if !hasPrev {
		w.metrics.Recalculated(string(OutcomeInitial))
		w.logger.InfoContext(ctx, "Initial level recorded",
			log.FieldUserID, userID,
			log.FieldRole, role.String(),
			log.FieldLevel, summary.Level,
			log.FieldTier, summary.Name.EN)
		return OutcomeInitial, nil
	}

	w.metrics.Recalculated(string(OutcomeChanged))
	w.metrics.LevelChanged(role.String(), prev.Level, summary.Level)
	w.events.LogLevelChange(ctx, userID, role.String(), prev.Level, summary.Level, summary.XP, summary.Name.EN)
	return OutcomeChanged, nil
}

// StartupCheck recalculates every user that has history but no snapshot,
// covering messages lost while the worker was down. Individual failures are
// logged and counted, not returned.
func (w *LevelWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.UsersWithoutSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("list users without snapshot: %w", err)
	}
	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "No users pending level calculation")
		return nil
	}

	w.logger.InfoContext(ctx, "Found users pending level calculation", "count", len(pending))

	recorded, failed := 0, 0
	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.Recalculate(ctx, u.UserID, u.Role); err != nil {
			w.logger.ErrorContext(ctx, "Startup recalculation failed",
				log.FieldUserID, u.UserID,
				log.FieldRole, u.Role.String(),
				log.FieldError, err.Error())
			failed++
			continue
		}
		recorded++
	}

	w.logger.InfoContext(ctx, "Startup level check completed",
		"total", len(pending),
		"recorded", recorded,
		"errors", failed)
	return nil
}

func (w *LevelWorker) history(ctx context.Context, userID string, role core.Role) (core.JobHistory, error) {
	var history core.JobHistory
	switch role {
	case core.RoleFreelancer:
		jobs, err := w.store.CompletedJobs(ctx, userID)
		if err != nil {
			return history, fmt.Errorf("load completed jobs: %w", err)
		}
		history.Completed = jobs
	case core.RoleClient:
		jobs, err := w.store.PostedJobs(ctx, userID)
		if err != nil {
			return history, fmt.Errorf("load posted jobs: %w", err)
		}
		history.Posted = jobs
	default:
		return history, core.ErrInvalidRole
	}
	return history, nil
}
