package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/cache"
	"kaamgarau/internal/core"
	"kaamgarau/internal/leveling"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/ports"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 2 * time.Minute
	keySep           = "|"
)

// Stats is the headline block for one role. Exactly one of Freelancer or
// Client is set.
type Stats struct {
	Role       core.Role                    `json:"role"`
	Freelancer *analytics.FreelancerSummary `json:"freelancer,omitempty"`
	Client     *analytics.ClientSummary     `json:"client,omitempty"`
	Cards      []core.Stat                  `json:"cards"`
}

// Overview bundles everything a dashboard shows on first load.
type Overview struct {
	Level     leveling.Summary `json:"level"`
	Stats     Stats            `json:"stats"`
	Analytics analytics.Series `json:"analytics"`
}

// DashboardService answers the read side: levels, stats and spending
// analytics. Analytics series are cached per user and query.
type DashboardService struct {
	history    ports.JobHistoryReader
	spending   ports.SpendingReader
	snapshots  ports.LevelSnapshotStore
	table      *leveling.Table
	aggregator *analytics.Aggregator
	cache      *cache.LRUCache[analytics.Series]
	metrics    *metrics.Manager
	logger     *log.Logger
	now        func() time.Time
}

type DashboardOption func(*DashboardService)

// WithCache sets the analytics cache bounds. A ttl of zero disables caching.
func WithCache(size int, ttl time.Duration) DashboardOption {
	return func(s *DashboardService) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.NewLRUCache[analytics.Series](size, ttl)
	}
}

func WithAggregator(a *analytics.Aggregator) DashboardOption {
	return func(s *DashboardService) {
		if a != nil {
			s.aggregator = a
		}
	}
}

func WithDashboardMetrics(m *metrics.Manager) DashboardOption {
	return func(s *DashboardService) { s.metrics = m }
}

func WithDashboardLogger(l *log.Logger) DashboardOption {
	return func(s *DashboardService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentDashboard)
		}
	}
}

// WithClock fixes what "now" means for analytics windows.
func WithClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewDashboardService(history ports.JobHistoryReader, spending ports.SpendingReader, snapshots ports.LevelSnapshotStore, opts ...DashboardOption) *DashboardService {
	s := &DashboardService{
		history:    history,
		spending:   spending,
		snapshots:  snapshots,
		table:      leveling.Default(),
		aggregator: analytics.NewAggregator(nil),
		cache:      cache.NewLRUCache[analytics.Series](defaultCacheSize, defaultCacheTTL),
		logger:     log.New(log.DefaultConfig()).WithComponent(log.ComponentDashboard),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the analytics cache so it can be registered for cleanup.
// It is nil when caching is disabled.
func (s *DashboardService) Cache() *cache.LRUCache[analytics.Series] {
	return s.cache
}

// Table returns the threshold table levels are resolved against.
func (s *DashboardService) Table() *leveling.Table {
	return s.table
}

// Catalog returns the category catalog analytics are drawn with.
func (s *DashboardService) Catalog() *analytics.Catalog {
	return s.aggregator.Catalog()
}

// Level computes the user's XP and level for role from their full history.
func (s *DashboardService) Level(ctx context.Context, userID string, role core.Role) (leveling.Summary, error) {
	history, err := s.loadHistory(ctx, userID, role)
	if err != nil {
		return leveling.Summary{}, err
	}
	return s.table.Summarize(role, history), nil
}

// Stats returns lifetime figures for role.
func (s *DashboardService) Stats(ctx context.Context, userID string, role core.Role) (Stats, error) {
	history, err := s.loadHistory(ctx, userID, role)
	if err != nil {
		return Stats{}, err
	}
	return statsFor(role, history), nil
}

func statsFor(role core.Role, history core.JobHistory) Stats {
	out := Stats{Role: role}
	if role == core.RoleClient {
		summary := analytics.ClientStats(history.Posted)
		out.Client = &summary
		out.Cards = summary.Cards()
		return out
	}
	summary := analytics.FreelancerStats(history.Completed)
	out.Freelancer = &summary
	out.Cards = summary.Cards()
	return out
}

// Analytics aggregates the user's spending for q. The query's Now defaults
// to the service clock.
func (s *DashboardService) Analytics(ctx context.Context, userID string, q analytics.Query) (analytics.Series, error) {
	if strings.TrimSpace(userID) == "" {
		return analytics.Series{}, ErrMissingUser
	}
	if q.Now.IsZero() {
		q.Now = s.now()
	}
	q, err := q.Resolve()
	if err != nil {
		return analytics.Series{}, err
	}

	key := cacheKey(userID, q)
	if s.cache != nil {
		if series, ok := s.cache.Get(key); ok {
			s.metrics.CacheLookup(true)
			return series, nil
		}
		s.metrics.CacheLookup(false)
	}

	events, err := s.spending.SpendingEvents(ctx, userID)
	if err != nil {
		return analytics.Series{}, fmt.Errorf("load spending: %w", err)
	}
	series, err := s.aggregator.Aggregate(events, q)
	if err != nil {
		return analytics.Series{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, series)
	}
	s.metrics.AnalyticsServed(string(q.Range), string(q.View))
	s.logger.DebugContext(ctx, "Analytics aggregated",
		log.FieldUserID, userID,
		log.FieldTimeRange, string(q.Range),
		log.FieldView, string(q.View),
		log.FieldMonth, int(q.Month),
		"events", len(events))
	return series, nil
}

// Overview loads level, stats and the default analytics view in parallel.
func (s *DashboardService) Overview(ctx context.Context, userID string, role core.Role) (Overview, error) {
	var out Overview
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		history, err := s.loadHistory(gCtx, userID, role)
		if err != nil {
			return err
		}
		out.Level = s.table.Summarize(role, history)
		out.Stats = statsFor(role, history)
		return nil
	})
	g.Go(func() error {
		series, err := s.Analytics(gCtx, userID, analytics.Query{Range: analytics.RangeMonthly, View: analytics.ViewSpending})
		if err != nil {
			return err
		}
		out.Analytics = series
		return nil
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// LevelHistory returns stored snapshots, newest first.
func (s *DashboardService) LevelHistory(ctx context.Context, userID string, role core.Role, limit int) ([]core.LevelSnapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	if !role.Valid() {
		return nil, ErrUnsupportedRole
	}
	snaps, err := s.snapshots.ListSnapshots(ctx, userID, role, limit)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if snaps == nil {
		snaps = []core.LevelSnapshot{}
	}
	return snaps, nil
}

// Invalidate drops every cached series for userID.
func (s *DashboardService) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(userID + keySep); n > 0 {
		s.logger.Debug("Analytics cache invalidated", log.FieldUserID, userID, "entries", n)
	}
}

// loadHistory reads only the side of the history role needs.
func (s *DashboardService) loadHistory(ctx context.Context, userID string, role core.Role) (core.JobHistory, error) {
	if strings.TrimSpace(userID) == "" {
		return core.JobHistory{}, ErrMissingUser
	}

	var history core.JobHistory
	switch role {
	case core.RoleFreelancer:
		jobs, err := s.history.CompletedJobs(ctx, userID)
		if err != nil {
			return history, fmt.Errorf("load completed jobs: %w", err)
		}
		history.Completed = jobs
	case core.RoleClient:
		jobs, err := s.history.PostedJobs(ctx, userID)
		if err != nil {
			return history, fmt.Errorf("load posted jobs: %w", err)
		}
		history.Posted = jobs
	default:
		return history, ErrUnsupportedRole
	}
	return history, nil
}

// LoadFullHistory fetches both sides of a user's history concurrently.
func LoadFullHistory(ctx context.Context, r ports.JobHistoryReader, userID string) (core.JobHistory, error) {
	var history core.JobHistory
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobs, err := r.CompletedJobs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("load completed jobs: %w", err)
		}
		history.Completed = jobs
		return nil
	})
	g.Go(func() error {
		jobs, err := r.PostedJobs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("load posted jobs: %w", err)
		}
		history.Posted = jobs
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.JobHistory{}, err
	}
	return history, nil
}

func cacheKey(userID string, q analytics.Query) string {
	return strings.Join([]string{
		userID,
		string(q.Range),
		string(q.View),
		fmt.Sprint(int(q.Month)),
		q.Now.Format(time.DateOnly),
	}, keySep)
}
