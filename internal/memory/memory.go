package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"kaamgarau/internal/core"
	"kaamgarau/internal/ports"
)

type snapshotKey struct {
	user string
	role core.Role
}

// Store keeps every record in process memory. It implements ports.Store.
type Store struct {
	mu        sync.RWMutex
	seq       int64
	completed map[string][]core.CompletedJob
	posted    map[string][]core.PostedJob
	spending  map[string][]core.SpendingEvent
	snapshots map[snapshotKey][]core.LevelSnapshot
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		completed: make(map[string][]core.CompletedJob),
		posted:    make(map[string][]core.PostedJob),
		spending:  make(map[string][]core.SpendingEvent),
		snapshots: make(map[snapshotKey][]core.LevelSnapshot),
	}
}

// NewFromFiles seeds spending events from base/spending_seed.txt. Each
// non-comment line is "user,YYYY-MM-DD,amount,category". Malformed lines are
// skipped; a missing file yields an empty store.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "spending_seed.txt")) {
		user, e, ok := parseSeedLine(line)
		if !ok {
			continue
		}
		s.spending[user] = append(s.spending[user], e)
		s.seq++
	}
	return s
}

func (s *Store) nextRef() string {
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq)
}

func (s *Store) RecordCompletedJob(_ context.Context, userID string, job core.CompletedJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[userID] = append(s.completed[userID], job)
	return s.nextRef(), nil
}

func (s *Store) RecordPostedJob(_ context.Context, userID string, job core.PostedJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted[userID] = append(s.posted[userID], job)
	return s.nextRef(), nil
}

func (s *Store) RecordSpending(_ context.Context, userID string, e core.SpendingEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spending[userID] = append(s.spending[userID], e)
	return s.nextRef(), nil
}

func (s *Store) CompletedJobs(_ context.Context, userID string) ([]core.CompletedJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.CompletedJob(nil), s.completed[userID]...), nil
}

func (s *Store) PostedJobs(_ context.Context, userID string) ([]core.PostedJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.PostedJob(nil), s.posted[userID]...), nil
}

// SpendingEvents returns a copy sorted by date; equal dates keep insertion order.
func (s *Store) SpendingEvents(_ context.Context, userID string) ([]core.SpendingEvent, error) {
	s.mu.RLock()
	out := append([]core.SpendingEvent(nil), s.spending[userID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap core.LevelSnapshot) error {
	if snap.UserID == "" || !snap.Role.Valid() {
		return fmt.Errorf("save snapshot: %w", core.ErrInvalidRole)
	}
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	snap.ID = s.seq
	key := snapshotKey{snap.UserID, snap.Role}
	s.snapshots[key] = append(s.snapshots[key], snap)
	return nil
}

func (s *Store) LatestSnapshot(_ context.Context, userID string, role core.Role) (core.LevelSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.snapshots[snapshotKey{userID, role}]
	if len(list) == 0 {
		return core.LevelSnapshot{}, ports.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (s *Store) ListSnapshots(_ context.Context, userID string, role core.Role, limit int) ([]core.LevelSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.snapshots[snapshotKey{userID, role}]
	out := make([]core.LevelSnapshot, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}

func (s *Store) UsersWithoutSnapshot(_ context.Context) ([]ports.UserRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.UserRole
	for user, jobs := range s.completed {
		if len(jobs) > 0 && len(s.snapshots[snapshotKey{user, core.RoleFreelancer}]) == 0 {
			out = append(out, ports.UserRole{UserID: user, Role: core.RoleFreelancer})
		}
	}
	for user, jobs := range s.posted {
		if len(jobs) > 0 && len(s.snapshots[snapshotKey{user, core.RoleClient}]) == 0 {
			out = append(out, ports.UserRole{UserID: user, Role: core.RoleClient})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Role < out[j].Role
	})
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func parseSeedLine(line string) (string, core.SpendingEvent, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return "", core.SpendingEvent{}, false
	}
	user := strings.TrimSpace(parts[0])
	date, err := core.ParseDate(parts[1])
	if err != nil || user == "" {
		return "", core.SpendingEvent{}, false
	}
	paisa, err := core.ParseDecimalToPaisa(parts[2])
	if err != nil {
		return "", core.SpendingEvent{}, false
	}
	e := core.SpendingEvent{Date: date, Amount: core.Money{Paisa: paisa}, Category: strings.TrimSpace(parts[3])}
	if e.Validate() != nil {
		return "", core.SpendingEvent{}, false
	}
	return user, e, true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
