package http

import (
	"context"
	"net/http"
	"time"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/auth"
	"kaamgarau/internal/core"
)

// identity returns the authenticated caller. Routes using it sit behind
// auth.Middleware, so a missing identity is a wiring bug.
func identity(r *http.Request) (string, core.Role) {
	id, _ := auth.FromContext(r.Context())
	return id.UserID.String(), id.Role
}

type myLevelResponse struct {
	UserID string    `json:"userId"`
	Role   core.Role `json:"role"`
	levelInfoResponse
}

func (s *Server) handleMyLevel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, role := identity(r)
	summary, err := s.dashboard.Level(ctx, userID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, myLevelResponse{
		UserID:            userID,
		Role:              role,
		levelInfoResponse: newLevelInfoResponse(s.dashboard.Table(), summary.XP, summary.Info),
	})
}

type snapshotResponse struct {
	Level      int        `json:"level"`
	TierName   core.Label `json:"tierName"`
	XP         float64    `json:"xp"`
	Progress   int        `json:"progressPercent"`
	RecordedAt time.Time  `json:"recordedAt"`
}

type levelHistoryResponse struct {
	Role      core.Role          `json:"role"`
	Snapshots []snapshotResponse `json:"snapshots"`
}

func (s *Server) handleMyLevelHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, role := identity(r)
	snaps, err := s.dashboard.LevelHistory(ctx, userID, role, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := levelHistoryResponse{Role: role, Snapshots: make([]snapshotResponse, 0, len(snaps))}
	for _, snap := range snaps {
		resp.Snapshots = append(resp.Snapshots, snapshotResponse{
			Level:      snap.Level,
			TierName:   snap.TierName,
			XP:         snap.XP,
			Progress:   snap.Progress,
			RecordedAt: snap.RecordedAt.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, role := identity(r)
	stats, err := s.dashboard.Stats(ctx, userID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type analyticsResponse struct {
	analytics.Series
	Subtitle   core.Label `json:"subtitle"`
	TotalPaisa int64      `json:"totalPaisa"`
}

func newAnalyticsResponse(series analytics.Series) analyticsResponse {
	q := analytics.Query{
		Range: series.Range,
		View:  series.View,
		Month: time.Month(series.Month),
		Now:   time.Date(series.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	return analyticsResponse{
		Series:     series,
		Subtitle:   analytics.Subtitle(q),
		TotalPaisa: series.Total(),
	}
}

func (s *Server) handleMyAnalytics(w http.ResponseWriter, r *http.Request) {
	q, err := parseAnalyticsQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	byCount, err := parseSliceOrder(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := identity(r)
	series, err := s.dashboard.Analytics(ctx, userID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if byCount && len(series.Slices) > 1 {
		// the series may be shared with the cache
		series.Slices = append([]analytics.Slice(nil), series.Slices...)
		series.SortSlicesByCount()
	}
	writeJSON(w, http.StatusOK, newAnalyticsResponse(series))
}

func (s *Server) handleMyOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, role := identity(r)
	overview, err := s.dashboard.Overview(ctx, userID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"level":     newLevelInfoResponse(s.dashboard.Table(), overview.Level.XP, overview.Level.Info),
		"stats":     overview.Stats,
		"analytics": newAnalyticsResponse(overview.Analytics),
	})
}
