package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/core"
	"kaamgarau/internal/leveling"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady pings every registered dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			s.logger.WarnContext(ctx, "Readiness check failed", "check", name, "error", err.Error())
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
		"rateLimiter": map[string]any{
			"activeClients": s.rateLimiter.ActiveClients(),
			"limited":       s.rateLimiter.GetMetrics().TotalHits,
		},
	}
	if c := s.dashboard.Cache(); c != nil {
		stats := c.Stats()
		body["cache"] = map[string]any{
			"entries": stats.Size,
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}
	}
	writeJSON(w, httpStatus, body)
}

type levelsResponse struct {
	MaxLevel int                  `json:"maxLevel"`
	Levels   []leveling.Threshold `json:"levels"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	table := s.dashboard.Table()
	writeJSON(w, http.StatusOK, levelsResponse{MaxLevel: table.Len(), Levels: table.Thresholds()})
}

type option[T any] struct {
	Value T          `json:"value"`
	Label core.Label `json:"label"`
}

type categoryStyle struct {
	Name  core.Label `json:"name"`
	Color string     `json:"color"`
}

type analyticsOptionsResponse struct {
	Ranges     []option[analytics.TimeRange] `json:"ranges"`
	Views      []option[analytics.View]      `json:"views"`
	Months     []option[int]                 `json:"months"`
	Categories []categoryStyle               `json:"categories"`
}

// handleAnalyticsOptions lists the selector values accepted by
// /api/v1/me/analytics. Month values are 0-indexed.
func (s *Server) handleAnalyticsOptions(w http.ResponseWriter, r *http.Request) {
	var res analyticsOptionsResponse
	for _, tr := range []analytics.TimeRange{analytics.RangeDaily, analytics.RangeMonthly, analytics.RangeYearly} {
		res.Ranges = append(res.Ranges, option[analytics.TimeRange]{Value: tr, Label: analytics.TimeRangeLabel(tr)})
	}
	for _, v := range []analytics.View{analytics.ViewSpending, analytics.ViewCategory} {
		res.Views = append(res.Views, option[analytics.View]{Value: v, Label: analytics.ViewLabel(v)})
	}
	for i, label := range analytics.MonthOptions() {
		res.Months = append(res.Months, option[int]{Value: i, Label: label})
	}
	for _, style := range s.dashboard.Catalog().Known() {
		res.Categories = append(res.Categories, categoryStyle{Name: style.Name, Color: style.Color})
	}
	writeJSON(w, http.StatusOK, res)
}

type levelInfoResponse struct {
	XP float64 `json:"xp"`
	leveling.Info
	// NextLevelXP is omitted at the top level.
	NextLevelXP *int64 `json:"nextLevelXp,omitempty"`
}

func newLevelInfoResponse(table *leveling.Table, xp float64, info leveling.Info) levelInfoResponse {
	resp := levelInfoResponse{XP: xp, Info: info}
	if next, ok := table.Threshold(info.Level + 1); ok {
		resp.NextLevelXP = &next.XPRequired
	}
	return resp
}

func (s *Server) handleLevelLookup(w http.ResponseWriter, r *http.Request) {
	xp, err := parseXP(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	table := s.dashboard.Table()
	writeJSON(w, http.StatusOK, newLevelInfoResponse(table, xp, table.LevelInfo(xp)))
}
