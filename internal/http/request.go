package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/core"
)

const maxBodyBytes = 64 << 10

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// completedJobRequest is the body of POST /api/v1/me/jobs/completed. Budget
// is in rupees and accepts up to two decimals.
type completedJobRequest struct {
	ProjectID    string      `json:"projectId" validate:"required,max=64"`
	Budget       json.Number `json:"budget" validate:"required"`
	Difficulty   string      `json:"difficulty" validate:"max=32"`
	IsUrgent     bool        `json:"isUrgent"`
	ClientRating float64     `json:"clientRating" validate:"gte=0,lte=5"`
	CompletedOn  string      `json:"completedOn" validate:"omitempty,datetime=2006-01-02"`
}

// postedJobRequest is the body of POST /api/v1/me/jobs/posted. A category
// also records the budget as spending.
type postedJobRequest struct {
	ProjectID        string      `json:"projectId" validate:"required,max=64"`
	Budget           json.Number `json:"budget" validate:"required"`
	FreelancerRating float64     `json:"freelancerRating" validate:"gte=0,lte=5"`
	PostedOn         string      `json:"postedOn" validate:"omitempty,datetime=2006-01-02"`
	Category         string      `json:"category" validate:"omitempty,max=64"`
}

type spendingRequest struct {
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	Amount   json.Number `json:"amount" validate:"required"`
	Category string      `json:"category" validate:"required,max=64"`
}

func (req completedJobRequest) toDomain() (core.CompletedJob, error) {
	budget, err := parseRupees(req.Budget)
	if err != nil {
		return core.CompletedJob{}, err
	}
	date, err := parseOptionalDate(req.CompletedOn)
	if err != nil {
		return core.CompletedJob{}, err
	}
	return core.CompletedJob{
		ProjectID:    sanitizeInput(req.ProjectID),
		Budget:       budget,
		Difficulty:   core.ParseDifficulty(req.Difficulty),
		IsUrgent:     req.IsUrgent,
		ClientRating: req.ClientRating,
		CompletedOn:  date,
	}, nil
}

func (req postedJobRequest) toDomain() (core.PostedJob, error) {
	budget, err := parseRupees(req.Budget)
	if err != nil {
		return core.PostedJob{}, err
	}
	date, err := parseOptionalDate(req.PostedOn)
	if err != nil {
		return core.PostedJob{}, err
	}
	return core.PostedJob{
		ProjectID:        sanitizeInput(req.ProjectID),
		Budget:           budget,
		FreelancerRating: req.FreelancerRating,
		PostedOn:         date,
	}, nil
}

func (req spendingRequest) toDomain() (core.SpendingEvent, error) {
	amount, err := parseRupees(req.Amount)
	if err != nil {
		return core.SpendingEvent{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.SpendingEvent{}, err
	}
	return core.SpendingEvent{Date: date, Amount: amount, Category: sanitizeInput(req.Category)}, nil
}

func parseRupees(n json.Number) (core.Money, error) {
	paisa, err := core.ParseDecimalToPaisa(n.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paisa: paisa}, nil
}

func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("%w: content type must be application/json", errBadRequest)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequest)
	}
	return s.validate.Struct(dst)
}

// parseAnalyticsQuery reads range, view and month. month is 0-indexed
// (0 = January) and defaults to the current month.
func parseAnalyticsQuery(q url.Values) (analytics.Query, error) {
	var out analytics.Query

	rangeParam := strings.TrimSpace(q.Get("range"))
	if rangeParam == "" {
		rangeParam = string(analytics.RangeMonthly)
	}
	tr, err := analytics.ParseTimeRange(rangeParam)
	if err != nil {
		return out, err
	}

	viewParam := strings.TrimSpace(q.Get("view"))
	if viewParam == "" {
		viewParam = string(analytics.ViewSpending)
	}
	view, err := analytics.ParseView(viewParam)
	if err != nil {
		return out, err
	}

	out.Range, out.View = tr, view
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 || m > 11 {
			return out, fmt.Errorf("%w: month %q must be 0-11", analytics.ErrInvalidQuery, v)
		}
		out.Month = time.Month(m + 1)
	}
	return out, nil
}

// parseSliceOrder reports whether category slices should be sorted by count.
// The default keeps first-seen order.
func parseSliceOrder(q url.Values) (bool, error) {
	switch v := strings.TrimSpace(q.Get("order")); v {
	case "", "first-seen":
		return false, nil
	case "count":
		return true, nil
	default:
		return false, fmt.Errorf("%w: order %q must be first-seen or count", analytics.ErrInvalidQuery, v)
	}
}

func parseXP(q url.Values) (float64, error) {
	v := strings.TrimSpace(q.Get("xp"))
	if v == "" {
		return 0, fmt.Errorf("%w: xp is required", errBadRequest)
	}
	xp, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(xp) || math.IsInf(xp, 0) {
		return 0, fmt.Errorf("%w: xp %q is not a number", errBadRequest, v)
	}
	return xp, nil
}

func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit %q must be a positive integer", errBadRequest, v)
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}
	return n, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
