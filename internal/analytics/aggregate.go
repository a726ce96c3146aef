// Package analytics turns a user's dated spending history into chart-ready
// series for the dashboard.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kaamgarau/internal/core"
)

type TimeRange string

const (
	RangeDaily   TimeRange = "daily"
	RangeMonthly TimeRange = "monthly"
	RangeYearly  TimeRange = "yearly"
)

type View string

const (
	ViewSpending View = "spending"
	ViewCategory View = "category"
)

// ErrInvalidQuery is returned for an unknown range, view or month.
var ErrInvalidQuery = errors.New("invalid analytics query")

func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeDaily, RangeMonthly, RangeYearly:
		return r, nil
	}
	return "", fmt.Errorf("%w: time range %q", ErrInvalidQuery, s)
}

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewSpending, ViewCategory:
		return v, nil
	}
	return "", fmt.Errorf("%w: view %q", ErrInvalidQuery, s)
}

// Query selects what to aggregate. Month is only read for RangeDaily and
// defaults to the month of Now. Now defaults to the current UTC time and
// fixes what "current year" means.
type Query struct {
	Range TimeRange
	View  View
	Month time.Month
	Now   time.Time
}

// Resolve fills defaults and validates the query.
func (q Query) Resolve() (Query, error) {
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	q.Now = q.Now.UTC()

	switch q.Range {
	case RangeDaily, RangeMonthly, RangeYearly:
	default:
		return q, fmt.Errorf("%w: time range %q", ErrInvalidQuery, q.Range)
	}
	switch q.View {
	case ViewSpending, ViewCategory:
	default:
		return q, fmt.Errorf("%w: view %q", ErrInvalidQuery, q.View)
	}

	if q.Month == 0 {
		q.Month = q.Now.Month()
	}
	if q.Month < time.January || q.Month > time.December {
		return q, fmt.Errorf("%w: month %d", ErrInvalidQuery, q.Month)
	}
	if q.Range != RangeDaily {
		q.Month = 0
	}
	return q, nil
}

// Point is one spend-over-time bucket. Paisa is the exact total; Value is
// the same amount in rupees.
type Point struct {
	Label core.Label `json:"label"`
	Value float64    `json:"value"`
	Paisa int64      `json:"paisa"`
}

// Slice is one category bucket; Value counts events, not money.
type Slice struct {
	Name  core.Label `json:"name"`
	Value int        `json:"value"`
	Color string     `json:"color"`
}

// Series is the aggregation result. Exactly one of Points or Slices is used,
// depending on View.
type Series struct {
	Range  TimeRange `json:"range"`
	View   View      `json:"view"`
	Month  int       `json:"month,omitempty"`
	Year   int       `json:"year"`
	Points []Point   `json:"points,omitempty"`
	Slices []Slice   `json:"slices,omitempty"`
}

// Len returns the number of buckets.
func (s Series) Len() int {
	if s.View == ViewCategory {
		return len(s.Slices)
	}
	return len(s.Points)
}

// Total sums every spending bucket in paisa.
func (s Series) Total() int64 {
	var total int64
	for _, p := range s.Points {
		total += p.Paisa
	}
	return total
}

// SortSlicesByCount orders category buckets by descending count, then by
// English name.
func (s *Series) SortSlicesByCount() {
	sort.SliceStable(s.Slices, func(i, j int) bool {
		if s.Slices[i].Value != s.Slices[j].Value {
			return s.Slices[i].Value > s.Slices[j].Value
		}
		return s.Slices[i].Name.EN < s.Slices[j].Name.EN
	})
}

// Aggregator buckets spending events using a category catalog.
type Aggregator struct {
	catalog *Catalog
}

// NewAggregator returns an aggregator; a nil catalog means DefaultCatalog.
func NewAggregator(catalog *Catalog) *Aggregator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Aggregator{catalog: catalog}
}

// Catalog returns the catalog the aggregator resolves categories with.
func (a *Aggregator) Catalog() *Catalog {
	return a.catalog
}

var defaultAggregator = NewAggregator(nil)

// Aggregate uses the default catalog.
func Aggregate(events []core.SpendingEvent, q Query) (Series, error) {
	return defaultAggregator.Aggregate(events, q)
}

// Aggregate filters events to the query window and buckets them. The input
// slice is never modified.
func (a *Aggregator) Aggregate(events []core.SpendingEvent, q Query) (Series, error) {
	q, err := q.Resolve()
	if err != nil {
		return Series{}, err
	}

	series := Series{Range: q.Range, View: q.View, Month: int(q.Month), Year: q.Now.Year()}
	filtered := filterEvents(events, q)

	switch q.View {
	case ViewSpending:
		switch q.Range {
		case RangeDaily:
			series.Points = dailySpending(filtered, q.Now.Year(), q.Month)
		case RangeMonthly:
			series.Points = monthlySpending(filtered)
		case RangeYearly:
			series.Points = yearlySpending(filtered)
		}
	case ViewCategory:
		series.Slices = a.categoryDistribution(filtered)
	}

	return series, nil
}

func filterEvents(events []core.SpendingEvent, q Query) []core.SpendingEvent {
	year := q.Now.Year()
	out := make([]core.SpendingEvent, 0, len(events))
	for _, e := range events {
		switch q.Range {
		case RangeDaily:
			if e.Date.Year() != year || e.Date.Month() != int(q.Month) {
				continue
			}
		case RangeMonthly:
			if e.Date.Year() != year {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dailySpending(events []core.SpendingEvent, year int, month time.Month) []Point {
	days := daysIn(year, month)
	totals := make([]int64, days)
	for _, e := range events {
		totals[e.Date.Day()-1] += e.Amount.Paisa
	}

	points := make([]Point, days)
	for i, paisa := range totals {
		points[i] = newPoint(dayLabel(i+1), paisa)
	}
	return points
}

func monthlySpending(events []core.SpendingEvent) []Point {
	var totals [12]int64
	for _, e := range events {
		totals[e.Date.Month()-1] += e.Amount.Paisa
	}

	points := make([]Point, 12)
	for i, paisa := range totals {
		points[i] = newPoint(monthAbbrev[i], paisa)
	}
	return points
}

func yearlySpending(events []core.SpendingEvent) []Point {
	totals := make(map[int]int64)
	for _, e := range events {
		totals[e.Date.Year()] += e.Amount.Paisa
	}

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]Point, 0, len(years))
	for _, y := range years {
		points = append(points, newPoint(yearLabel(y), totals[y]))
	}
	return points
}

// categoryDistribution counts events per distinct category string in
// first-seen order.
func (a *Aggregator) categoryDistribution(events []core.SpendingEvent) []Slice {
	index := make(map[string]int)
	slices := make([]Slice, 0)
	for _, e := range events {
		if i, ok := index[e.Category]; ok {
			slices[i].Value++
			continue
		}
		index[e.Category] = len(slices)
		name, color := a.catalog.Resolve(e.Category)
		slices = append(slices, Slice{Name: name, Value: 1, Color: color})
	}
	return slices
}

func newPoint(label core.Label, paisa int64) Point {
	return Point{Label: label, Value: core.Money{Paisa: paisa}.Rupees(), Paisa: paisa}
}
