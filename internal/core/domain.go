package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
)

const dateLayout = "2006-01-02"

type (
	Role string

	// Label carries the same display string in English and Nepali.
	Label struct {
		EN string `json:"en"`
		NP string `json:"np"`
	}

	Date struct {
		time.Time
	}

	// Money is an amount in paisa (1/100 rupee).
	Money struct {
		Paisa int64
	}

	// CompletedJob is a job a freelancer delivered.
	CompletedJob struct {
		ProjectID    string
		Budget       Money
		Difficulty   Difficulty
		IsUrgent     bool
		ClientRating float64
		CompletedOn  Date
	}

	// PostedJob is a job a client posted and saw completed.
	PostedJob struct {
		ProjectID        string
		Budget           Money
		FreelancerRating float64
		PostedOn         Date
	}

	SpendingEvent struct {
		Date     Date
		Amount   Money
		Category string
	}

	// JobHistory is everything the leveling engine reads for a user.
	JobHistory struct {
		Completed []CompletedJob
		Posted    []PostedJob
	}
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidBudget    = errors.New("budget must not be negative")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
	ErrEmptyProjectID   = errors.New("empty project id")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCategoryTooLong  = errors.New("category too long (max 64 characters)")
	ErrProjectIDTooLong = errors.New("project id too long (max 64 characters)")
)

// ParseRole accepts "freelancer" or "client", case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFreelancer:
		return RoleFreelancer, nil
	case RoleClient:
		return RoleClient, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	return r == RoleFreelancer || r == RoleClient
}

func (r Role) String() string {
	return string(r)
}

// Text returns the label in the requested language, falling back to English.
func (l Label) Text(lang string) string {
	if strings.EqualFold(lang, "np") && l.NP != "" {
		return l.NP
	}
	return l.EN
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Paisa < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Paisa: m.Paisa + o.Paisa}
}

func validateRating(r float64) error {
	if r != r || r < MinRating || r > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func validateProjectID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyProjectID
	}
	if len(id) > 64 {
		return ErrProjectIDTooLong
	}
	return nil
}

func (j CompletedJob) Validate() error {
	if err := validateProjectID(j.ProjectID); err != nil {
		return err
	}
	if j.Budget.Paisa < 0 {
		return ErrInvalidBudget
	}
	if err := validateRating(j.ClientRating); err != nil {
		return err
	}
	if !j.CompletedOn.IsZero() {
		if err := j.CompletedOn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (j PostedJob) Validate() error {
	if err := validateProjectID(j.ProjectID); err != nil {
		return err
	}
	if j.Budget.Paisa < 0 {
		return ErrInvalidBudget
	}
	if err := validateRating(j.FreelancerRating); err != nil {
		return err
	}
	if !j.PostedOn.IsZero() {
		if err := j.PostedOn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e SpendingEvent) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 64 {
		return ErrCategoryTooLong
	}
	return nil
}

// IsEmpty reports whether the history holds no jobs of either kind.
func (h JobHistory) IsEmpty() bool {
	return len(h.Completed) == 0 && len(h.Posted) == 0
}
