package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-05"` {
		t.Fatalf("unexpected json %s", b)
	}
	var back Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Year() != 2024 || back.Month() != 2 || back.Day() != 29 {
		t.Fatalf("unexpected date %v", back)
	}
	if err := json.Unmarshal([]byte(`"2023-02-29"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Paisa: 0}).Validate(); err != nil {
		t.Fatalf("zero must be allowed, got %v", err)
	}
	if err := (Money{Paisa: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCompletedJobValidate(t *testing.T) {
	good := CompletedJob{ProjectID: "1", Budget: Money{Paisa: 2500000}, Difficulty: DifficultyMedium, IsUrgent: true, ClientRating: 5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		job  CompletedJob
		want error
	}{
		{"empty project", CompletedJob{ClientRating: 3}, ErrEmptyProjectID},
		{"negative budget", CompletedJob{ProjectID: "1", Budget: Money{Paisa: -100}}, ErrInvalidBudget},
		{"rating too high", CompletedJob{ProjectID: "1", ClientRating: 5.5}, ErrInvalidRating},
		{"rating negative", CompletedJob{ProjectID: "1", ClientRating: -1}, ErrInvalidRating},
		{"rating NaN", CompletedJob{ProjectID: "1", ClientRating: math.NaN()}, ErrInvalidRating},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.job.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPostedJobValidate(t *testing.T) {
	good := PostedJob{ProjectID: "1", Budget: Money{Paisa: 2500000}, FreelancerRating: 5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (PostedJob{ProjectID: "1", FreelancerRating: 6}).Validate(); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := (PostedJob{ProjectID: "1", Budget: Money{Paisa: -1}}).Validate(); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected ErrInvalidBudget, got %v", err)
	}
}

func TestSpendingEventValidate(t *testing.T) {
	good := SpendingEvent{Date: NewDate(2024, 3, 5), Amount: Money{Paisa: 100000}, Category: "Design"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []SpendingEvent{
		{Amount: Money{Paisa: 1}, Category: "Design"},
		{Date: NewDate(2024, 3, 5), Amount: Money{Paisa: -1}, Category: "Design"},
		{Date: NewDate(2024, 3, 5), Amount: Money{Paisa: 1}, Category: "  "},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Freelancer "); err != nil || r != RoleFreelancer {
		t.Fatalf("expected freelancer, got %q (%v)", r, err)
	}
	if r, err := ParseRole("client"); err != nil || r != RoleClient {
		t.Fatalf("expected client, got %q (%v)", r, err)
	}
	if _, err := ParseRole("admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLabelText(t *testing.T) {
	l := Label{EN: "Wood I", NP: "काठ I"}
	if l.Text("np") != "काठ I" || l.Text("en") != "Wood I" || l.Text("fr") != "Wood I" {
		t.Fatalf("unexpected label text resolution")
	}
	if (Label{EN: "x"}).Text("np") != "x" {
		t.Fatalf("missing nepali must fall back to english")
	}
}
