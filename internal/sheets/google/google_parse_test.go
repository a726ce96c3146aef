package google

import (
	"strings"
	"testing"
)

func TestParseLedger(t *testing.T) {
	values := [][]interface{}{
		{"User", "Date", "Category", "Amount"},
		{"u1", "2024-03-05", "Design", 1000.0},
		{"u2", "2024-03-05", "Design", 99.0},
		{"u1", "2023-12-31", "Writing", "Rs. 25,000.50"},
		{"u1", "05/03/2024", "Design", 10.0},
		{"u1", "2024-01-01", "", 10.0},
		{"u1", "2024-01-02", "Marketing", "free"},
		{"u1"},
	}

	events, skipped, err := parseLedger(values, "u1")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Category != "Writing" || events[0].Amount.Paisa != 2500050 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Category != "Design" || events[1].Amount.Paisa != 100000 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if skipped != 4 {
		t.Fatalf("expected 4 skipped rows, got %d", skipped)
	}
}

func TestParseLedgerMissingHeader(t *testing.T) {
	_, _, err := parseLedger([][]interface{}{{"Date", "Amount"}}, "u1")
	if err == nil || !strings.Contains(err.Error(), "missing Category,User") {
		t.Fatalf("expected missing header error, got %v", err)
	}

	events, skipped, err := parseLedger(nil, "u1")
	if err != nil || events != nil || skipped != 0 {
		t.Fatalf("empty sheet must yield nothing, got %v %d %v", events, skipped, err)
	}
}

func TestParseRupeesToPaisa(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1000", 100000, true},
		{"Rs. 1,000", 100000, true},
		{"रु. 12.5", 1250, true},
		{"-5", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseRupeesToPaisa(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%q: expected %d/%v, got %d/%v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}
