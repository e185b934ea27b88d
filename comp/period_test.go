package comp_test

import (
	"testing"
	"time"

	"github.com/warp/commission-engine/comp"
)

func TestParseQuarter(t *testing.T) {
	q, err := comp.ParseQuarter("2025-Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Year != 2025 || q.Q != 1 {
		t.Errorf("expected 2025-Q1, got %+v", q)
	}

	if _, err := comp.ParseQuarter("2025-Q5"); err == nil {
		t.Error("Q5 should be rejected")
	}
	if _, err := comp.ParseQuarter("garbage"); err == nil {
		t.Error("garbage should be rejected")
	}
}

func TestQuarter_Bounds(t *testing.T) {
	q := comp.Quarter{Year: 2025, Q: 2}

	if got := q.Start(); !got.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected Apr 1, got %v", got)
	}
	if got := q.End(); !got.Equal(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected Jun 30, got %v", got)
	}
	if !q.Contains(time.Date(2025, time.May, 15, 10, 30, 0, 0, time.UTC)) {
		t.Error("May 15 should be inside Q2")
	}
	if q.Contains(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Jul 1 should be outside Q2")
	}
}

func TestParseMonth_Bounds(t *testing.T) {
	m, err := comp.ParseMonth("2025-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.End(); got.Day() != 28 {
		t.Errorf("Feb 2025 should end on the 28th, got %v", got)
	}
	if m.Prev().String() != "2025-01" || m.Next().String() != "2025-03" {
		t.Errorf("prev/next wrong: %s / %s", m.Prev(), m.Next())
	}
}

func TestMonthsBetween(t *testing.T) {
	// GIVEN: A last-order date and an as-of date
	// WHEN: Measuring whole months between them
	// THEN: Partial months round down

	jan15 := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		to   time.Time
		want int
	}{
		{time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC), 5},
		{time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), 6},
		{time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC), 6},
		{time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), 12},
		{jan15, 0},
	}
	for _, c := range cases {
		if got := comp.MonthsBetween(jan15, c.to); got != c.want {
			t.Errorf("MonthsBetween(jan15, %v) = %d, want %d", c.to, got, c.want)
		}
	}

	if got := comp.MonthsBetween(jan15, time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)); got != -2 {
		t.Errorf("expected -2 for reversed range, got %d", got)
	}
}
