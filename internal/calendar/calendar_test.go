package calendar

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestBucketKeys(t *testing.T) {
	d := mustDate(t, "2024-02-29") // Thursday

	if got := DayKey(d); got != "2024-02-29" {
		t.Fatalf("day key: %s", got)
	}
	if got := WeekKey(d, time.Sunday); got != "2024-02-25" {
		t.Fatalf("sunday week key: %s", got)
	}
	if got := WeekKey(d, time.Monday); got != "2024-02-26" {
		t.Fatalf("monday week key: %s", got)
	}
	if got := MonthKey(d); got != "2024-02" {
		t.Fatalf("month key: %s", got)
	}
	if got := YearKey(d); got != "2024" {
		t.Fatalf("year key: %s", got)
	}
}

func TestWeekKeyCrossesYearBoundary(t *testing.T) {
	d := mustDate(t, "2025-01-01") // Wednesday
	if got := WeekKey(d, time.Sunday); got != "2024-12-29" {
		t.Fatalf("expected week to start in previous year, got %s", got)
	}
}

func TestWeekStartProperties(t *testing.T) {
	start := mustDate(t, "2023-01-01")
	end := mustDate(t, "2026-12-31")
	for _, first := range []time.Weekday{time.Sunday, time.Monday, time.Saturday} {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			ws := WeekStart(d, first)
			if ws.Weekday() != first {
				t.Fatalf("week start of %s is a %s, want %s", DayKey(d), ws.Weekday(), first)
			}
			if ws.After(d) || d.Sub(ws) >= 7*24*time.Hour {
				t.Fatalf("week start %s not within 6 days before %s", DayKey(ws), DayKey(d))
			}
			if MonthKey(d) != d.Format("2006-01") || YearKey(d) != d.Format("2006") {
				t.Fatalf("month/year key mismatch for %s", DayKey(d))
			}
		}
	}
}

func TestSettingsTodayUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	instant := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC) // 03:00 on April 1st in WIB

	s := Settings{Location: jakarta, WeekStart: time.Sunday}
	if got := DayKey(s.Today(instant)); got != "2024-04-01" {
		t.Fatalf("expected local date 2024-04-01, got %s", got)
	}
	if got := DayKey(DefaultSettings().Today(instant)); got != "2024-03-31" {
		t.Fatalf("expected UTC date 2024-03-31, got %s", got)
	}
}

func TestMonthHelpers(t *testing.T) {
	d := mustDate(t, "2024-01-31")
	first, last := MonthRange(d)
	if DayKey(first) != "2024-01-01" || DayKey(last) != "2024-01-31" {
		t.Fatalf("unexpected range %s..%s", DayKey(first), DayKey(last))
	}
	if got := DayKey(EndOfNextMonth(d)); got != "2024-02-29" {
		t.Fatalf("end of next month: %s", got)
	}
	if got := DayKey(EndOfNextMonth(mustDate(t, "2024-12-15"))); got != "2025-01-31" {
		t.Fatalf("end of next month across year: %s", got)
	}
}

func TestDatesOnWeekdays(t *testing.T) {
	from := mustDate(t, "2024-10-01")
	to := mustDate(t, "2024-10-31")
	dates := DatesOnWeekdays(from, to, []time.Weekday{time.Monday, time.Friday})
	if len(dates) != 8 {
		t.Fatalf("expected 8 dates, got %d", len(dates))
	}
	if DayKey(dates[0]) != "2024-10-04" || DayKey(dates[len(dates)-1]) != "2024-10-28" {
		t.Fatalf("unexpected bounds %s..%s", DayKey(dates[0]), DayKey(dates[len(dates)-1]))
	}
	if DatesOnWeekdays(from, to, nil) != nil {
		t.Fatalf("empty weekday set must yield no dates")
	}
	if DatesOnWeekdays(to, from, []time.Weekday{time.Monday}) != nil {
		t.Fatalf("inverted range must yield no dates")
	}
}

func TestParseWeekdays(t *testing.T) {
	got, err := ParseWeekdays([]string{"friday", "Monday", "MONDAY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != time.Monday || got[1] != time.Friday {
		t.Fatalf("unexpected weekdays %v", got)
	}

	none, err := ParseWeekdays([]string{"None"})
	if err != nil || len(none) != 0 {
		t.Fatalf("None should parse to empty set, got %v %v", none, err)
	}
	if names := WeekdayNames(none); len(names) != 1 || names[0] != NoneRecurrence {
		t.Fatalf("empty set should render as None, got %v", names)
	}

	if _, err := ParseWeekdays([]string{"None", "Monday"}); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if _, err := ParseWeekdays([]string{"Funday"}); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ParseMonth("2024/01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMonthInstantsUseLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	from, to := Settings{Location: tokyo}.MonthInstants(mustDate(t, "2024-03-01"))
	if want := time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("from = %s, want %s", from.UTC(), want)
	}
	if want := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("to = %s, want %s", to.UTC(), want)
	}

	from, to = Settings{}.MonthInstants(mustDate(t, "2024-12-01"))
	if !from.Equal(mustDate(t, "2024-12-01")) || !to.Equal(mustDate(t, "2025-01-01")) {
		t.Fatalf("utc bounds: %s %s", from, to)
	}
}
