// Package calendar holds the civil-date arithmetic shared by tasks, recurrences and stats.
//
// Dates are represented as time.Time values at midnight UTC so that period keys never
// drift with the server's timezone. Callers convert wall-clock instants with Settings.Today.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical ISO calendar date format.
	DateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	yearLayout  = "2006"
)

// ErrInvalidDate indicates a date string that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidWeekday indicates an unknown weekday name.
var ErrInvalidWeekday = errors.New("invalid weekday")

// Settings carries the user-facing calendar conventions.
type Settings struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// DefaultSettings uses UTC and Sunday-first weeks.
func DefaultSettings() Settings {
	return Settings{Location: time.UTC, WeekStart: time.Sunday}
}

// Today converts an instant to the civil date it falls on in the configured location.
func (s Settings) Today(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return Date(now.In(loc))
}

// MonthInstants returns the instants [from, to) spanning the month that starts on first,
// as observed in the configured location.
func (s Settings) MonthInstants(first time.Time) (time.Time, time.Time) {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// Date truncates t to its civil date (as seen in t's own location) at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseMonth parses YYYY-MM and returns the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DayKey formats the daily bucket key.
func DayKey(t time.Time) string {
	return Date(t).Format(DateLayout)
}

// WeekStart returns the most recent firstDay on or before t.
func WeekStart(t time.Time, firstDay time.Weekday) time.Time {
	day := Date(t)
	offset := (int(day.Weekday()) - int(firstDay) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey formats the weekly bucket key: the ISO date of the week start.
func WeekKey(t time.Time, firstDay time.Weekday) string {
	return WeekStart(t, firstDay).Format(DateLayout)
}

// MonthKey formats the monthly bucket key (YYYY-MM).
func MonthKey(t time.Time) string {
	return Date(t).Format(monthLayout)
}

// YearKey formats the yearly bucket key (YYYY).
func YearKey(t time.Time) string {
	return Date(t).Format(yearLayout)
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := FirstOfMonth(t)
	return first, first.AddDate(0, 1, -1)
}

// FirstOfMonth returns day one of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfNextMonth is the materialization horizon for recurrences created on t.
func EndOfNextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 2, -1)
}

// DatesOnWeekdays lists every date in [from, to] whose weekday is in the set, ascending.
func DatesOnWeekdays(from, to time.Time, weekdays []time.Weekday) []time.Time {
	if len(weekdays) == 0 {
		return nil
	}
	from, to = Date(from), Date(to)
	if to.Before(from) {
		return nil
	}

	wanted := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		wanted[wd] = true
	}

	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wanted[d.Weekday()] {
			out = append(out, d)
		}
	}
	return out
}

// NoneRecurrence is the literal that marks a one-off task.
const NoneRecurrence = "None"

// ParseWeekday accepts full English weekday names, case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	trimmed := strings.TrimSpace(name)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), trimmed) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}

// ParseWeekdays converts names into a sorted, de-duplicated weekday set.
// An empty list or the single value "None" yields the empty set.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), NoneRecurrence) {
			if len(names) > 1 {
				return nil, fmt.Errorf("%w: %q cannot be combined with weekdays", ErrInvalidWeekday, NoneRecurrence)
			}
			return nil, nil
		}
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		seen[wd] = true
	}
	return SortWeekdays(seen), nil
}

// SortWeekdays flattens a weekday set in Sunday-first order.
func SortWeekdays(set map[time.Weekday]bool) []time.Weekday {
	out := make([]time.Weekday, 0, len(set))
	for wd, ok := range set {
		if ok {
			out = append(out, wd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WeekdayNames renders a weekday set, or ["None"] when empty.
func WeekdayNames(weekdays []time.Weekday) []string {
	if len(weekdays) == 0 {
		return []string{NoneRecurrence}
	}
	out := make([]string, len(weekdays))
	for i, wd := range weekdays {
		out[i] = wd.String()
	}
	return out
}
