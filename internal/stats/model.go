package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
)

// Bucket identifies one of the four rolling statistics documents.
type Bucket string

const (
	Daily   Bucket = "daily"
	Weekly  Bucket = "weekly"
	Monthly Bucket = "monthly"
	Yearly  Bucket = "yearly"
)

// Buckets lists every bucket in ascending period length.
var Buckets = []Bucket{Daily, Weekly, Monthly, Yearly}

// ErrInvalidBucket indicates an unknown bucket name.
var ErrInvalidBucket = errors.New("invalid stats bucket")

// ErrMissingUserID indicates a required user id was absent.
var ErrMissingUserID = errors.New("user id is required")

// ParseBucket validates a bucket name.
func ParseBucket(raw string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Buckets {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBucket, raw)
}

// Delta is a signed change to a period's counters.
type Delta struct {
	TaskCount int
	Minutes   int
	Category  string
}

// CompletionDelta is the contribution of one completed task.
func CompletionDelta(minutes int, category string) Delta {
	return Delta{TaskCount: 1, Minutes: minutes, Category: category}
}

// Negate returns the delta that undoes d.
func (d Delta) Negate() Delta {
	return Delta{TaskCount: -d.TaskCount, Minutes: -d.Minutes, Category: d.Category}
}

// IsZero reports whether applying d changes nothing.
func (d Delta) IsZero() bool {
	return d.TaskCount == 0 && d.Minutes == 0
}

// Counters are the running totals stored for one period key.
type Counters struct {
	TaskCount  int            `json:"task_count" firestore:"task_count"`
	TimeLogged int            `json:"time_logged" firestore:"time_logged"`
	Categories map[string]int `json:"categories" firestore:"categories"`
}

// Apply adds d to the counters. The category breakdown counts tasks.
func (c *Counters) Apply(d Delta) {
	c.TaskCount += d.TaskCount
	c.TimeLogged += d.Minutes
	if d.Category != "" && d.TaskCount != 0 {
		if c.Categories == nil {
			c.Categories = make(map[string]int)
		}
		c.Categories[d.Category] += d.TaskCount
	}
}

// Add returns the element-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	out := c.Clone()
	out.TaskCount += o.TaskCount
	out.TimeLogged += o.TimeLogged
	for cat, n := range o.Categories {
		if out.Categories == nil {
			out.Categories = make(map[string]int)
		}
		out.Categories[cat] += n
	}
	return out
}

// Clone deep-copies the category map.
func (c Counters) Clone() Counters {
	out := Counters{TaskCount: c.TaskCount, TimeLogged: c.TimeLogged}
	if c.Categories != nil {
		out.Categories = make(map[string]int, len(c.Categories))
		for k, v := range c.Categories {
			out.Categories[k] = v
		}
	}
	return out
}

// Equal compares counters by value; absent categories count as zero.
func (c Counters) Equal(o Counters) bool {
	if c.TaskCount != o.TaskCount || c.TimeLogged != o.TimeLogged {
		return false
	}
	for k, v := range c.Categories {
		if o.Categories[k] != v {
			return false
		}
	}
	for k, v := range o.Categories {
		if c.Categories[k] != v {
			return false
		}
	}
	return true
}

// Category returns the task count recorded for category.
func (c Counters) Category(category string) int {
	return c.Categories[category]
}

// Mutation targets a single period of a single bucket.
type Mutation struct {
	Bucket Bucket
	Key    string
	Delta  Delta
}

// Keys derives the four period keys containing date.
func Keys(date time.Time, weekStart time.Weekday) map[Bucket]string {
	return map[Bucket]string{
		Daily:   calendar.DayKey(date),
		Weekly:  calendar.WeekKey(date, weekStart),
		Monthly: calendar.MonthKey(date),
		Yearly:  calendar.YearKey(date),
	}
}

// Mutations expands delta into one mutation per bucket. A zero delta yields nothing.
func Mutations(date time.Time, weekStart time.Weekday, delta Delta) []Mutation {
	if delta.IsZero() {
		return nil
	}
	keys := Keys(date, weekStart)
	out := make([]Mutation, 0, len(Buckets))
	for _, b := range Buckets {
		out = append(out, Mutation{Bucket: b, Key: keys[b], Delta: delta})
	}
	return out
}

// Increments groups mutations by bucket document and period key.
type Increments map[Bucket]map[string]Counters

// Coalesce folds mutations so each bucket document is written once.
func Coalesce(muts []Mutation) Increments {
	out := make(Increments)
	for _, m := range muts {
		periods, ok := out[m.Bucket]
		if !ok {
			periods = make(map[string]Counters)
			out[m.Bucket] = periods
		}
		c := periods[m.Key]
		c.Apply(m.Delta)
		periods[m.Key] = c
	}
	return out
}

// Period pairs a key with its counters.
type Period struct {
	Key string `json:"key"`
	Counters
}

// Summary is the day/week/month/year view around a single date.
type Summary struct {
	Date  string `json:"date"`
	Day   Period `json:"day"`
	Week  Period `json:"week"`
	Month Period `json:"month"`
	Year  Period `json:"year"`
}

// Repository persists the bucket documents.
type Repository interface {
	Apply(ctx context.Context, userID string, muts []Mutation) error
	Period(ctx context.Context, userID string, bucket Bucket, key string) (Counters, error)
	Bucket(ctx context.Context, userID string, bucket Bucket) (map[string]Counters, error)
}
