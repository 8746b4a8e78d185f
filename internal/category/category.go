// Package category defines the fixed task categories shared by tasks, stats and badges.
package category

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one of the six fixed task categories.
type Category string

const (
	Work     Category = "Work"
	Study    Category = "Study"
	Fitness  Category = "Fitness"
	Chores   Category = "Chores"
	SelfCare Category = "SelfCare"
	Other    Category = "Other"
)

// All lists the categories in display order.
var All = []Category{Work, Study, Fitness, Chores, SelfCare, Other}

// ErrInvalid indicates a value outside the fixed set.
var ErrInvalid = errors.New("invalid category")

// Parse matches raw case-insensitively against the fixed set.
func Parse(raw string) (Category, error) {
	trimmed := strings.TrimSpace(raw)
	for _, c := range All {
		if strings.EqualFold(string(c), trimmed) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (allowed: %s)", ErrInvalid, raw, strings.Join(Names(), ", "))
}

// Names returns the categories as strings.
func Names() []string {
	out := make([]string, len(All))
	for i, c := range All {
		out[i] = string(c)
	}
	return out
}
