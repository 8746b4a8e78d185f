package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces unique identifiers for new documents.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a Generator that produces v7 UUIDs where available, falling back to v4.
func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Sequence hands out predictable identifiers ("prefix-1", "prefix-2", ...) for tests.
type Sequence struct {
	Prefix string
	n      int
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	s.n++
	return s.Prefix + "-" + strconv.Itoa(s.n)
}
