// Package idgen provides the id-generation capability injected into the
// roster parser and rubric enrichment so tests can supply deterministic ids.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique identifier tokens.
type Generator interface {
	NewID() string
}

// UUID generates random ids backed by google/uuid.
type UUID struct{}

// NewID returns a short random token derived from a v4 UUID.
func (UUID) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Sequence generates predictable prefixed ids, intended for tests.
type Sequence struct {
	Prefix  string
	counter atomic.Int64
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.Prefix, s.counter.Add(1))
}
