// Package ident mints local message ids for optimistic inserts.
package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces ids for messages created locally, before the
// persistence service has assigned its own. Ids only need to be unique for
// the session and comparable for equality.
type Generator interface {
	Next() string
}

// UUIDGenerator mints random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Next() string {
	return uuid.NewString()
}

// NewGenerator returns the default generator.
func NewGenerator() Generator {
	return UUIDGenerator{}
}

// SequenceGenerator mints "local-1", "local-2", ... Deterministic, used in
// tests where assertions need stable ids.
type SequenceGenerator struct {
	n atomic.Uint64
}

func (g *SequenceGenerator) Next() string {
	return fmt.Sprintf("local-%d", g.n.Add(1))
}
