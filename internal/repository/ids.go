package repository

import (
	"crop-auction/utils"
	"strconv"
	"sync/atomic"
	"time"
)

// IDGenerator allocates identifiers for new entities. Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator allocates time-ordered UUIDv7 identifiers
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return utils.GenerateID() }

// SequenceGenerator allocates prefix1, prefix2, ... from an atomic counter
type SequenceGenerator struct {
	prefix string
	next   atomic.Int64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return g.prefix + strconv.FormatInt(g.next.Add(1), 10)
}

// Option configures a store implementation
type Option func(*storeOptions)

type storeOptions struct {
	ids   IDGenerator
	clock func() time.Time
}

func defaultOptions() storeOptions {
	return storeOptions{
		ids:   UUIDGenerator{},
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *storeOptions) { o.ids = ids }
}

// WithClock replaces the clock used to stamp created_at
func WithClock(clock func() time.Time) Option {
	return func(o *storeOptions) { o.clock = clock }
}
