// Package entitystore implements the in-memory authoritative entity collections
// that persist a full snapshot to a domain.RecordStore after every mutation.
//
// A Collection is not safe for concurrent use: callers run every operation on
// one logical thread (the gRPC adapter serializes requests for this purpose).
package entitystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

// SeedState tracks whether a collection may still install its seed set.
// It lives next to the collection, never inside the persisted snapshot, and
// is reset only by a new process.
type SeedState int

const (
	// SeedPending means nothing was loaded or seeded yet this session.
	SeedPending SeedState = iota
	// SeededThisSession means the seed set was installed during this session.
	SeededThisSession
	// SeedHasData means persisted records were found.
	SeedHasData
)

func (s SeedState) String() string {
	switch s {
	case SeededThisSession:
		return "seeded-this-session"
	case SeedHasData:
		return "has-data"
	default:
		return "not-yet-seeded"
	}
}

// Order is the insertion policy of a collection
type Order int

const (
	// Append adds new records at the end (chronological).
	Append Order = iota
	// Prepend adds new records first (newest-first).
	Prepend
)

// Options configures a Collection.
type Options[T domain.Record] struct {
	// Seed returns the demo records installed on a first empty load. Nil disables seeding.
	Seed func(now time.Time) []T
	// Normalize recomputes derived fields before validation. Nil means identity.
	Normalize func(T) T
	Order     Order
	Clock     domain.Clock
	Logger    *zerolog.Logger
}

// Collection is the generic entity store
type Collection[T domain.Record] struct {
	store domain.RecordStore
	key   string
	opts  Options[T]
	log   *zerolog.Logger

	items []T
	seed  SeedState
}

// New creates an empty collection bound to key. Call Initialize to load it.
func New[T domain.Record](store domain.RecordStore, key string, opts Options[T]) *Collection[T] {
	log := opts.Logger
	if log == nil {
		log = &logger.L
	}
	return &Collection[T]{
		store: store,
		key:   key,
		opts:  opts,
		log:   log,
		items: make([]T, 0),
	}
}

// SeedState returns the seeding state of this session.
func (c *Collection[T]) SeedState() SeedState { return c.seed }

// Initialize loads the persisted snapshot. Absent, empty or malformed data
// installs the seed set (and saves it) unless this session already seeded or
// found data. It reports whether the seed set was installed.
func (c *Collection[T]) Initialize(ctx context.Context) (bool, error) {
	items, err := c.load(ctx)
	if err != nil {
		// The store could not be read: keep whatever is in memory and never
		// seed over data that may still exist.
		return false, err
	}

	if len(items) > 0 {
		c.items = items
		if c.seed == SeedPending {
			c.seed = SeedHasData
		}
		return false, nil
	}

	c.items = make([]T, 0)
	if c.opts.Seed == nil || c.seed != SeedPending {
		return false, nil
	}

	seeded := make([]T, 0)
	for _, rec := range c.opts.Seed(c.opts.Clock.Now()) {
		rec = c.normalize(rec)
		if err := rec.Validate(); err != nil {
			return false, fmt.Errorf("invalid seed record %s in %s: %w", rec.GetID(), c.key, err)
		}
		seeded = append(seeded, rec)
	}
	c.items = seeded
	c.seed = SeededThisSession
	c.log.Info().Str("key", c.key).Int("records", len(seeded)).Msg("Installed seed records")

	return true, c.persist(ctx)
}

// load reads and shape-checks the snapshot. Absent and malformed snapshots
// yield an empty slice and no error.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, found, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.log.Error().Err(err).Str("key", c.key).Msg("Failed to load snapshot")
		return nil, fmt.Errorf("failed to load %s: %w", c.key, err)
	}
	if !found || len(data) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Malformed snapshot, treating as absent")
		return nil, nil
	}

	seen := make(map[string]bool, len(items))
	for i, rec := range items {
		rec = c.normalize(rec)
		if err := rec.Validate(); err != nil {
			c.log.Warn().Err(err).Str("key", c.key).Int("index", i).Msg("Snapshot failed shape check, treating as absent")
			return nil, nil
		}
		if seen[rec.GetID()] {
			c.log.Warn().Str("key", c.key).Str("id", rec.GetID()).Msg("Duplicate id in snapshot, treating as absent")
			return nil, nil
		}
		seen[rec.GetID()] = true
		items[i] = rec
	}
	return items, nil
}

// persist writes the full collection. A failure keeps the in-memory state and
// is returned wrapped in domain.ErrPersistence.
func (c *Collection[T]) persist(ctx context.Context) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", domain.ErrPersistence, c.key, err)
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Failed to persist snapshot, keeping in-memory state")
		return fmt.Errorf("%w: failed to save %s: %w", domain.ErrPersistence, c.key, err)
	}
	return nil
}

func (c *Collection[T]) normalize(rec T) T {
	if c.opts.Normalize == nil {
		return rec
	}
	return c.opts.Normalize(rec)
}

func (c *Collection[T]) indexOf(id string) int {
	for i, rec := range c.items {
		if rec.GetID() == id {
			return i
		}
	}
	return -1
}

// Insert validates rec and adds it following the collection order.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	rec = c.normalize(rec)
	if err := rec.Validate(); err != nil {
		var zero T
		return zero, err
	}
	if c.indexOf(rec.GetID()) >= 0 {
		var zero T
		return zero, fmt.Errorf("%w: duplicate id %s", domain.ErrValidation, rec.GetID())
	}

	if c.opts.Order == Prepend {
		c.items = append([]T{rec}, c.items...)
	} else {
		c.items = append(c.items, rec)
	}
	return rec, c.persist(ctx)
}

// Update applies fn to the record with the given id. A missing id is a no-op
// (found is false). The result is re-validated; on failure nothing changes.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(T) T) (T, bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false, nil
	}

	updated := c.normalize(fn(c.items[i]))
	if updated.GetID() != id {
		return c.items[i], true, fmt.Errorf("%w: record id cannot change", domain.ErrValidation)
	}
	if err := updated.Validate(); err != nil {
		return c.items[i], true, err
	}
	c.items[i] = updated
	return updated, true, c.persist(ctx)
}

// UpdateWhere applies fn to every record matching pred and persists once.
// It returns the number of updated records.
func (c *Collection[T]) UpdateWhere(ctx context.Context, pred func(T) bool, fn func(T) T) (int, error) {
	next := make([]T, len(c.items))
	n := 0
	for i, rec := range c.items {
		if !pred(rec) {
			next[i] = rec
			continue
		}
		updated := c.normalize(fn(rec))
		if err := updated.Validate(); err != nil {
			return 0, err
		}
		next[i] = updated
		n++
	}
	if n == 0 {
		return 0, nil
	}
	c.items = next
	return n, c.persist(ctx)
}

// Delete removes the record with the given id. The snapshot is persisted even
// when the id is unknown, so deleting twice is the same as deleting once.
func (c *Collection[T]) Delete(ctx context.Context, id string) (T, bool, error) {
	var removed T
	found := false
	if i := c.indexOf(id); i >= 0 {
		removed, found = c.items[i], true
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	return removed, found, c.persist(ctx)
}

// DeleteWhere removes every record matching pred and persists once when
// anything was removed.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(T) bool) ([]T, error) {
	kept := make([]T, 0, len(c.items))
	removed := make([]T, 0)
	for _, rec := range c.items {
		if pred(rec) {
			removed = append(removed, rec)
		} else {
			kept = append(kept, rec)
		}
	}
	if len(removed) == 0 {
		return removed, nil
	}
	c.items = kept
	return removed, c.persist(ctx)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// All returns a copy of the records in collection order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the records matching pred in collection order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	out := make([]T, 0)
	for _, rec := range c.items {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of records.
func (c *Collection[T]) Len() int { return len(c.items) }
