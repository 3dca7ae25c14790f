package entitystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

// Validator is implemented by single-document snapshots.
type Validator interface {
	Validate() error
}

// Value is the single-document variant of Collection, used for the
// subscription state and the preferences. An empty key detaches the value
// from storage: Set only changes memory.
type Value[T Validator] struct {
	store domain.RecordStore
	key   string
	def   func() T
	log   *zerolog.Logger

	v      T
	stored bool
	// key of the last successful read
	readKey string
	// last read error; writes are refused while set
	readErr error
}

// NewValue creates a value holding def() until Load is called.
func NewValue[T Validator](store domain.RecordStore, key string, def func() T, log *zerolog.Logger) *Value[T] {
	if log == nil {
		log = &logger.L
	}
	return &Value[T]{store: store, key: key, def: def, log: log, v: def()}
}

// Get returns the current value.
func (v *Value[T]) Get() T { return v.v }

// Stored reports whether the current value was read from storage.
func (v *Value[T]) Stored() bool { return v.stored }

// Load reads the snapshot. Absent or malformed data yields the default, which
// is not written back. A failed read keeps the previous value when it came
// from the same key (the default otherwise) and makes Set refuse writes until
// a read succeeds.
func (v *Value[T]) Load(ctx context.Context) (T, error) {
	if v.key == "" {
		v.v, v.stored, v.readKey, v.readErr = v.def(), false, "", nil
		return v.v, nil
	}

	data, found, err := v.store.Load(ctx, v.key)
	if err != nil {
		v.log.Error().Err(err).Str("key", v.key).Msg("Failed to load snapshot")
		if v.readKey != v.key {
			v.v, v.stored = v.def(), false
		}
		v.readErr = fmt.Errorf("failed to load %s: %w", v.key, err)
		return v.v, v.readErr
	}
	v.v, v.stored, v.readKey, v.readErr = v.def(), false, v.key, nil
	if !found || len(data) == 0 {
		return v.v, nil
	}

	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		v.log.Warn().Err(err).Str("key", v.key).Msg("Malformed snapshot, using default")
		return v.v, nil
	}
	if err := decoded.Validate(); err != nil {
		v.log.Warn().Err(err).Str("key", v.key).Msg("Snapshot failed shape check, using default")
		return v.v, nil
	}
	v.v, v.stored = decoded, true
	return v.v, nil
}

// Readable reports whether the last read succeeded.
func (v *Value[T]) Readable() bool { return v.readErr == nil }

// Rescope binds the value to another key and loads it.
func (v *Value[T]) Rescope(ctx context.Context, key string) (T, error) {
	v.key = key
	return v.Load(ctx)
}

// Set validates and installs next, then persists it. A failed save keeps next
// in memory and returns an error wrapping domain.ErrPersistence.
//
// After a failed read Set changes nothing and returns domain.ErrUnreadable:
// next was derived from a value that may not match storage. The read is
// retried so a later Set can go through once storage is back.
func (v *Value[T]) Set(ctx context.Context, next T) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if v.readErr != nil {
		cause := v.readErr
		if _, err := v.Load(ctx); err != nil {
			cause = err
		}
		return fmt.Errorf("%w: %s not written: %w", domain.ErrUnreadable, v.key, cause)
	}
	v.v = next
	if v.key == "" {
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", domain.ErrPersistence, v.key, err)
	}
	if err := v.store.Save(ctx, v.key, data); err != nil {
		v.log.Warn().Err(err).Str("key", v.key).Msg("Failed to persist snapshot, keeping in-memory state")
		return fmt.Errorf("%w: failed to save %s: %w", domain.ErrPersistence, v.key, err)
	}
	v.stored = true
	return nil
}
