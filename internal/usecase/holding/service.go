// Package holding owns the crypto holdings. Live valuation is never stored
// here; see analytics.Portfolio.
package holding

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/seeder"
)

// HoldingService handles crypto holding operations
type HoldingService struct {
	clock domain.Clock
	items *entitystore.Collection[domain.CryptoHolding]
}

// NewHoldingService creates a new HoldingService instance bound to the "crypto-holdings" snapshot
func NewHoldingService(store domain.RecordStore, clock domain.Clock, log *zerolog.Logger) *HoldingService {
	return &HoldingService{
		clock: clock,
		items: entitystore.New(store, domain.KeyCryptoHoldings, entitystore.Options[domain.CryptoHolding]{
			Seed:   seeder.Holdings,
			Clock:  clock,
			Logger: log,
		}),
	}
}

// Initialize loads the persisted holdings, installing the demo set on a first empty load.
func (s *HoldingService) Initialize(ctx context.Context) error {
	_, err := s.items.Initialize(ctx)
	return err
}

// SeedState exposes the seeding state of this session.
func (s *HoldingService) SeedState() entitystore.SeedState { return s.items.SeedState() }

// Create stores a new holding. The symbol is upper-cased.
func (s *HoldingService) Create(ctx context.Context, draft domain.HoldingDraft) (domain.CryptoHolding, error) {
	h := draft.Build(uuid.NewString(), s.clock.Now())
	if err := h.Validate(); err != nil {
		return domain.CryptoHolding{}, err
	}
	return s.items.Insert(ctx, h)
}

// Update merges patch into the holding with the given id. An unknown id is a
// no-op and an empty patch returns the stored holding without persisting.
func (s *HoldingService) Update(ctx context.Context, id string, patch domain.HoldingPatch) (domain.CryptoHolding, bool, error) {
	if patch.IsEmpty() {
		h, ok := s.items.Get(id)
		return h, ok, nil
	}
	return s.items.Update(ctx, id, patch.Apply)
}

// Delete removes a holding. Deleting an unknown id is not an error.
func (s *HoldingService) Delete(ctx context.Context, id string) (bool, error) {
	_, found, err := s.items.Delete(ctx, id)
	return found, err
}

// Get returns the holding with the given id or domain.ErrNotFound.
func (s *HoldingService) Get(id string) (domain.CryptoHolding, error) {
	h, ok := s.items.Get(id)
	if !ok {
		return domain.CryptoHolding{}, fmt.Errorf("holding %s: %w", id, domain.ErrNotFound)
	}
	return h, nil
}

// List returns all holdings in insertion order.
func (s *HoldingService) List() []domain.CryptoHolding { return s.items.All() }

// Symbols returns the distinct held symbols, sorted. This is what the market feed is asked for.
func (s *HoldingService) Symbols() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, h := range s.items.All() {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	sort.Strings(out)
	return out
}
