// Package goal owns the savings goals and their contributions.
package goal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/seeder"
)

// GoalService handles goal operations on top of the entity store.
// The saved amount of a goal only moves through contributions.
type GoalService struct {
	clock domain.Clock
	items *entitystore.Collection[domain.Goal]
}

// NewGoalService creates a new GoalService instance bound to the "goals" snapshot
func NewGoalService(store domain.RecordStore, clock domain.Clock, log *zerolog.Logger) *GoalService {
	return &GoalService{
		clock: clock,
		items: entitystore.New(store, domain.KeyGoals, entitystore.Options[domain.Goal]{
			Seed:      seeder.Goals,
			Normalize: domain.Goal.Normalize,
			Clock:     clock,
			Logger:    log,
		}),
	}
}

// Initialize loads the persisted goals, installing the demo set on a first empty load.
func (s *GoalService) Initialize(ctx context.Context) error {
	_, err := s.items.Initialize(ctx)
	return err
}

// SeedState exposes the seeding state of this session.
func (s *GoalService) SeedState() entitystore.SeedState { return s.items.SeedState() }

// Create stores a new goal. A positive InitialAmount becomes the first contribution.
func (s *GoalService) Create(ctx context.Context, draft domain.GoalDraft) (domain.Goal, error) {
	if draft.InitialAmount.IsNegative() {
		return domain.Goal{}, fmt.Errorf("%w: initial amount must be non-negative", domain.ErrValidation)
	}

	now := s.clock.Now()
	g := domain.Goal{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(draft.Title),
		TargetAmount:  draft.TargetAmount,
		Deadline:      draft.Deadline,
		Category:      draft.Category,
		Contributions: []domain.Contribution{},
		CreatedAt:     now,
	}
	if g.Category == "" {
		g.Category = domain.GoalCategoryOther
	}
	if draft.InitialAmount.IsPositive() {
		g.Contributions = append(g.Contributions, domain.Contribution{
			ID:     uuid.NewString(),
			Amount: draft.InitialAmount,
			Date:   now,
			Note:   "Initial amount",
		})
	}
	return s.items.Insert(ctx, g.Normalize())
}

// Update merges patch into the goal with the given id. An unknown id is a no-op
// and an empty patch returns the stored goal without persisting.
func (s *GoalService) Update(ctx context.Context, id string, patch domain.GoalPatch) (domain.Goal, bool, error) {
	if patch.IsEmpty() {
		g, ok := s.items.Get(id)
		return g, ok, nil
	}
	return s.items.Update(ctx, id, patch.Apply)
}

// Delete removes a goal. Deleting an unknown id is not an error.
func (s *GoalService) Delete(ctx context.Context, id string) (bool, error) {
	_, found, err := s.items.Delete(ctx, id)
	return found, err
}

// AddContribution records a deposit and recomputes the saved amount.
// A zero date means now.
func (s *GoalService) AddContribution(ctx context.Context, id string, amount decimal.Decimal, date time.Time, note string) (domain.Goal, bool, error) {
	if !amount.IsPositive() {
		return domain.Goal{}, false, fmt.Errorf("%w: contribution amount must be positive", domain.ErrValidation)
	}
	if date.IsZero() {
		date = s.clock.Now()
	}
	c := domain.Contribution{
		ID:     uuid.NewString(),
		Amount: amount,
		Date:   date,
		Note:   strings.TrimSpace(note),
	}
	return s.items.Update(ctx, id, func(g domain.Goal) domain.Goal {
		g.Contributions = append(slices.Clone(g.Contributions), c)
		return g
	})
}

// RemoveContribution deletes one contribution. Unknown goal or contribution ids are no-ops.
func (s *GoalService) RemoveContribution(ctx context.Context, goalID, contributionID string) (domain.Goal, bool, error) {
	g, ok := s.items.Get(goalID)
	if !ok {
		return domain.Goal{}, false, nil
	}
	if !slices.ContainsFunc(g.Contributions, func(c domain.Contribution) bool { return c.ID == contributionID }) {
		return g, true, nil
	}
	return s.items.Update(ctx, goalID, func(g domain.Goal) domain.Goal {
		g.Contributions = slices.DeleteFunc(slices.Clone(g.Contributions), func(c domain.Contribution) bool {
			return c.ID == contributionID
		})
		return g
	})
}

// Get returns the goal with the given id or domain.ErrNotFound.
func (s *GoalService) Get(id string) (domain.Goal, error) {
	g, ok := s.items.Get(id)
	if !ok {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return g, nil
}

// List returns all goals in insertion order.
func (s *GoalService) List() []domain.Goal { return s.items.All() }

// Count returns the number of goals.
func (s *GoalService) Count() int { return s.items.Len() }
