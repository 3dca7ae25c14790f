// Package subscription owns the plan state of the active identity.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
)

const (
	// TrialLength is the duration of a free trial.
	TrialLength = 14 * 24 * time.Hour
	// BillingPeriod is the duration a paid plan stays active after ChangePlan.
	BillingPeriod = 30 * 24 * time.Hour
)

// SubscriptionService handles the subscription snapshot of one identity at a time.
// With no identity the state is the anonymous free default and is never persisted.
type SubscriptionService struct {
	clock  domain.Clock
	log    *zerolog.Logger
	value  *entitystore.Value[domain.Subscription]
	userID string
}

// NewSubscriptionService creates a new SubscriptionService in the anonymous scope
func NewSubscriptionService(store domain.RecordStore, clock domain.Clock, log *zerolog.Logger) *SubscriptionService {
	if log == nil {
		log = &logger.L
	}
	return &SubscriptionService{
		clock: clock,
		log:   log,
		value: entitystore.NewValue(store, "", domain.DefaultSubscription, log),
	}
}

// Scope re-binds the service to the snapshot of userID ("" for anonymous) and loads it.
func (s *SubscriptionService) Scope(ctx context.Context, userID string) (domain.Subscription, error) {
	key := ""
	if userID != "" {
		key = domain.UserScopedKey(domain.KeySubscription, userID)
	}
	s.userID = userID
	return s.value.Rescope(ctx, key)
}

// Current returns the stored subscription state.
func (s *SubscriptionService) Current() domain.Subscription { return s.value.Get() }

// Plan returns the plan the user is entitled to right now.
func (s *SubscriptionService) Plan() domain.Plan {
	return s.value.Get().EffectivePlan(s.clock.Now())
}

// Features returns the current entitlement set.
func (s *SubscriptionService) Features() []domain.Feature {
	return s.value.Get().Features(s.clock.Now())
}

// HasFeature reports whether f is unlocked right now.
func (s *SubscriptionService) HasFeature(f domain.Feature) bool {
	return s.value.Get().HasFeature(f, s.clock.Now())
}

// Require returns domain.ErrFeatureLocked when f is not unlocked.
func (s *SubscriptionService) Require(f domain.Feature) error {
	if !s.HasFeature(f) {
		return fmt.Errorf("%w: %s requires a plan upgrade", domain.ErrFeatureLocked, f)
	}
	return nil
}

// Refresh downgrades an expired trial or paid period to the free plan.
// It returns the plan that expired, or "" when nothing changed.
// The trial timestamps are kept so a used trial cannot be restarted.
func (s *SubscriptionService) Refresh(ctx context.Context) (domain.Plan, error) {
	cur := s.value.Get()
	if !cur.Expired(s.clock.Now()) {
		return "", nil
	}
	expired := cur.Plan
	cur.Plan = domain.PlanFree
	cur.SubscribedAt = nil
	cur.ExpiresAt = nil
	_, err := s.commit(ctx, cur)
	if errors.Is(err, domain.ErrUnreadable) {
		return "", err
	}
	s.log.Info().Str("user_id", s.userID).Str("plan", string(expired)).Msg("Subscription expired, downgraded to free")
	return expired, err
}

// commit writes next. When the write is refused because the stored state
// could not be read, the current value is returned unchanged.
func (s *SubscriptionService) commit(ctx context.Context, next domain.Subscription) (domain.Subscription, error) {
	err := s.value.Set(ctx, next)
	if errors.Is(err, domain.ErrUnreadable) {
		s.log.Error().Err(err).Str("user_id", s.userID).Msg("Subscription change refused, stored state unreadable")
		return s.value.Get(), err
	}
	return next, err
}

// ChangePlan switches to plan. Paid plans run for one BillingPeriod from now;
// the free plan clears the paid period.
func (s *SubscriptionService) ChangePlan(ctx context.Context, plan domain.Plan) (domain.Subscription, error) {
	if !plan.Valid() {
		return s.value.Get(), fmt.Errorf("%w: unknown plan %q", domain.ErrValidation, plan)
	}
	now := s.clock.Now()
	next := s.value.Get()
	next.Plan = plan
	if plan == domain.PlanFree {
		next.SubscribedAt, next.ExpiresAt = nil, nil
	} else {
		end := now.Add(BillingPeriod)
		next.SubscribedAt, next.ExpiresAt = &now, &end
	}
	return s.commit(ctx, next)
}

// StartTrial starts a TrialLength trial of plan. A trial can be taken once,
// and only from the free plan.
func (s *SubscriptionService) StartTrial(ctx context.Context, plan domain.Plan) (domain.Subscription, error) {
	cur := s.value.Get()
	if plan == domain.PlanFree || !plan.Valid() {
		return cur, fmt.Errorf("%w: cannot trial plan %q", domain.ErrValidation, plan)
	}
	if cur.TrialStartedAt != nil {
		return cur, fmt.Errorf("%w: trial already used", domain.ErrValidation)
	}
	now := s.clock.Now()
	if cur.EffectivePlan(now) != domain.PlanFree {
		return cur, fmt.Errorf("%w: already on a paid plan", domain.ErrValidation)
	}
	end := now.Add(TrialLength)
	next := cur
	next.Plan = plan
	next.TrialStartedAt, next.TrialEndsAt = &now, &end
	return s.commit(ctx, next)
}
