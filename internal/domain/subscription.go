package domain

import (
	"slices"
	"time"
)

// Plan represents a subscription tier
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro || p == PlanEnterprise
}

// Feature is a capability unlocked by a plan
type Feature string

const (
	FeatureDashboard         Feature = "dashboard"
	FeatureTransactions      Feature = "transactions"
	FeatureGoals             Feature = "goals"
	FeatureCryptoPortfolio   Feature = "crypto_portfolio"
	FeatureAdvancedAnalytics Feature = "advanced_analytics"
	FeatureExport            Feature = "export"
	FeatureUnlimitedGoals    Feature = "unlimited_goals"
	FeatureAPIAccess         Feature = "api_access"
	FeaturePrioritySupport   Feature = "priority_support"
	FeatureTeamManagement    Feature = "team_management"
)

// FreeGoalLimit is the number of goals available without FeatureUnlimitedGoals.
const FreeGoalLimit = 3

var planFeatures = map[Plan][]Feature{
	PlanFree: {FeatureDashboard, FeatureTransactions, FeatureGoals},
	PlanPro: {FeatureDashboard, FeatureTransactions, FeatureGoals,
		FeatureCryptoPortfolio, FeatureAdvancedAnalytics, FeatureExport, FeatureUnlimitedGoals},
	PlanEnterprise: {FeatureDashboard, FeatureTransactions, FeatureGoals,
		FeatureCryptoPortfolio, FeatureAdvancedAnalytics, FeatureExport, FeatureUnlimitedGoals,
		FeatureAPIAccess, FeaturePrioritySupport, FeatureTeamManagement},
}

// Subscription is the persisted plan state of one user.
// The entitlement set is not stored: Features derives it from the plan and
// the expiry timestamps.
type Subscription struct {
	Plan           Plan       `json:"currentPlan"`
	TrialStartedAt *time.Time `json:"trialStartDate,omitempty"`
	TrialEndsAt    *time.Time `json:"trialEndDate,omitempty"`
	SubscribedAt   *time.Time `json:"subscriptionStartDate,omitempty"`
	ExpiresAt      *time.Time `json:"subscriptionEndDate,omitempty"`
}

// DefaultSubscription is the anonymous / first-run state.
func DefaultSubscription() Subscription {
	return Subscription{Plan: PlanFree}
}

// Validate ensures the subscription adheres to domain rules
func (s Subscription) Validate() error {
	if !s.Plan.Valid() {
		return invalid("unknown plan %q", s.Plan)
	}
	if s.TrialStartedAt != nil && s.TrialEndsAt != nil && s.TrialEndsAt.Before(*s.TrialStartedAt) {
		return invalid("trial cannot end before it starts")
	}
	if s.SubscribedAt != nil && s.ExpiresAt != nil && s.ExpiresAt.Before(*s.SubscribedAt) {
		return invalid("subscription cannot expire before it starts")
	}
	return nil
}

// OnTrial reports whether a trial is running at now.
func (s Subscription) OnTrial(now time.Time) bool {
	return s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt) && !s.paidActive(now)
}

func (s Subscription) paidActive(now time.Time) bool {
	return s.SubscribedAt != nil && (s.ExpiresAt == nil || now.Before(*s.ExpiresAt))
}

// Expired reports whether a paid plan has no running trial or paid period at now.
func (s Subscription) Expired(now time.Time) bool {
	if s.Plan == PlanFree {
		return false
	}
	return !s.paidActive(now) && !s.OnTrial(now)
}

// EffectivePlan is the plan the user is entitled to at now.
func (s Subscription) EffectivePlan(now time.Time) Plan {
	if s.Expired(now) {
		return PlanFree
	}
	return s.Plan
}

// Features returns the entitlement set at now.
func (s Subscription) Features(now time.Time) []Feature {
	return slices.Clone(planFeatures[s.EffectivePlan(now)])
}

// HasFeature reports whether f is unlocked at now.
func (s Subscription) HasFeature(f Feature, now time.Time) bool {
	return slices.Contains(planFeatures[s.EffectivePlan(now)], f)
}

// PlanFeatures lists the features of a plan, regardless of any expiry.
func PlanFeatures(p Plan) []Feature {
	return slices.Clone(planFeatures[p])
}
