package domain

import "time"

// Record is the common shape of every entity kept in an entity store.
type Record interface {
	GetID() string
	Validate() error
}

// Persisted snapshot keys. One key per entity collection, shared namespace.
const (
	KeyTransactions       = "transactions"
	KeyGoals              = "goals"
	KeyCryptoHoldings     = "crypto-holdings"
	KeyNotifications      = "notifications"
	KeySubscription       = "subscription"
	KeyLanguagePreference = "language-preference"
	KeyThemePreference    = "theme-preference"
)

// UserScopedKey returns the key of a per-user collection.
// An empty userID yields the bare key, which is only used for anonymous defaults.
func UserScopedKey(key, userID string) string {
	if userID == "" {
		return key
	}
	return key + ":" + userID
}

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// Now returns c() or time.Now when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
