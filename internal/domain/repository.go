package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// RecordStore defines the durable key/value persistence of entity snapshots.
// It holds no business semantics: snapshots are opaque JSON documents.
// Two Save calls on different keys are independent; there is no atomicity across keys.
type RecordStore interface {
	// Load returns the snapshot stored under key.
	// found is false when nothing was ever saved under key.
	Load(ctx context.Context, key string) (snapshot []byte, found bool, err error)

	// Save replaces the snapshot stored under key.
	Save(ctx context.Context, key string, snapshot []byte) error
}

// Quote is a live market data point for one asset
type Quote struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"currentPrice"`
	Change24h decimal.Decimal `json:"priceChangePercentage24h"`
	Change7d  decimal.Decimal `json:"priceChangePercentage7d"`
	MarketCap decimal.Decimal `json:"marketCap"`
	Stale     bool            `json:"stale,omitempty"` // served from the last-known cache
}

// MarketFeed defines the external market data boundary.
// Quotes are never persisted with any entity.
type MarketFeed interface {
	// Quotes returns the latest quotes keyed by upper-case symbol.
	// Symbols the feed does not know are absent from the result.
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)

	// Top returns a ranked page of assets by market cap. page starts at 1.
	Top(ctx context.Context, page, perPage int) ([]Quote, error)
}
