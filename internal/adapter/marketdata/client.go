// Package marketdata implements domain.MarketFeed against a CoinGecko style
// /coins/markets endpoint.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

// ErrUnavailable is returned when the feed cannot be reached and no
// last-known quote exists.
var ErrUnavailable = errors.New("marketdata: feed unavailable")

// Config holds the client settings
type Config struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	Timeout    time.Duration
	RPS        int
	CacheTTL   time.Duration
}

// Client is a rate limited, caching market feed
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	// fresh quotes, served without a request until CacheTTL
	fresh *cache.Cache
	// last quote ever seen per symbol, served stale when the feed fails
	lastKnown *cache.Cache
	log       *zerolog.Logger
}

// NewClient creates a market feed client
func NewClient(cfg Config, log *zerolog.Logger) *Client {
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		fresh:     cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		lastKnown: cache.New(cache.NoExpiration, 0),
		log:       log,
	}
}

// market is one row of the /coins/markets response
type market struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"current_price"`
	MarketCap decimal.Decimal `json:"market_cap"`
	Change24h decimal.Decimal `json:"price_change_percentage_24h_in_currency"`
	Change7d  decimal.Decimal `json:"price_change_percentage_7d_in_currency"`
}

func (m market) quote() domain.Quote {
	return domain.Quote{
		ID:        m.ID,
		Symbol:    domain.NormalizeSymbol(m.Symbol),
		Name:      m.Name,
		Price:     m.Price,
		Change24h: m.Change24h,
		Change7d:  m.Change7d,
		MarketCap: m.MarketCap,
	}
}

// Quotes implements domain.MarketFeed.
// Logic:
//  1. Serve symbols with a fresh cached quote directly
//  2. Fetch the rest in one request
//  3. On failure, fall back to last-known quotes flagged Stale
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	out := make(map[string]domain.Quote, len(symbols))
	missing := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := domain.NormalizeSymbol(s)
		if sym == "" {
			continue
		}
		if q, ok := c.fresh.Get(sym); ok {
			out[sym] = q.(domain.Quote)
			continue
		}
		missing = append(missing, sym)
	}
	if len(missing) == 0 {
		return out, nil
	}

	params := url.Values{}
	params.Set("symbols", strings.ToLower(strings.Join(missing, ",")))
	markets, err := c.fetch(ctx, params)
	if err != nil {
		stale := 0
		for _, sym := range missing {
			if q, ok := c.lastKnown.Get(sym); ok {
				quote := q.(domain.Quote)
				quote.Stale = true
				out[sym] = quote
				stale++
			}
		}
		if stale == 0 && len(out) == 0 {
			return nil, err
		}
		c.log.Warn().Err(err).Int("stale", stale).Msg("Serving last-known quotes")
		return out, nil
	}

	for _, m := range markets {
		q := m.quote()
		// several assets may share a ticker; the first (largest market cap) wins
		if _, seen := out[q.Symbol]; seen {
			continue
		}
		out[q.Symbol] = q
		c.remember(q)
	}
	return out, nil
}

// Top implements domain.MarketFeed
func (c *Client) Top(ctx context.Context, page, perPage int) ([]domain.Quote, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 250 {
		perPage = 100
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	markets, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	quotes := make([]domain.Quote, 0, len(markets))
	for _, m := range markets {
		q := m.quote()
		c.remember(q)
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *Client) remember(q domain.Quote) {
	c.fresh.Set(q.Symbol, q, cache.DefaultExpiration)
	c.lastKnown.Set(q.Symbol, q, cache.NoExpiration)
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]market, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("marketdata: rate limiter: %w", err)
	}

	params.Set("vs_currency", c.cfg.VsCurrency)
	params.Set("order", "market_cap_desc")
	params.Set("price_change_percentage", "24h,7d")
	addr := strings.TrimRight(c.cfg.BaseURL, "/") + "/coins/markets?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, errorMessage(body))
	}

	var markets []market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("marketdata: failed to decode markets: %w", err)
	}
	c.log.Debug().Int("count", len(markets)).Msg("Fetched market data")
	return markets, nil
}

// errorMessage extracts the message of an error body. The API reports errors
// either as {"status":{"error_message":...}} or {"error":...}.
func errorMessage(body []byte) string {
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"$.status.error_message", "$.error"} {
		v, err := jsonpath.Get(path, jobj)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}

// Compile-time check: ensure Client implements MarketFeed interface
var _ domain.MarketFeed = (*Client)(nil)
