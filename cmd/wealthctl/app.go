package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/marketdata"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository"
	"github.com/simaogato/wealthflow-dashboard/internal/config"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/orchestrator"
)

var (
	userID   = flag.String("user", "", "identity to act as (empty for anonymous)")
	logLevel = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	offline  = flag.Bool("offline", false, "do not query the market feed")
)

// session is an opened store with a started orchestrator
type session struct {
	orch   *orchestrator.Orchestrator
	cfg    *config.AppConfig
	closer io.Closer
}

// openSession loads the configuration, opens the store and starts a session
// for the -user identity. Persistence warnings are printed, not fatal.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, closer, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var feed domain.MarketFeed
	if !*offline {
		feed = marketdata.NewClient(marketdata.Config{
			BaseURL:    cfg.MarketDataBaseURL,
			APIKey:     cfg.MarketDataAPIKey,
			VsCurrency: cfg.VsCurrency,
			Timeout:    cfg.MarketDataTimeout,
			RPS:        cfg.MarketDataRPS,
			CacheTTL:   cfg.QuoteCacheTTL,
		}, logger.FromContext(ctx))
	}

	orch := orchestrator.New(store, feed, orchestrator.Config{
		LargeExpenseThreshold: cfg.LargeExpenseThreshold,
		NotificationTTL:       cfg.NotificationTTL,
		Currency:              cfg.Currency,
	}, time.Now, orchestrator.Immediate, logger.FromContext(ctx))

	if err := orch.StartSession(ctx, *userID); err != nil {
		if !domain.IsWarning(err) {
			closer.Close()
			return nil, err
		}
		warn(err)
	}
	return &session{orch: orch, cfg: cfg, closer: closer}, nil
}

func (s *session) Close() error { return s.closer.Close() }

func warn(err error) {
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
}

// printMarkdown renders md for the terminal, or prints it raw when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
