package grpc

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/analytics"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/orchestrator"
)

// Server implements DashboardServer on top of the orchestrator
type Server struct {
	Orchestrator *orchestrator.Orchestrator

	serial *Serializer
	log    *zerolog.Logger
}

// NewServer creates a new gRPC server instance.
// serial must be the one whose Schedule was given to the orchestrator.
func NewServer(orch *orchestrator.Orchestrator, serial *Serializer, log *zerolog.Logger) *Server {
	if serial == nil {
		serial = &Serializer{}
	}
	if log == nil {
		log = &logger.L
	}
	return &Server{Orchestrator: orch, serial: serial, log: log}
}

// handle runs fn under the serializer after switching the orchestrator to
// the caller identity.
func (s *Server) handle(ctx context.Context, fn func(o *orchestrator.Orchestrator) (map[string]interface{}, error)) (*structpb.Struct, error) {
	var (
		fields map[string]interface{}
		err    error
	)
	s.serial.Do(func() {
		s.switchIdentity(ctx)
		fields, err = fn(s.Orchestrator)
	})
	if err != nil && !domain.IsWarning(err) {
		return nil, mapError(err)
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	if err != nil {
		// the mutation is kept in memory but was not durably saved
		fields["warning"] = err.Error()
		s.log.Warn().Err(err).Msg("Snapshot not persisted")
	}
	return encode(fields)
}

// switchIdentity moves the orchestrator to the caller identity. Must run
// under the serializer.
func (s *Server) switchIdentity(ctx context.Context) {
	identity := IdentityFromContext(ctx)
	if identity == s.Orchestrator.Identity() {
		return
	}
	if err := s.Orchestrator.ChangeIdentity(ctx, identity); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity).Msg("Identity change incomplete")
	}
}

// prefetchQuotes reads the caller's holding symbols under the serializer,
// then asks the market feed outside it so a slow feed never holds up other
// requests. Holdings added in between are valued as stale.
func (s *Server) prefetchQuotes(ctx context.Context) map[string]domain.Quote {
	var symbols []string
	s.serial.Do(func() {
		s.switchIdentity(ctx)
		symbols = s.Orchestrator.QuoteSymbols()
	})
	return s.Orchestrator.FetchQuotes(ctx, symbols)
}

type idRequest struct {
	ID string `json:"id"`
}

// GetDashboard handles the GetDashboard RPC
func (s *Server) GetDashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	quotes := s.prefetchQuotes(ctx)
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		overview, err := o.OverviewWithQuotes(quotes)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"overview": overview}, nil
	})
}

// ListTransactions handles the ListTransactions RPC.
// Optional filters: type, category, limit. Results are newest first by date.
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Kind     domain.TransactionKind     `json:"type"`
		Category domain.TransactionCategory `json:"category"`
		Limit    int                        `json:"limit"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureTransactions); err != nil {
			return nil, err
		}
		txs := o.Transactions.Recent(-1)
		if in.Kind != "" || in.Category != "" {
			txs = slices.DeleteFunc(txs, func(tx domain.Transaction) bool {
				return (in.Kind != "" && tx.Kind != in.Kind) || (in.Category != "" && tx.Category != in.Category)
			})
		}
		if in.Limit > 0 && len(txs) > in.Limit {
			txs = txs[:in.Limit]
		}
		return map[string]interface{}{
			"transactions": txs,
			"summary":      analytics.Transactions(txs),
		}, nil
	})
}

// CreateTransaction handles the CreateTransaction RPC
func (s *Server) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var draft domain.TransactionDraft
	if err := decode(req, &draft); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		tx, err := o.AddTransaction(ctx, draft)
		return map[string]interface{}{"transaction": tx}, err
	})
}

// UpdateTransaction handles the UpdateTransaction RPC.
// An unknown id is reported as found=false, not as an error.
func (s *Server) UpdateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID    string                  `json:"id"`
		Patch domain.TransactionPatch `json:"patch"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureTransactions); err != nil {
			return nil, err
		}
		tx, found, err := o.Transactions.Update(ctx, in.ID, in.Patch)
		fields := map[string]interface{}{"found": found}
		if found {
			fields["transaction"] = tx
		}
		return fields, err
	})
}

// DeleteTransaction handles the DeleteTransaction RPC
func (s *Server) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureTransactions); err != nil {
			return nil, err
		}
		found, err := o.Transactions.Delete(ctx, in.ID)
		return map[string]interface{}{"found": found}, err
	})
}

// ListGoals handles the ListGoals RPC
func (s *Server) ListGoals(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureGoals); err != nil {
			return nil, err
		}
		goals := o.Goals.List()
		now := o.Now()
		progress := make([]analytics.GoalProgress, 0, len(goals))
		for _, g := range goals {
			progress = append(progress, analytics.Progress(g, now))
		}
		return map[string]interface{}{
			"goals":    goals,
			"progress": progress,
			"summary":  analytics.SummarizeGoals(goals, now),
		}, nil
	})
}

// CreateGoal handles the CreateGoal RPC
func (s *Server) CreateGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var draft domain.GoalDraft
	if err := decode(req, &draft); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		g, err := o.CreateGoal(ctx, draft)
		return map[string]interface{}{"goal": g}, err
	})
}

// Contribute handles the Contribute RPC
func (s *Server) Contribute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		GoalID string          `json:"goalId"`
		Amount decimal.Decimal `json:"amount"`
		Date   time.Time       `json:"date"`
		Note   string          `json:"note"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureGoals); err != nil {
			return nil, err
		}
		g, found, err := o.Contribute(ctx, in.GoalID, in.Amount, in.Date, in.Note)
		fields := map[string]interface{}{"found": found}
		if found {
			fields["goal"] = g
		}
		return fields, err
	})
}

// DeleteGoal handles the DeleteGoal RPC
func (s *Server) DeleteGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		if err := o.Subscription.Require(domain.FeatureGoals); err != nil {
			return nil, err
		}
		found, err := o.Goals.Delete(ctx, in.ID)
		return map[string]interface{}{"found": found}, err
	})
}

// ListHoldings handles the ListHoldings RPC. The valuation uses live quotes
// when the feed answers and purchase prices otherwise.
func (s *Server) ListHoldings(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	quotes := s.prefetchQuotes(ctx)
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		holdings, err := o.ListHoldings()
		if err != nil {
			return nil, err
		}
		portfolio, err := o.PortfolioWithQuotes(quotes)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"holdings": holdings, "portfolio": portfolio}, nil
	})
}

// CreateHolding handles the CreateHolding RPC
func (s *Server) CreateHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var draft domain.HoldingDraft
	if err := decode(req, &draft); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		h, err := o.CreateHolding(ctx, draft)
		return map[string]interface{}{"holding": h}, err
	})
}

// DeleteHolding handles the DeleteHolding RPC
func (s *Server) DeleteHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		found, err := o.DeleteHolding(ctx, in.ID)
		return map[string]interface{}{"found": found}, err
	})
}

// ListNotifications handles the ListNotifications RPC
func (s *Server) ListNotifications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		UnreadOnly bool `json:"unreadOnly"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		list := o.Notifications.List()
		if in.UnreadOnly {
			list = o.Notifications.Unread()
		}
		return map[string]interface{}{
			"notifications": list,
			"unreadCount":   o.Notifications.UnreadCount(),
		}, nil
	})
}

// MarkNotificationRead handles the MarkNotificationRead RPC
func (s *Server) MarkNotificationRead(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		changed, err := o.Notifications.MarkAsRead(ctx, in.ID)
		return map[string]interface{}{"changed": changed, "unreadCount": o.Notifications.UnreadCount()}, err
	})
}

// MarkAllNotificationsRead handles the MarkAllNotificationsRead RPC
func (s *Server) MarkAllNotificationsRead(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		n, err := o.Notifications.MarkAllAsRead(ctx)
		return map[string]interface{}{"marked": n, "unreadCount": o.Notifications.UnreadCount()}, err
	})
}

// DeleteNotification handles the DeleteNotification RPC
func (s *Server) DeleteNotification(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		found, err := o.Notifications.Remove(ctx, in.ID)
		return map[string]interface{}{"found": found, "unreadCount": o.Notifications.UnreadCount()}, err
	})
}

// ClearNotifications handles the ClearNotifications RPC
func (s *Server) ClearNotifications(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		n, err := o.Notifications.Clear(ctx)
		return map[string]interface{}{"removed": n}, err
	})
}

func subscriptionFields(o *orchestrator.Orchestrator, sub domain.Subscription) map[string]interface{} {
	return map[string]interface{}{
		"subscription":  sub,
		"effectivePlan": o.Subscription.Plan(),
		"features":      o.Subscription.Features(),
	}
}

// GetSubscription handles the GetSubscription RPC
func (s *Server) GetSubscription(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		return subscriptionFields(o, o.Subscription.Current()), nil
	})
}

type planRequest struct {
	Plan domain.Plan `json:"plan"`
}

// ChangePlan handles the ChangePlan RPC
func (s *Server) ChangePlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in planRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		sub, err := o.ChangePlan(ctx, in.Plan)
		if err != nil && !domain.IsWarning(err) {
			return nil, err
		}
		return subscriptionFields(o, sub), err
	})
}

// StartTrial handles the StartTrial RPC
func (s *Server) StartTrial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in planRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		sub, err := o.StartTrial(ctx, in.Plan)
		if err != nil && !domain.IsWarning(err) {
			return nil, err
		}
		return subscriptionFields(o, sub), err
	})
}

// SetPreferences handles the SetPreferences RPC. Every field is optional;
// osScheme only affects the resolved theme and is not persisted.
func (s *Server) SetPreferences(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Theme    domain.Theme    `json:"theme"`
		Language domain.Language `json:"language"`
		OSScheme domain.Theme    `json:"osScheme"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return s.handle(ctx, func(o *orchestrator.Orchestrator) (map[string]interface{}, error) {
		var errs []error
		if in.OSScheme != "" {
			o.Preferences.ObserveOSScheme(in.OSScheme)
		}
		if in.Theme != "" {
			if _, err := o.Preferences.SetTheme(ctx, in.Theme); err != nil {
				if !domain.IsWarning(err) {
					return nil, err
				}
				errs = append(errs, err)
			}
		}
		if in.Language != "" {
			if err := o.Preferences.SetLanguage(ctx, in.Language); err != nil {
				if !domain.IsWarning(err) {
					return nil, err
				}
				errs = append(errs, err)
			}
		}
		return map[string]interface{}{
			"theme":         o.Preferences.Theme(),
			"resolvedTheme": o.Preferences.ResolvedTheme(),
			"language":      o.Preferences.Language(),
		}, errors.Join(errs...)
	})
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Errorf(codes.InvalidArgument, "%s", err)
	case errors.Is(err, domain.ErrFeatureLocked), errors.Is(err, domain.ErrGoalLimit):
		return status.Errorf(codes.FailedPrecondition, "%s", err)
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err)
	case errors.Is(err, domain.ErrUnreadable):
		return status.Errorf(codes.Unavailable, "%s", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err)
}

// Compile-time check: ensure Server implements DashboardServer interface
var _ DashboardServer = (*Server)(nil)
