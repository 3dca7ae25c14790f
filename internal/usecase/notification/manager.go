// Package notification implements the notification lifecycle: newest-first
// storage, unread accounting, TTL pruning and event-triggered creation.
package notification

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/pkg/currency"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/seeder"
)

// DefaultTTL is how long a notification is kept.
const DefaultTTL = 7 * 24 * time.Hour

// Config tunes a Manager. Zero values select the defaults.
type Config struct {
	TTL      time.Duration
	Currency string
}

// Manager handles the notification collection.
// unread is maintained incrementally and can be checked against Recount.
type Manager struct {
	clock    domain.Clock
	log      *zerolog.Logger
	ttl      time.Duration
	currency string
	policy   *bluemonday.Policy
	items    *entitystore.Collection[domain.Notification]
	unread   int
}

// NewManager creates a new Manager bound to the "notifications" snapshot
func NewManager(store domain.RecordStore, clock domain.Clock, cfg Config, log *zerolog.Logger) *Manager {
	if log == nil {
		log = &logger.L
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Currency == "" {
		cfg.Currency = currency.Default
	}
	return &Manager{
		clock:    clock,
		log:      log,
		ttl:      cfg.TTL,
		currency: cfg.Currency,
		policy:   bluemonday.StrictPolicy(),
		items: entitystore.New(store, domain.KeyNotifications, entitystore.Options[domain.Notification]{
			Order:  entitystore.Prepend,
			Clock:  clock,
			Logger: log,
		}),
	}
}

// Load reads the persisted notifications, prunes expired ones and recounts unread.
// There is no seed set: welcome templates are injected by the orchestrator.
func (m *Manager) Load(ctx context.Context) error {
	if _, err := m.items.Initialize(ctx); err != nil {
		return err
	}
	m.unread = m.Recount()
	_, err := m.Prune(ctx)
	return err
}

// TTL returns the retention period.
func (m *Manager) TTL() time.Duration { return m.ttl }

// sanitize strips any markup from user-visible text.
func (m *Manager) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(s)))
}

// Create stores a new unread notification at the head of the list.
func (m *Manager) Create(ctx context.Context, draft domain.NotificationDraft) (domain.Notification, error) {
	draft.Title = m.sanitize(draft.Title)
	draft.Message = m.sanitize(draft.Message)

	n, err := m.items.Insert(ctx, draft.Build(uuid.NewString(), m.clock.Now()))
	if err != nil && !domain.IsWarning(err) {
		return domain.Notification{}, err
	}
	m.unread++
	return n, err
}

// MarkAsRead moves one notification to read. Unknown ids and already read
// notifications are left alone; it reports whether anything changed.
func (m *Manager) MarkAsRead(ctx context.Context, id string) (bool, error) {
	n, ok := m.items.Get(id)
	if !ok || n.IsRead {
		return false, nil
	}
	_, _, err := m.items.Update(ctx, id, func(n domain.Notification) domain.Notification {
		n.IsRead = true
		return n
	})
	if err != nil && !domain.IsWarning(err) {
		return false, err
	}
	m.unread--
	return true, err
}

// MarkAllAsRead marks every unread notification read with a single write.
func (m *Manager) MarkAllAsRead(ctx context.Context) (int, error) {
	n, err := m.items.UpdateWhere(ctx,
		func(n domain.Notification) bool { return !n.IsRead },
		func(n domain.Notification) domain.Notification {
			n.IsRead = true
			return n
		})
	if err != nil && !domain.IsWarning(err) {
		return 0, err
	}
	m.unread -= n
	return n, err
}

// Remove deletes one notification. Removing an unknown id is not an error.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	removed, found, err := m.items.Delete(ctx, id)
	if found && !removed.IsRead {
		m.unread--
	}
	return found, err
}

// Clear deletes every notification.
func (m *Manager) Clear(ctx context.Context) (int, error) {
	removed, err := m.items.DeleteWhere(ctx, func(domain.Notification) bool { return true })
	m.unread = 0
	return len(removed), err
}

// Prune deletes the notifications older than the TTL, in wall-clock time.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	now := m.clock.Now()
	removed, err := m.items.DeleteWhere(ctx, func(n domain.Notification) bool {
		return n.ExpiredAt(now, m.ttl)
	})
	for _, n := range removed {
		if !n.IsRead {
			m.unread--
		}
	}
	if len(removed) > 0 {
		m.log.Debug().Int("removed", len(removed)).Dur("ttl", m.ttl).Msg("Pruned expired notifications")
	}
	return len(removed), err
}

// UnreadCount returns the incrementally maintained unread counter.
func (m *Manager) UnreadCount() int { return m.unread }

// Recount counts the unread notifications from scratch.
func (m *Manager) Recount() int {
	return len(m.items.Filter(func(n domain.Notification) bool { return !n.IsRead }))
}

// List returns the notifications, newest first.
func (m *Manager) List() []domain.Notification { return m.items.All() }

// Unread returns the unread notifications, newest first.
func (m *Manager) Unread() []domain.Notification {
	return m.items.Filter(func(n domain.Notification) bool { return !n.IsRead })
}

// Len returns the number of notifications.
func (m *Manager) Len() int { return m.items.Len() }

// InjectTemplates inserts the welcome templates so the first one ends up on top.
func (m *Manager) InjectTemplates(ctx context.Context) (int, error) {
	templates := seeder.WelcomeNotifications()
	var warn error
	for i := len(templates) - 1; i >= 0; i-- {
		if _, err := m.Create(ctx, templates[i]); err != nil {
			if !domain.IsWarning(err) {
				return len(templates) - 1 - i, err
			}
			warn = err
		}
	}
	m.log.Info().Int("count", len(templates)).Msg("Injected welcome notifications")
	return len(templates), warn
}
