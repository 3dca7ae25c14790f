package domain

import (
	"strings"
	"time"
)

// NotificationType represents the severity of a notification
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// Valid reports whether t is a known type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSuccess, NotificationWarning, NotificationError, NotificationInfo:
		return true
	}
	return false
}

// NotificationCategory represents the area of the app a notification is about
type NotificationCategory string

const (
	NotificationCategoryTransaction  NotificationCategory = "transaction"
	NotificationCategoryGoal         NotificationCategory = "goal"
	NotificationCategoryCrypto       NotificationCategory = "crypto"
	NotificationCategorySubscription NotificationCategory = "subscription"
	NotificationCategorySystem       NotificationCategory = "system"
)

// Valid reports whether c is a known category.
func (c NotificationCategory) Valid() bool {
	switch c {
	case NotificationCategoryTransaction, NotificationCategoryGoal, NotificationCategoryCrypto,
		NotificationCategorySubscription, NotificationCategorySystem:
		return true
	}
	return false
}

// Notification is created unread, may only transition to read, and is
// removed by the user or by TTL pruning.
type Notification struct {
	ID        string               `json:"id"`
	Type      NotificationType     `json:"type"`
	Category  NotificationCategory `json:"category"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	IsRead    bool                 `json:"isRead"`
	CreatedAt time.Time            `json:"createdAt"`
	Link      string               `json:"actionUrl,omitempty"`
	Icon      string               `json:"icon,omitempty"`
}

// GetID implements Record
func (n Notification) GetID() string { return n.ID }

// Validate ensures the notification adheres to domain rules
func (n Notification) Validate() error {
	if n.ID == "" {
		return invalid("notification id cannot be empty")
	}
	if !n.Type.Valid() {
		return invalid("unknown notification type %q", n.Type)
	}
	if !n.Category.Valid() {
		return invalid("unknown notification category %q", n.Category)
	}
	if strings.TrimSpace(n.Title) == "" {
		return invalid("notification title cannot be empty")
	}
	if n.CreatedAt.IsZero() {
		return invalid("notification creation time is required")
	}
	return nil
}

// ExpiredAt reports whether the notification is older than ttl at now.
func (n Notification) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return n.CreatedAt.Before(now.Add(-ttl))
}

// NotificationDraft is the caller-supplied part of a new notification
type NotificationDraft struct {
	Type     NotificationType     `json:"type"`
	Category NotificationCategory `json:"category"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Link     string               `json:"actionUrl,omitempty"`
	Icon     string               `json:"icon,omitempty"`
}

// Build stamps the draft; creation always enters the unread state.
func (d NotificationDraft) Build(id string, now time.Time) Notification {
	return Notification{
		ID:        id,
		Type:      d.Type,
		Category:  d.Category,
		Title:     d.Title,
		Message:   d.Message,
		IsRead:    false,
		CreatedAt: now,
		Link:      d.Link,
		Icon:      d.Icon,
	}
}
