package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const contextKeyWideEvent contextKey = "wide_event"

// WideEvent is a single structured log entry capturing the full
// lifecycle of a request. Components populate it incrementally as the
// request flows through them.
type WideEvent struct {
	TraceID   string    `json:"trace_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`

	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPPath       string `json:"http_path,omitempty"`
	HTTPStatusCode int    `json:"http_status_code,omitempty"`
	HTTPDurationMs int64  `json:"http_duration_ms,omitempty"`

	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	UserType  string `json:"user_type,omitempty"`

	DocumentID   string `json:"document_id,omitempty"`
	InviteMethod string `json:"invite_method,omitempty"`

	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	SubscriptionID   string `json:"subscription_id,omitempty"`
	WebhookEventType string `json:"webhook_event_type,omitempty"`

	RedirectTarget string `json:"redirect_target,omitempty"`

	Error          string `json:"error,omitempty"`
	PanicRecovered bool   `json:"panic_recovered,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func NewWideEvent(eventType string) *WideEvent {
	return &WideEvent{
		TraceID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
}

// WithContext attaches a WideEvent to a context.
func WithContext(ctx context.Context, event *WideEvent) context.Context {
	return context.WithValue(ctx, contextKeyWideEvent, event)
}

// FromContext retrieves the request's WideEvent, if any.
func FromContext(ctx context.Context) (*WideEvent, bool) {
	event, ok := ctx.Value(contextKeyWideEvent).(*WideEvent)
	return event, ok
}

// Emit writes the event through the given logger. Zero-valued fields
// are left out; errors and recovered panics raise the level.
func (e *WideEvent) Emit(logger *slog.Logger) {
	attrs := []slog.Attr{
		slog.String("trace_id", e.TraceID),
		slog.String("event_type", e.EventType),
		slog.Time("timestamp", e.Timestamp),
	}

	if e.HTTPMethod != "" {
		attrs = append(attrs, slog.String("http_method", e.HTTPMethod))
	}
	if e.HTTPPath != "" {
		attrs = append(attrs, slog.String("http_path", e.HTTPPath))
	}
	if e.HTTPStatusCode != 0 {
		attrs = append(attrs, slog.Int("http_status_code", e.HTTPStatusCode))
	}
	if e.HTTPDurationMs != 0 {
		attrs = append(attrs, slog.Int64("http_duration_ms", e.HTTPDurationMs))
	}

	if e.UserID != "" {
		attrs = append(attrs, slog.String("user_id", e.UserID))
	}
	if e.UserEmail != "" {
		attrs = append(attrs, slog.String("user_email", e.UserEmail))
	}
	if e.UserType != "" {
		attrs = append(attrs, slog.String("user_type", e.UserType))
	}

	if e.DocumentID != "" {
		attrs = append(attrs, slog.String("document_id", e.DocumentID))
	}
	if e.InviteMethod != "" {
		attrs = append(attrs, slog.String("invite_method", e.InviteMethod))
	}

	if e.StripeCustomerID != "" {
		attrs = append(attrs, slog.String("stripe_customer_id", e.StripeCustomerID))
	}
	if e.SubscriptionID != "" {
		attrs = append(attrs, slog.String("subscription_id", e.SubscriptionID))
	}
	if e.WebhookEventType != "" {
		attrs = append(attrs, slog.String("webhook_event_type", e.WebhookEventType))
	}

	if e.RedirectTarget != "" {
		attrs = append(attrs, slog.String("redirect_target", e.RedirectTarget))
	}

	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	if e.PanicRecovered {
		attrs = append(attrs, slog.Bool("panic_recovered", e.PanicRecovered))
	}
	if len(e.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", e.Metadata))
	}

	level := slog.LevelInfo
	if e.Error != "" || e.PanicRecovered {
		level = slog.LevelError
	}

	logger.LogAttrs(context.Background(), level, "wide_event", attrs...)
}
