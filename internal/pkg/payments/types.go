package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Webhook event types delivered by the gateway.
const (
	EventPaymentCaptured       = "payment.captured"
	EventPaymentFailed         = "payment.failed"
	EventOrderPaid             = "order.paid"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCharged   = "subscription.charged"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionCompleted = "subscription.completed"
	EventSubscriptionPaused    = "subscription.paused"
	EventSubscriptionResumed   = "subscription.resumed"
)

// ProviderRazorpay tags ledger rows and normalized events with their origin.
const ProviderRazorpay = "razorpay"

// PaymentEntity is the payment object embedded in webhook payloads.
// Amounts are in the smallest currency unit (paise).
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

// OrderEntity is the order object embedded in webhook payloads.
type OrderEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Receipt  string `json:"receipt"`
}

// SubscriptionEntity is the subscription object embedded in webhook payloads.
// Period bounds arrive as unix seconds.
type SubscriptionEntity struct {
	ID           string `json:"id"`
	PlanID       string `json:"plan_id"`
	Status       string `json:"status"`
	CurrentStart int64  `json:"current_start"`
	CurrentEnd   int64  `json:"current_end"`
	PaidCount    int    `json:"paid_count"`
	TotalCount   int    `json:"total_count"`
}

// CurrentStartTime converts the unix period start, nil when absent.
func (s *SubscriptionEntity) CurrentStartTime() *time.Time {
	return unixPtr(s.CurrentStart)
}

// CurrentEndTime converts the unix period end, nil when absent.
func (s *SubscriptionEntity) CurrentEndTime() *time.Time {
	return unixPtr(s.CurrentEnd)
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// WebhookEvent is the decoded gateway webhook envelope. Exactly the entities
// relevant to the event type are populated; the rest stay nil.
type WebhookEvent struct {
	Type         string
	Payment      *PaymentEntity
	Order        *OrderEntity
	Subscription *SubscriptionEntity
	Raw          []byte
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity OrderEntity `json:"entity"`
		} `json:"order"`
		Subscription *struct {
			Entity SubscriptionEntity `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes the raw webhook body into a typed event.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	eventType := strings.TrimSpace(env.Event)
	if eventType == "" {
		return nil, fmt.Errorf("webhook payload has no event type")
	}

	ev := &WebhookEvent{Type: eventType, Raw: raw}
	if env.Payload.Payment != nil {
		p := env.Payload.Payment.Entity
		ev.Payment = &p
	}
	if env.Payload.Order != nil {
		o := env.Payload.Order.Entity
		ev.Order = &o
	}
	if env.Payload.Subscription != nil {
		s := env.Payload.Subscription.Entity
		ev.Subscription = &s
	}
	return ev, nil
}

// DedupKey derives the idempotency-ledger key for the event. The header
// event id wins when present; subscription charges fall back to the gateway
// payment id so a redelivered charge without the header still deduplicates.
func (ev *WebhookEvent) DedupKey(headerEventID string) string {
	if id := strings.TrimSpace(headerEventID); id != "" {
		return id
	}
	if ev.Payment != nil && strings.TrimSpace(ev.Payment.ID) != "" {
		return ev.Type + ":" + ev.Payment.ID
	}
	if ev.Subscription != nil && strings.TrimSpace(ev.Subscription.ID) != "" {
		return ev.Type + ":" + ev.Subscription.ID
	}
	return ""
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
