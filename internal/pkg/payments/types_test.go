package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookEvent_PaymentCaptured(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_001",
					"order_id": "order_001",
					"amount": 30000,
					"currency": "INR",
					"status": "captured",
					"method": "upi"
				}
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, EventPaymentCaptured, ev.Type)
	require.NotNil(t, ev.Payment)
	assert.Equal(t, "pay_001", ev.Payment.ID)
	assert.Equal(t, "order_001", ev.Payment.OrderID)
	assert.Equal(t, int64(30000), ev.Payment.Amount)
	assert.Nil(t, ev.Order)
	assert.Nil(t, ev.Subscription)
}

func TestParseWebhookEvent_SubscriptionCharged(t *testing.T) {
	raw := []byte(`{
		"event": "subscription.charged",
		"payload": {
			"subscription": {
				"entity": {
					"id": "sub_001",
					"plan_id": "plan_001",
					"status": "active",
					"current_start": 1767225600,
					"current_end": 1769904000,
					"paid_count": 3,
					"total_count": 12
				}
			},
			"payment": {
				"entity": {
					"id": "pay_002",
					"amount": 50000,
					"currency": "INR"
				}
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	require.NoError(t, err)

	require.NotNil(t, ev.Subscription)
	assert.Equal(t, "sub_001", ev.Subscription.ID)
	assert.Equal(t, 3, ev.Subscription.PaidCount)
	require.NotNil(t, ev.Subscription.CurrentStartTime())
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), *ev.Subscription.CurrentStartTime())
	require.NotNil(t, ev.Payment)
	assert.Equal(t, "pay_002", ev.Payment.ID)
}

func TestParseWebhookEvent_Invalid(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestSubscriptionEntityPeriodBounds_AbsentIsNil(t *testing.T) {
	e := &SubscriptionEntity{}
	assert.Nil(t, e.CurrentStartTime())
	assert.Nil(t, e.CurrentEndTime())
}

func TestWebhookEventDedupKey(t *testing.T) {
	ev := &WebhookEvent{
		Type:    EventSubscriptionCharged,
		Payment: &PaymentEntity{ID: "pay_009"},
		Subscription: &SubscriptionEntity{
			ID: "sub_009",
		},
	}

	// The header id wins whenever present.
	assert.Equal(t, "evt_1", ev.DedupKey("evt_1"))
	assert.Equal(t, "evt_1", ev.DedupKey(" evt_1 "))

	// Without the header the payment id anchors the key.
	assert.Equal(t, "subscription.charged:pay_009", ev.DedupKey(""))

	// Without a payment the subscription id does.
	ev.Payment = nil
	assert.Equal(t, "subscription.charged:sub_009", ev.DedupKey(""))

	// Nothing usable yields empty; callers fall back to a body hash.
	ev.Subscription = nil
	assert.Equal(t, "", ev.DedupKey(""))
}
