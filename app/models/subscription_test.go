package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIsTerminal(t *testing.T) {
	terminal := []string{SubscriptionStatusCancelled, SubscriptionStatusCompleted}
	for _, status := range terminal {
		assert.True(t, (&Subscription{Status: status}).IsTerminal(), status)
	}

	open := []string{
		SubscriptionStatusCreated,
		SubscriptionStatusAuthenticated,
		SubscriptionStatusActive,
		SubscriptionStatusPaused,
		SubscriptionStatusExpired,
	}
	for _, status := range open {
		assert.False(t, (&Subscription{Status: status}).IsTerminal(), status)
	}
}

func TestOrderIsPaid(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPaid}).IsPaid())
	assert.False(t, (&Order{Status: OrderStatusCreated}).IsPaid())
	assert.False(t, (&Order{Status: OrderStatusFailed}).IsPaid())
}
