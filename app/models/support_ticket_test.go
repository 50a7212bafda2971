package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTicketReference(t *testing.T) {
	ref := NewTicketReference()

	assert.True(t, strings.HasPrefix(ref, "TKT-"))
	assert.Len(t, ref, len("TKT-")+8)
	assert.NotEqual(t, ref, NewTicketReference())
}

func TestValidTicketStatus(t *testing.T) {
	for _, status := range []string{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed} {
		assert.True(t, ValidTicketStatus(status), status)
	}
	assert.False(t, ValidTicketStatus("reopened"))
	assert.False(t, ValidTicketStatus(""))
}

func TestEventHasCapacityLimit(t *testing.T) {
	assert.True(t, (&Event{Capacity: 50}).HasCapacityLimit())
	assert.False(t, (&Event{Capacity: 0}).HasCapacityLimit())
}
