package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/psfhyd/memberportal/app/models"
)

func tp(t time.Time) *time.Time { return &t }

func TestApplyMembershipEvent_OrderPaidPromotesPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next := ApplyMembershipEvent(MembershipState{Role: models.ROLE_PENDING}, MembershipEvent{
		Kind: MembershipEventOrderPaid,
		Now:  now,
	})

	assert.Equal(t, models.ROLE_INDIVIDUAL, next.Role)
	assert.True(t, next.HasPaid)
	assert.False(t, next.AutoPayEnabled)
	if assert.NotNil(t, next.MembershipStart) {
		assert.Equal(t, now, *next.MembershipStart)
	}
	if assert.NotNil(t, next.MembershipEnd) {
		assert.Equal(t, now.AddDate(1, 0, 0), *next.MembershipEnd)
	}
}

func TestApplyMembershipEvent_OrderPaidKeepsAdminRole(t *testing.T) {
	next := ApplyMembershipEvent(MembershipState{Role: models.ROLE_ADMIN}, MembershipEvent{
		Kind: MembershipEventOrderPaid,
		Now:  time.Now().UTC(),
	})

	assert.Equal(t, models.ROLE_ADMIN, next.Role)
	assert.True(t, next.HasPaid)
}

func TestApplyMembershipEvent_OrderPaidNeverShortensPeriod(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existingEnd := now.AddDate(2, 0, 0)

	next := ApplyMembershipEvent(MembershipState{
		Role:          models.ROLE_INDIVIDUAL,
		HasPaid:       true,
		MembershipEnd: tp(existingEnd),
	}, MembershipEvent{Kind: MembershipEventOrderPaid, Now: now})

	if assert.NotNil(t, next.MembershipEnd) {
		assert.Equal(t, existingEnd, *next.MembershipEnd)
	}
}

func TestApplyMembershipEvent_SubscriptionActivated(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	next := ApplyMembershipEvent(MembershipState{Role: models.ROLE_ASSOCIATE}, MembershipEvent{
		Kind:           MembershipEventSubscriptionActivated,
		SubscriptionID: "sub_123",
		PeriodStart:    tp(start),
		PeriodEnd:      tp(end),
		Now:            start,
	})

	assert.Equal(t, models.ROLE_INDIVIDUAL, next.Role)
	assert.True(t, next.HasPaid)
	assert.True(t, next.AutoPayEnabled)
	assert.Equal(t, "sub_123", next.SubscriptionID)
	assert.Equal(t, models.SubscriptionStatusActive, next.SubscriptionStatus)
	assert.Equal(t, end, *next.MembershipEnd)
}

func TestApplyMembershipEvent_ChargedLeavesAutoPayAlone(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, autoPay := range []bool{true, false} {
		next := ApplyMembershipEvent(MembershipState{
			Role:           models.ROLE_INDIVIDUAL,
			HasPaid:        true,
			AutoPayEnabled: autoPay,
		}, MembershipEvent{
			Kind:      MembershipEventSubscriptionCharged,
			PeriodEnd: tp(end),
			Now:       time.Now().UTC(),
		})

		assert.Equal(t, autoPay, next.AutoPayEnabled)
		assert.True(t, next.HasPaid)
		assert.Equal(t, end, *next.MembershipEnd)
	}
}

func TestApplyMembershipEvent_LifecycleTogglesAutoPay(t *testing.T) {
	base := MembershipState{
		Role:               models.ROLE_INDIVIDUAL,
		HasPaid:            true,
		AutoPayEnabled:     true,
		SubscriptionID:     "sub_123",
		SubscriptionStatus: models.SubscriptionStatusActive,
	}

	tests := []struct {
		kind        string
		wantAutoPay bool
		wantStatus  string
	}{
		{MembershipEventSubscriptionCancelled, false, models.SubscriptionStatusCancelled},
		{MembershipEventSubscriptionCompleted, false, models.SubscriptionStatusCompleted},
		{MembershipEventSubscriptionPaused, false, models.SubscriptionStatusPaused},
		{MembershipEventSubscriptionResumed, true, models.SubscriptionStatusActive},
	}

	for _, tc := range tests {
		next := ApplyMembershipEvent(base, MembershipEvent{Kind: tc.kind, Now: time.Now().UTC()})

		assert.Equal(t, tc.wantAutoPay, next.AutoPayEnabled, tc.kind)
		assert.Equal(t, tc.wantStatus, next.SubscriptionStatus, tc.kind)
		// Paid state and role survive lifecycle events.
		assert.True(t, next.HasPaid, tc.kind)
		assert.Equal(t, models.ROLE_INDIVIDUAL, next.Role, tc.kind)
	}
}

func TestApplyMembershipEvent_AdminSetRole(t *testing.T) {
	next := ApplyMembershipEvent(MembershipState{
		Role:    models.ROLE_ASSOCIATE,
		HasPaid: true,
	}, MembershipEvent{
		Kind:    MembershipEventAdminSetRole,
		NewRole: models.ROLE_INDIVIDUAL,
		Now:     time.Now().UTC(),
	})

	assert.Equal(t, models.ROLE_INDIVIDUAL, next.Role)
	// The individual tier requires a verified payment; the admin move
	// alone does not grant it.
	assert.False(t, next.HasPaid)
}

func TestApplyMembershipEvent_AdminSetRoleSameTierKeepsPaid(t *testing.T) {
	next := ApplyMembershipEvent(MembershipState{
		Role:    models.ROLE_INDIVIDUAL,
		HasPaid: true,
	}, MembershipEvent{
		Kind:    MembershipEventAdminSetRole,
		NewRole: models.ROLE_INDIVIDUAL,
		Now:     time.Now().UTC(),
	})

	assert.True(t, next.HasPaid)
}

func TestApplyMembershipEvent_AdminDemoteToAssociate(t *testing.T) {
	next := ApplyMembershipEvent(MembershipState{
		Role:    models.ROLE_INDIVIDUAL,
		HasPaid: true,
	}, MembershipEvent{
		Kind:    MembershipEventAdminSetRole,
		NewRole: models.ROLE_ASSOCIATE,
		Now:     time.Now().UTC(),
	})

	assert.Equal(t, models.ROLE_ASSOCIATE, next.Role)
	assert.True(t, next.HasPaid)
}

func TestApplyMembershipEvent_UnknownKindIsNoop(t *testing.T) {
	base := MembershipState{Role: models.ROLE_PENDING}
	next := ApplyMembershipEvent(base, MembershipEvent{Kind: "something_else"})
	assert.Equal(t, base, next)
}
