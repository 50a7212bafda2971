package payments

import (
	"time"

	"github.com/psfhyd/memberportal/app/models"
)

// Membership event kinds. Every mutation of the role/paid/auto-pay triple
// funnels through ApplyMembershipEvent so the coupling lives in one place.
const (
	MembershipEventOrderPaid             = "order_paid"
	MembershipEventSubscriptionActivated = "subscription_activated"
	MembershipEventSubscriptionCharged   = "subscription_charged"
	MembershipEventSubscriptionCancelled = "subscription_cancelled"
	MembershipEventSubscriptionCompleted = "subscription_completed"
	MembershipEventSubscriptionPaused    = "subscription_paused"
	MembershipEventSubscriptionResumed   = "subscription_resumed"
	MembershipEventAdminSetRole          = "admin_set_role"
)

// MembershipState is the slice of the user row owned by payment
// reconciliation.
type MembershipState struct {
	Role               string
	HasPaid            bool
	AutoPayEnabled     bool
	SubscriptionID     string
	SubscriptionStatus string
	MembershipStart    *time.Time
	MembershipEnd      *time.Time
}

// MembershipEvent is a verified occurrence that may transition membership
// state. Only events that already passed signature verification (or an
// admin-gated route) may be constructed.
type MembershipEvent struct {
	Kind           string
	SubscriptionID string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	NewRole        string
	Now            time.Time
}

// ApplyMembershipEvent computes the next membership state for a user. It is
// a pure function: callers persist the returned state themselves.
//
// Paid events never downgrade an existing paid membership, so the relative
// order of a checkout callback and the matching webhook does not matter:
// whichever lands second finds the stricter state already in place and
// leaves it there.
func ApplyMembershipEvent(s MembershipState, e MembershipEvent) MembershipState {
	switch e.Kind {
	case MembershipEventOrderPaid:
		s.HasPaid = true
		s.Role = promoteToIndividual(s.Role)
		start, end := paidPeriod(e)
		if s.MembershipStart == nil {
			s.MembershipStart = start
		}
		s.MembershipEnd = laterOf(s.MembershipEnd, end)

	case MembershipEventSubscriptionActivated:
		s.HasPaid = true
		s.AutoPayEnabled = true
		s.Role = promoteToIndividual(s.Role)
		s.SubscriptionID = e.SubscriptionID
		s.SubscriptionStatus = models.SubscriptionStatusActive
		if e.PeriodStart != nil {
			s.MembershipStart = e.PeriodStart
		}
		s.MembershipEnd = laterOf(s.MembershipEnd, e.PeriodEnd)

	case MembershipEventSubscriptionCharged:
		// A charge confirms payment and extends the covered period. It
		// deliberately leaves AutoPayEnabled untouched.
		s.HasPaid = true
		s.Role = promoteToIndividual(s.Role)
		s.MembershipEnd = laterOf(s.MembershipEnd, e.PeriodEnd)

	case MembershipEventSubscriptionCancelled:
		s.AutoPayEnabled = false
		s.SubscriptionStatus = models.SubscriptionStatusCancelled

	case MembershipEventSubscriptionCompleted:
		s.AutoPayEnabled = false
		s.SubscriptionStatus = models.SubscriptionStatusCompleted

	case MembershipEventSubscriptionPaused:
		s.AutoPayEnabled = false
		s.SubscriptionStatus = models.SubscriptionStatusPaused

	case MembershipEventSubscriptionResumed:
		s.AutoPayEnabled = true
		s.SubscriptionStatus = models.SubscriptionStatusActive

	case MembershipEventAdminSetRole:
		prev := s.Role
		s.Role = e.NewRole
		// Moving someone into the individual tier without a verified
		// payment leaves them unpaid until a gateway event confirms it.
		if e.NewRole == models.ROLE_INDIVIDUAL && prev != models.ROLE_INDIVIDUAL {
			s.HasPaid = false
		}
	}

	return s
}

// promoteToIndividual upgrades pending and associate members on a verified
// paid event; admins keep their role.
func promoteToIndividual(role string) string {
	if role == models.ROLE_ADMIN {
		return role
	}
	return models.ROLE_INDIVIDUAL
}

func paidPeriod(e MembershipEvent) (*time.Time, *time.Time) {
	if e.PeriodStart != nil || e.PeriodEnd != nil {
		return e.PeriodStart, e.PeriodEnd
	}
	// One-time payments cover a year from the payment date.
	start := e.Now
	if start.IsZero() {
		start = time.Now().UTC()
	}
	end := start.AddDate(1, 0, 0)
	return &start, &end
}

func laterOf(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.After(*current) {
		return candidate
	}
	return current
}
