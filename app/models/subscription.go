package models

import "time"

const (
	SubscriptionStatusCreated       = "created"
	SubscriptionStatusAuthenticated = "authenticated"
	SubscriptionStatusActive        = "active"
	SubscriptionStatusPaused        = "paused"
	SubscriptionStatusCancelled     = "cancelled"
	SubscriptionStatusCompleted     = "completed"
	SubscriptionStatusExpired       = "expired"
)

// Subscription mirrors a gateway recurring-billing agreement. Status is
// driven exclusively by verified webhook events; no other code path is
// allowed to transition it.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	GatewaySubscriptionID string     `gorm:"uniqueIndex;type:varchar(191);not null" json:"gateway_subscription_id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	PlanID                uint       `gorm:"not null;index" json:"plan_id"`
	Plan                  *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status                string     `gorm:"type:varchar(32);not null;default:'created';index" json:"status"`
	CurrentStart          *time.Time `gorm:"type:timestamp;default:null" json:"current_start,omitempty"`
	CurrentEnd            *time.Time `gorm:"type:timestamp;default:null" json:"current_end,omitempty"`
	PaidCount             int        `gorm:"not null;default:0" json:"paid_count"`
	TotalCount            int        `gorm:"not null;default:0" json:"total_count"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the subscription can accept further lifecycle events.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusCompleted
}
