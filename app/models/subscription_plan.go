package models

import "time"

const (
	PlanPeriodMonthly = "monthly"
	PlanPeriodYearly  = "yearly"
)

// SubscriptionPlan is a catalog entry for a recurring price point. Custom
// amount plans created on demand are flagged with IsCustom so the catalog
// listing can hide them.
type SubscriptionPlan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GatewayPlanID string    `gorm:"uniqueIndex;type:varchar(191);not null" json:"gateway_plan_id"`
	Name          string    `gorm:"type:varchar(150);not null" json:"name"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Period        string    `gorm:"type:varchar(16);not null;default:'monthly'" json:"period"`
	Interval      int       `gorm:"not null;default:1" json:"interval"`
	IsCustom      bool      `gorm:"default:false;index" json:"is_custom"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
