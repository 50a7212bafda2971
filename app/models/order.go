package models

import "time"

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// MinOneTimeAmount is the smallest accepted one-time contribution in rupees.
const MinOneTimeAmount = 300

// Order is the local mirror of a single gateway payment attempt. The status
// moves to paid only after a signature-verified callback or webhook.
type Order struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	GatewayOrderID        string    `gorm:"uniqueIndex;type:varchar(191);not null" json:"gateway_order_id"`
	UserID                uint      `gorm:"not null;index" json:"user_id"`
	Amount                float64   `gorm:"not null" json:"amount"`
	Currency              string    `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status                string    `gorm:"type:varchar(16);not null;default:'created';index" json:"status"`
	GatewayPaymentID      string    `gorm:"type:varchar(191);default:'';index" json:"gateway_payment_id"`
	Receipt               string    `gorm:"type:varchar(64);default:''" json:"receipt"`
	Notes                 string    `gorm:"type:text" json:"notes"`
	IsSubscription        bool      `gorm:"default:false;index" json:"is_subscription"`
	GatewaySubscriptionID string    `gorm:"type:varchar(191);default:'';index" json:"gateway_subscription_id"`
	PaidAt                *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the order has a verified payment.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}
