package payments

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psfhyd/memberportal/app/models"
)

// Repository provides the DB operations used by the reconciliation service.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	SaveUserMembership(userID uint, state MembershipState) error

	CreateOrder(order *models.Order) error
	GetOrderByGatewayID(gatewayOrderID string) (*models.Order, error)
	MarkOrderPaid(gatewayOrderID, gatewayPaymentID string, paidAt time.Time) error
	MarkOrderFailed(gatewayOrderID string) error
	CountOrdersByPaymentID(gatewayPaymentID string) (int64, error)

	CreatePlan(plan *models.SubscriptionPlan) error
	GetPlanByID(id uint) (*models.SubscriptionPlan, error)
	ListActivePlans() ([]models.SubscriptionPlan, error)

	CreateSubscription(sub *models.Subscription) error
	GetSubscriptionByGatewayID(gatewaySubscriptionID string) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error

	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) SaveUserMembership(userID uint, state MembershipState) error {
	updates := map[string]interface{}{
		"role":                state.Role,
		"has_paid":            state.HasPaid,
		"auto_pay_enabled":    state.AutoPayEnabled,
		"subscription_id":     state.SubscriptionID,
		"subscription_status": state.SubscriptionStatus,
		"membership_start":    state.MembershipStart,
		"membership_end":      state.MembershipEnd,
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *gormRepository) CreateOrder(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *gormRepository) GetOrderByGatewayID(gatewayOrderID string) (*models.Order, error) {
	var o models.Order
	if err := r.db.Where("gateway_order_id = ?", gatewayOrderID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormRepository) MarkOrderPaid(gatewayOrderID, gatewayPaymentID string, paidAt time.Time) error {
	updates := map[string]interface{}{
		"status":             models.OrderStatusPaid,
		"gateway_payment_id": gatewayPaymentID,
		"paid_at":            &paidAt,
	}
	return r.db.Model(&models.Order{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(updates).Error
}

func (r *gormRepository) MarkOrderFailed(gatewayOrderID string) error {
	// A verified payment is never demoted by a late failure event.
	return r.db.Model(&models.Order{}).
		Where("gateway_order_id = ? AND status <> ?", gatewayOrderID, models.OrderStatusPaid).
		Update("status", models.OrderStatusFailed).Error
}

func (r *gormRepository) CountOrdersByPaymentID(gatewayPaymentID string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).
		Where("gateway_payment_id = ?", gatewayPaymentID).
		Count(&n).Error
	return n, err
}

func (r *gormRepository) CreatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *gormRepository) GetPlanByID(id uint) (*models.SubscriptionPlan, error) {
	var p models.SubscriptionPlan
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListActivePlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ? AND is_custom = ?", true, false).
		Order("amount asc").Find(&plans).Error
	return plans, err
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByGatewayID(gatewaySubscriptionID string) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.db.Where("gateway_subscription_id = ?", gatewaySubscriptionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
