package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/psfhyd/memberportal/app/models"
	"github.com/psfhyd/memberportal/internal/pkg/env"
)

var (
	// ErrAmountTooLow rejects one-time contributions below the minimum.
	ErrAmountTooLow = errors.New("amount is below the minimum one-time contribution")
	// ErrInvalidSignature rejects unverifiable callback or webhook data.
	ErrInvalidSignature = errors.New("signature verification failed")
	// ErrNoSubscription is returned when an auto-pay toggle has no agreement to act on.
	ErrNoSubscription = errors.New("user has no linked subscription")
)

// Mailer delivers the membership-upgrade notification. Injected so service
// tests run without SMTP.
type Mailer func(to, name, newRole string) error

// Service coordinates gateway calls, local mirrors and membership state.
type Service struct {
	repo    Repository
	gateway Gateway
	mailer  Mailer

	paymentSecret string
	webhookSecret string

	now func() time.Time
}

// NewService creates a reconciliation service from injected collaborators.
func NewService(repo Repository, gateway Gateway, mailer Mailer, paymentSecret, webhookSecret string) *Service {
	return &Service{
		repo:          repo,
		gateway:       gateway,
		mailer:        mailer,
		paymentSecret: paymentSecret,
		webhookSecret: webhookSecret,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceFromDB wires the production service: GORM repository, gateway
// client and secrets from the environment.
func NewServiceFromDB(db *gorm.DB, gateway Gateway, mailer Mailer) *Service {
	return NewService(
		NewRepository(db),
		gateway,
		mailer,
		env.GetEnv("RAZORPAY_KEY_SECRET", ""),
		env.GetEnv("RAZORPAY_WEBHOOK_SECRET", ""),
	)
}

// CreateOrder creates a remote gateway order and persists the local mirror
// in "created" state. Amount is in rupees.
func (s *Service) CreateOrder(ctx context.Context, userID uint, amount float64, currency string, notes map[string]string) (*models.Order, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if amount < models.MinOneTimeAmount {
		return nil, ErrAmountTooLow
	}
	if strings.TrimSpace(currency) == "" {
		currency = "INR"
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	remote, err := s.gateway.CreateOrder(ctx, CreateOrderParams{
		Amount:   int64(amount * 100),
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	order := &models.Order{
		GatewayOrderID: remote.ID,
		UserID:         user.ID,
		Amount:         amount,
		Currency:       currency,
		Status:         models.OrderStatusCreated,
		Receipt:        receipt,
		Notes:          encodeNotes(notes),
	}
	if err := s.repo.CreateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads the local mirror of a gateway order.
func (s *Service) GetOrder(gatewayOrderID string) (*models.Order, error) {
	return s.repo.GetOrderByGatewayID(gatewayOrderID)
}

// VerifyPayment confirms a checkout callback. The order flips to paid and
// the owning user becomes a paid individual member only on an exact
// signature match.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	order, err := s.repo.GetOrderByGatewayID(gatewayOrderID)
	if err != nil {
		return nil, err
	}

	if !VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, s.paymentSecret) {
		return nil, ErrInvalidSignature
	}

	if err := s.applyOrderPaid(ctx, order, gatewayPaymentID); err != nil {
		return nil, err
	}
	return s.repo.GetOrderByGatewayID(gatewayOrderID)
}

// CreatePlan registers a recurring price point on the gateway and mirrors it.
func (s *Service) CreatePlan(ctx context.Context, name string, amount float64, period string, interval int, isCustom bool) (*models.SubscriptionPlan, error) {
	if amount <= 0 {
		return nil, errors.New("plan amount must be positive")
	}
	switch period {
	case models.PlanPeriodMonthly, models.PlanPeriodYearly:
	default:
		return nil, fmt.Errorf("unsupported plan period %q", period)
	}

	remote, err := s.gateway.CreatePlan(ctx, CreatePlanParams{
		Period:   period,
		Interval: interval,
		Name:     name,
		Amount:   int64(amount * 100),
		Currency: "INR",
	})
	if err != nil {
		return nil, fmt.Errorf("gateway plan creation failed: %w", err)
	}

	plan := &models.SubscriptionPlan{
		GatewayPlanID: remote.ID,
		Name:          name,
		Amount:        amount,
		Currency:      "INR",
		Period:        period,
		Interval:      interval,
		IsCustom:      isCustom,
		IsActive:      true,
	}
	if err := s.repo.CreatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns the public plan catalog.
func (s *Service) ListPlans() ([]models.SubscriptionPlan, error) {
	return s.repo.ListActivePlans()
}

// CreateSubscription starts a recurring agreement for a member. The local
// row stays in "created" state until the activation webhook arrives.
func (s *Service) CreateSubscription(ctx context.Context, userID, planID uint, totalCount int) (*models.Subscription, *GatewaySubscription, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.repo.GetPlanByID(planID)
	if err != nil {
		return nil, nil, err
	}
	if totalCount <= 0 {
		totalCount = 12
	}

	remote, err := s.gateway.CreateSubscription(ctx, CreateSubscriptionParams{
		PlanID:     plan.GatewayPlanID,
		TotalCount: totalCount,
		Notes:      map[string]string{"user_id": fmt.Sprintf("%d", user.ID)},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gateway subscription creation failed: %w", err)
	}

	sub := &models.Subscription{
		GatewaySubscriptionID: remote.ID,
		UserID:                user.ID,
		PlanID:                plan.ID,
		Status:                models.SubscriptionStatusCreated,
		TotalCount:            totalCount,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, nil, err
	}
	return sub, remote, nil
}

// EnableAutoPay resumes recurring charges on the gateway. Local state
// follows via the subscription.resumed webhook; webhooks remain the only
// writer of subscription lifecycle state.
func (s *Service) EnableAutoPay(ctx context.Context, userID uint) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(user.SubscriptionID) == "" {
		return ErrNoSubscription
	}
	return s.gateway.ResumeSubscription(ctx, user.SubscriptionID)
}

// DisableAutoPay pauses recurring charges on the gateway.
func (s *Service) DisableAutoPay(ctx context.Context, userID uint) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(user.SubscriptionID) == "" {
		return ErrNoSubscription
	}
	return s.gateway.PauseSubscription(ctx, user.SubscriptionID)
}

// CancelSubscription cancels the agreement at the end of the current cycle.
func (s *Service) CancelSubscription(ctx context.Context, userID uint) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(user.SubscriptionID) == "" {
		return ErrNoSubscription
	}
	return s.gateway.CancelSubscription(ctx, user.SubscriptionID, true)
}

// WebhookResult reports how a webhook delivery was handled.
type WebhookResult struct {
	Duplicate bool
	Ignored   bool
	EventType string
}

// HandleWebhook verifies, deduplicates and applies a gateway webhook
// delivery. A signature mismatch mutates nothing. Redelivered events are
// acknowledged without reprocessing.
func (s *Service) HandleWebhook(ctx context.Context, raw []byte, signatureHeader, headerEventID string) (*WebhookResult, error) {
	if !VerifyWebhookSignature(raw, signatureHeader, s.webhookSecret) {
		return nil, ErrInvalidSignature
	}

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		return nil, err
	}

	eventID := ev.DedupKey(headerEventID)
	if eventID == "" {
		sum := sha256.Sum256(raw)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.PaymentWebhookEvent{
		Provider:        ProviderRazorpay,
		ProviderEventID: eventID,
		EventType:       ev.Type,
		PayloadJSON:     string(raw),
		SignatureValid:  true,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &WebhookResult{Duplicate: true, EventType: ev.Type}, nil
	}

	result, procErr := s.dispatchWebhookEvent(ctx, ev)
	if markErr := s.repo.MarkWebhookProcessed(stored.ID, errString(procErr)); markErr != nil {
		log.Printf("failed to mark webhook event %d processed: %v", stored.ID, markErr)
	}
	if procErr != nil {
		return nil, procErr
	}
	result.EventType = ev.Type
	return result, nil
}

func (s *Service) dispatchWebhookEvent(ctx context.Context, ev *WebhookEvent) (*WebhookResult, error) {
	switch ev.Type {
	case EventPaymentCaptured, EventOrderPaid:
		return s.handleOrderPaid(ctx, ev)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ev)
	case EventSubscriptionActivated:
		return s.handleSubscriptionActivated(ctx, ev)
	case EventSubscriptionCharged:
		return s.handleSubscriptionCharged(ctx, ev)
	case EventSubscriptionCancelled, EventSubscriptionCompleted,
		EventSubscriptionPaused, EventSubscriptionResumed:
		return s.handleSubscriptionLifecycle(ctx, ev)
	default:
		log.Printf("ignoring unhandled webhook event type %q", ev.Type)
		return &WebhookResult{Ignored: true}, nil
	}
}

func (s *Service) handleOrderPaid(ctx context.Context, ev *WebhookEvent) (*WebhookResult, error) {
	orderID := ""
	paymentID := ""
	if ev.Payment != nil {
		orderID = ev.Payment.OrderID
		paymentID = ev.Payment.ID
	}
	if orderID == "" && ev.Order != nil {
		orderID = ev.Order.ID
	}
	if orderID == "" {
		return nil, errors.New("payment event carries no order id")
	}

	order, err := s.repo.GetOrderByGatewayID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook for unknown order %s ignored", orderID)
			return &WebhookResult{Ignored: true}, nil
		}
		return nil, err
	}

	if err := s.applyOrderPaid(ctx, order, paymentID); err != nil {
		return nil, err
	}
	return &WebhookResult{}, nil
}

func (s *Service) handlePaymentFailed(ev *WebhookEvent) (*WebhookResult, error) {
	if ev.Payment == nil || ev.Payment.OrderID == "" {
		return &WebhookResult{Ignored: true}, nil
	}
	if err := s.repo.MarkOrderFailed(ev.Payment.OrderID); err != nil {
		return nil, err
	}
	return &WebhookResult{}, nil
}

func (s *Service) handleSubscriptionActivated(ctx context.Context, ev *WebhookEvent) (*WebhookResult, error) {
	sub, res, err := s.lookupSubscription(ev)
	if sub == nil {
		return res, err
	}

	sub.Status = models.SubscriptionStatusActive
	sub.CurrentStart = ev.Subscription.CurrentStartTime()
	sub.CurrentEnd = ev.Subscription.CurrentEndTime()
	if ev.Subscription.TotalCount > 0 {
		sub.TotalCount = ev.Subscription.TotalCount
	}
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	err = s.transitionUser(ctx, sub.UserID, MembershipEvent{
		Kind:           MembershipEventSubscriptionActivated,
		SubscriptionID: sub.GatewaySubscriptionID,
		PeriodStart:    sub.CurrentStart,
		PeriodEnd:      sub.CurrentEnd,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &WebhookResult{}, nil
}

func (s *Service) handleSubscriptionCharged(ctx context.Context, ev *WebhookEvent) (*WebhookResult, error) {
	sub, res, err := s.lookupSubscription(ev)
	if sub == nil {
		return res, err
	}

	if ev.Payment != nil && ev.Payment.ID != "" {
		// Second idempotency guard behind the event ledger: a replay that
		// slipped past the ledger key still must not double-count.
		seen, err := s.repo.CountOrdersByPaymentID(ev.Payment.ID)
		if err != nil {
			return nil, err
		}
		if seen > 0 {
			log.Printf("charge %s for subscription %s already recorded, skipping", ev.Payment.ID, sub.GatewaySubscriptionID)
			return &WebhookResult{Duplicate: true}, nil
		}
	}

	// paid_count is derived locally rather than copied from the event body.
	sub.PaidCount++
	sub.CurrentStart = ev.Subscription.CurrentStartTime()
	if end := ev.Subscription.CurrentEndTime(); end != nil {
		sub.CurrentEnd = end
	}
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	if ev.Payment != nil {
		now := s.now()
		orderID := ev.Payment.OrderID
		if orderID == "" {
			orderID = "subp_" + ev.Payment.ID
		}
		order := &models.Order{
			GatewayOrderID:        orderID,
			UserID:                sub.UserID,
			Amount:                float64(ev.Payment.Amount) / 100,
			Currency:              ev.Payment.Currency,
			Status:                models.OrderStatusPaid,
			GatewayPaymentID:      ev.Payment.ID,
			IsSubscription:        true,
			GatewaySubscriptionID: sub.GatewaySubscriptionID,
			PaidAt:                &now,
		}
		if err := s.repo.CreateOrder(order); err != nil {
			return nil, err
		}
	}

	err = s.transitionUser(ctx, sub.UserID, MembershipEvent{
		Kind:           MembershipEventSubscriptionCharged,
		SubscriptionID: sub.GatewaySubscriptionID,
		PeriodStart:    sub.CurrentStart,
		PeriodEnd:      sub.CurrentEnd,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &WebhookResult{}, nil
}

func (s *Service) handleSubscriptionLifecycle(ctx context.Context, ev *WebhookEvent) (*WebhookResult, error) {
	sub, res, err := s.lookupSubscription(ev)
	if sub == nil {
		return res, err
	}

	var kind string
	switch ev.Type {
	case EventSubscriptionCancelled:
		sub.Status = models.SubscriptionStatusCancelled
		kind = MembershipEventSubscriptionCancelled
	case EventSubscriptionCompleted:
		sub.Status = models.SubscriptionStatusCompleted
		kind = MembershipEventSubscriptionCompleted
	case EventSubscriptionPaused:
		sub.Status = models.SubscriptionStatusPaused
		kind = MembershipEventSubscriptionPaused
	case EventSubscriptionResumed:
		sub.Status = models.SubscriptionStatusActive
		kind = MembershipEventSubscriptionResumed
	}

	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	err = s.transitionUser(ctx, sub.UserID, MembershipEvent{
		Kind:           kind,
		SubscriptionID: sub.GatewaySubscriptionID,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &WebhookResult{}, nil
}

// lookupSubscription resolves the local subscription for an event. Unknown
// ids and terminal subscriptions are logged and ignored rather than failing
// the delivery.
func (s *Service) lookupSubscription(ev *WebhookEvent) (*models.Subscription, *WebhookResult, error) {
	if ev.Subscription == nil || strings.TrimSpace(ev.Subscription.ID) == "" {
		return nil, nil, errors.New("subscription event carries no subscription id")
	}
	sub, err := s.repo.GetSubscriptionByGatewayID(ev.Subscription.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook for unknown subscription %s ignored", ev.Subscription.ID)
			return nil, &WebhookResult{Ignored: true}, nil
		}
		return nil, nil, err
	}
	if sub.IsTerminal() {
		log.Printf("webhook %s for terminal subscription %s ignored", ev.Type, sub.GatewaySubscriptionID)
		return nil, &WebhookResult{Ignored: true}, nil
	}
	return sub, nil, nil
}

// applyOrderPaid marks the order paid and promotes the owning user. Safe to
// call from both the callback and webhook paths: a second application finds
// the paid state already in place.
func (s *Service) applyOrderPaid(ctx context.Context, order *models.Order, gatewayPaymentID string) error {
	if !order.IsPaid() {
		if err := s.repo.MarkOrderPaid(order.GatewayOrderID, gatewayPaymentID, s.now()); err != nil {
			return err
		}
	}

	return s.transitionUser(ctx, order.UserID, MembershipEvent{
		Kind: MembershipEventOrderPaid,
		Now:  s.now(),
	})
}

// transitionUser funnels a verified event through the pure membership
// transition and persists the result, notifying on role promotion.
func (s *Service) transitionUser(_ context.Context, userID uint, ev MembershipEvent) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}

	prev := MembershipState{
		Role:               user.Role,
		HasPaid:            user.HasPaid,
		AutoPayEnabled:     user.AutoPayEnabled,
		SubscriptionID:     user.SubscriptionID,
		SubscriptionStatus: user.SubscriptionStatus,
		MembershipStart:    user.MembershipStart,
		MembershipEnd:      user.MembershipEnd,
	}
	next := ApplyMembershipEvent(prev, ev)

	if err := s.repo.SaveUserMembership(user.ID, next); err != nil {
		return err
	}

	if s.mailer != nil && next.Role == models.ROLE_INDIVIDUAL && prev.Role != models.ROLE_INDIVIDUAL {
		if err := s.mailer(user.Email, user.Name, next.Role); err != nil {
			log.Printf("membership upgrade mail to %s failed: %v", user.Email, err)
		}
	}
	return nil
}

func encodeNotes(notes map[string]string) string {
	if len(notes) == 0 {
		return ""
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return ""
	}
	return string(raw)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
