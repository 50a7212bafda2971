package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/psfhyd/memberportal/app/models"
	"github.com/psfhyd/memberportal/app/repository"
	"github.com/psfhyd/memberportal/internal/pkg/cache"
	"github.com/psfhyd/memberportal/internal/pkg/payments"
	"github.com/psfhyd/memberportal/internal/pkg/usercontext"
)

const planCatalogCacheKey = "subscription:plans"
const planCatalogCacheTTL = 5 * time.Minute

type createPlanRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Period   string  `json:"period"`
	Interval int     `json:"interval"`
}

// HandleCreatePlan registers a recurring price point. Admin only.
func HandleCreatePlan(c *fiber.Ctx) error {
	var req createPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" || req.Amount <= 0 {
		return badRequest(c, "name and a positive amount are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	plan, err := paymentService().CreatePlan(ctx, req.Name, req.Amount, req.Period, req.Interval, false)
	if err != nil {
		return serverError(c, "plan creation failed")
	}

	_ = cache.Delete(planCatalogCacheKey)

	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleListPlans returns the public plan catalog, served from cache when warm.
func HandleListPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(planCatalogCacheKey); err == nil && cached != "" {
		var plans []models.SubscriptionPlan
		if json.Unmarshal([]byte(cached), &plans) == nil {
			return c.JSON(plans)
		}
	}

	plans, err := paymentService().ListPlans()
	if err != nil {
		return serverError(c, "plan listing failed")
	}

	if raw, err := json.Marshal(plans); err == nil {
		if err := cache.Set(planCatalogCacheKey, string(raw), planCatalogCacheTTL); err != nil {
			log.Printf("failed to cache plan catalog: %v", err)
		}
	}

	return c.JSON(plans)
}

type createSubscriptionRequest struct {
	PlanID       uint    `json:"plan_id"`
	TotalCount   int     `json:"total_count"`
	CustomAmount float64 `json:"custom_amount"`
	Period       string  `json:"period"`
}

// HandleCreateSubscription starts a recurring agreement. A custom amount
// creates an ad-hoc plan first; otherwise plan_id selects a catalog entry.
func HandleCreateSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	svc := paymentService()

	planID := req.PlanID
	if req.CustomAmount > 0 {
		period := req.Period
		if period == "" {
			period = models.PlanPeriodMonthly
		}
		plan, err := svc.CreatePlan(ctx, "Custom membership", req.CustomAmount, period, 1, true)
		if err != nil {
			return serverError(c, "custom plan creation failed")
		}
		planID = plan.ID
	}
	if planID == 0 {
		return badRequest(c, "plan_id or custom_amount is required")
	}

	sub, remote, err := svc.CreateSubscription(ctx, userCtx.UserID, planID, req.TotalCount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "plan not found")
		}
		return serverError(c, "subscription creation failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscription": sub,
		"checkout_url": remote.ShortURL,
	})
}

// HandleCreateOneTimeOrder creates a one-time membership contribution order.
// Amounts below the minimum are rejected before any row is written.
func HandleCreateOneTimeOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Notes == nil {
		req.Notes = map[string]string{}
	}
	req.Notes["purpose"] = "membership"

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	order, err := paymentService().CreateOrder(ctx, userCtx.UserID, req.Amount, req.Currency, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrAmountTooLow):
			return badRequest(c, "amount is below the minimum contribution of 300")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "user not found")
		default:
			return serverError(c, "order creation failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// HandleVerifyPayment confirms a checkout callback. The order flips to paid
// only on an exact signature match; a mismatch changes nothing and the
// client must re-attempt payment.
func HandleVerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return badRequest(c, "order_id, payment_id and signature are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	order, err := paymentService().VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidSignature):
			return badRequest(c, "payment signature verification failed")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "order not found")
		default:
			return serverError(c, "payment verification failed")
		}
	}

	return c.JSON(order)
}

// HandleSubscriptionWebhook handles the gateway's subscription lifecycle
// notifications. Shares the verification/dedup pipeline with the payment
// webhook; only the route differs, matching the gateway's configuration.
func HandleSubscriptionWebhook(c *fiber.Ctx) error {
	return HandlePaymentWebhook(c)
}

// HandleMySubscriptions lists the caller's subscriptions with plan data.
func HandleMySubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		return serverError(c, "subscription listing failed")
	}
	return c.JSON(subs)
}

// HandleEnableAutoPay resumes recurring charges on the gateway. The local
// mirror follows via webhook; this endpoint never writes lifecycle state.
func HandleEnableAutoPay(c *fiber.Ctx) error {
	return toggleAutoPay(c, true)
}

// HandleDisableAutoPay pauses recurring charges on the gateway.
func HandleDisableAutoPay(c *fiber.Ctx) error {
	return toggleAutoPay(c, false)
}

func toggleAutoPay(c *fiber.Ctx, enable bool) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	svc := paymentService()
	var err error
	if enable {
		err = svc.EnableAutoPay(ctx, userCtx.UserID)
	} else {
		err = svc.DisableAutoPay(ctx, userCtx.UserID)
	}
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNoSubscription):
			return badRequest(c, "no linked subscription")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "user not found")
		default:
			return serverError(c, "auto-pay update failed")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleCancelSubscription cancels the caller's agreement at cycle end.
func HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := paymentService().CancelSubscription(ctx, userCtx.UserID); err != nil {
		switch {
		case errors.Is(err, payments.ErrNoSubscription):
			return badRequest(c, "no linked subscription")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "user not found")
		default:
			return serverError(c, "subscription cancellation failed")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
