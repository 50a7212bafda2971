package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/psfhyd/memberportal/internal/pkg/payments"
	"github.com/psfhyd/memberportal/internal/pkg/usercontext"
)

type createOrderRequest struct {
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

// HandleCreateOrder creates a gateway order for a one-time payment and
// mirrors it locally in "created" state.
func HandleCreateOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

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

// HandleOrderStatus returns the local mirror of a gateway order. Members see
// their own orders; admins see all.
func HandleOrderStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	orderID := strings.TrimSpace(c.Params("orderId"))
	if orderID == "" {
		return badRequest(c, "order id missing")
	}

	order, err := paymentService().GetOrder(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "order not found")
		}
		return serverError(c, "order lookup failed")
	}
	if order.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return notFound(c, "order not found")
	}

	return c.JSON(order)
}

// HandlePaymentWebhook receives asynchronous gateway notifications. The
// signature is verified over the raw body before anything is written;
// redelivered events are acknowledged without reprocessing.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Razorpay-Signature"))
	eventID := strings.TrimSpace(c.Get("X-Razorpay-Event-Id"))

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result, err := paymentService().HandleWebhook(ctx, rawBody, signature, eventID)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return badRequest(c, "invalid webhook signature")
		}
		return serverError(c, "webhook processing failed")
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"duplicate": result.Duplicate,
		"ignored":   result.Ignored,
	})
}
