package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/psfhyd/memberportal/internal/pkg/database"
	"github.com/psfhyd/memberportal/internal/pkg/mail"
	"github.com/psfhyd/memberportal/internal/pkg/payments"
)

// paymentService builds the reconciliation service for the current request.
func paymentService() *payments.Service {
	return payments.NewServiceFromDB(
		database.GetDB(),
		payments.NewRazorpayClientFromEnv(),
		mail.SendMembershipUpgradeMail,
	)
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusBadRequest, "bad_request", message)
}

func notFound(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusNotFound, "not_found", message)
}

func serverError(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", message)
}

// parsePagination reads offset/limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (int, int) {
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}

// parseIDParam reads a numeric route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
