package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psfhyd/memberportal/app/models"
	"github.com/psfhyd/memberportal/app/repository"
	"github.com/psfhyd/memberportal/internal/pkg/usercontext"
)

type feedbackRequest struct {
	Category string `json:"category"`
	Rating   int    `json:"rating"`
	Message  string `json:"message"`
}

// HandleCreateFeedback stores a feedback entry from the caller.
func HandleCreateFeedback(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Category == "" {
		req.Category = "general"
	}

	fb := &models.Feedback{
		Category: req.Category,
		Rating:   req.Rating,
		Message:  req.Message,
	}
	if userCtx.IsLoggedIn {
		uid := userCtx.UserID
		fb.UserID = &uid
	}
	if err := fb.Validate(); err != nil {
		return badRequest(c, "feedback validation failed: "+err.Error())
	}

	if err := repository.GetGlobalFactory().GetFeedbackRepository().Create(fb); err != nil {
		return serverError(c, "feedback submission failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fb)
}

// HandleListFeedback lists feedback entries. Admin only.
func HandleListFeedback(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetFeedbackRepository()

	entries, err := repo.List(offset, limit)
	if err != nil {
		return serverError(c, "feedback listing failed")
	}
	total, err := repo.Count()
	if err != nil {
		return serverError(c, "feedback count failed")
	}
	return c.JSON(fiber.Map{"feedback": entries, "total": total})
}
