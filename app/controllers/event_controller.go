package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/psfhyd/memberportal/app/models"
	"github.com/psfhyd/memberportal/app/repository"
	"github.com/psfhyd/memberportal/internal/pkg/usercontext"
)

type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    int        `json:"capacity"`
	Published   bool       `json:"published"`
}

// HandleCreateEvent creates a community event. Admin only.
func HandleCreateEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		Published:   req.Published,
		CreatedBy:   userCtx.UserID,
	}
	if err := event.Validate(); err != nil {
		return badRequest(c, "event validation failed: "+err.Error())
	}

	if err := repository.GetGlobalFactory().GetEventRepository().Create(event); err != nil {
		return serverError(c, "event creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// HandleListEvents lists events. Members see published events; admins can
// request drafts with ?all=1.
func HandleListEvents(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetEventRepository()

	var (
		events []models.Event
		err    error
	)
	if userCtx.IsAdmin && c.Query("all") == "1" {
		events, err = repo.ListAll(offset, limit)
	} else {
		events, err = repo.ListPublished(offset, limit)
	}
	if err != nil {
		return serverError(c, "event listing failed")
	}
	return c.JSON(events)
}

// HandleGetEvent returns one event. Unpublished events are only visible to admins.
func HandleGetEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	event, err := repository.GetGlobalFactory().GetEventRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "event not found")
		}
		return serverError(c, "event lookup failed")
	}
	if !event.Published && !userCtx.IsAdmin {
		return notFound(c, "event not found")
	}
	return c.JSON(event)
}

// HandleUpdateEvent updates an event. Admin only.
func HandleUpdateEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "event not found")
		}
		return serverError(c, "event lookup failed")
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Venue = req.Venue
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Capacity = req.Capacity
	event.Published = req.Published

	if err := event.Validate(); err != nil {
		return badRequest(c, "event validation failed: "+err.Error())
	}
	if err := repo.Update(event); err != nil {
		return serverError(c, "event update failed")
	}
	return c.JSON(event)
}

// HandleDeleteEvent removes an event. Admin only.
func HandleDeleteEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "event not found")
		}
		return serverError(c, "event lookup failed")
	}
	if err := repo.Delete(id); err != nil {
		return serverError(c, "event deletion failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}

type rsvpRequest struct {
	Guests int `json:"guests"`
}

// HandleRSVP records the caller's attendance intent. Full events put the
// member on the waitlist instead of confirming.
func HandleRSVP(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	var req rsvpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Guests < 0 || req.Guests > 10 {
		return badRequest(c, "guests must be between 0 and 10")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "event not found")
		}
		return serverError(c, "event lookup failed")
	}
	if !event.Published {
		return notFound(c, "event not found")
	}

	status := models.RSVPStatusGoing
	if event.HasCapacityLimit() {
		going, err := repo.CountGoing(event.ID)
		if err != nil {
			return serverError(c, "capacity check failed")
		}
		if going >= int64(event.Capacity) {
			status = models.RSVPStatusWaitlisted
		}
	}

	rsvp := &models.RSVP{
		EventID: event.ID,
		UserID:  userCtx.UserID,
		Status:  status,
		Guests:  req.Guests,
	}
	if err := repo.UpsertRSVP(rsvp); err != nil {
		return serverError(c, "rsvp failed")
	}

	stored, err := repo.GetRSVP(event.ID, userCtx.UserID)
	if err != nil {
		return serverError(c, "rsvp lookup failed")
	}
	return c.Status(fiber.StatusCreated).JSON(stored)
}

// HandleCancelRSVP withdraws the caller's RSVP.
func HandleCancelRSVP(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	rsvp, err := repo.GetRSVP(id, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "rsvp not found")
		}
		return serverError(c, "rsvp lookup failed")
	}

	rsvp.Status = models.RSVPStatusCancelled
	if err := repo.UpsertRSVP(rsvp); err != nil {
		return serverError(c, "rsvp cancellation failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleListRSVPs lists all RSVPs on an event. Admin only.
func HandleListRSVPs(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	repo := repository.GetGlobalFactory().GetEventRepository()
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "event not found")
		}
		return serverError(c, "event lookup failed")
	}

	rsvps, err := repo.ListRSVPs(id)
	if err != nil {
		return serverError(c, "rsvp listing failed")
	}
	return c.JSON(rsvps)
}
