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

type ticketRequest struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
}

// HandleCreateTicket opens a support ticket for the caller.
func HandleCreateTicket(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req ticketRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Priority == "" {
		req.Priority = models.TicketPriorityNormal
	}

	ticket := &models.SupportTicket{
		Reference: models.NewTicketReference(),
		UserID:    userCtx.UserID,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    models.TicketStatusOpen,
		Priority:  req.Priority,
	}
	if err := ticket.Validate(); err != nil {
		return badRequest(c, "ticket validation failed: "+err.Error())
	}

	if err := repository.GetGlobalFactory().GetTicketRepository().Create(ticket); err != nil {
		return serverError(c, "ticket creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// HandleMyTickets lists tickets opened by the caller.
func HandleMyTickets(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	tickets, err := repository.GetGlobalFactory().GetTicketRepository().ListByUserID(userCtx.UserID)
	if err != nil {
		return serverError(c, "ticket listing failed")
	}
	return c.JSON(tickets)
}

// HandleListTickets lists all tickets with an optional status filter. Admin only.
func HandleListTickets(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !models.ValidTicketStatus(status) {
		return badRequest(c, "unknown ticket status")
	}
	offset, limit := parsePagination(c)

	tickets, err := repository.GetGlobalFactory().GetTicketRepository().List(status, offset, limit)
	if err != nil {
		return serverError(c, "ticket listing failed")
	}
	return c.JSON(tickets)
}

type updateTicketRequest struct {
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssignedTo *uint  `json:"assigned_to"`
}

// HandleUpdateTicket updates ticket status, priority or assignment. Admin only.
func HandleUpdateTicket(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	var req updateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetTicketRepository()
	ticket, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "ticket not found")
		}
		return serverError(c, "ticket lookup failed")
	}

	if req.Status != "" {
		if !models.ValidTicketStatus(req.Status) {
			return badRequest(c, "unknown ticket status")
		}
		ticket.Status = req.Status
		if req.Status == models.TicketStatusResolved && ticket.ResolvedAt == nil {
			now := time.Now()
			ticket.ResolvedAt = &now
		}
	}
	if req.Priority != "" {
		ticket.Priority = req.Priority
	}
	if req.AssignedTo != nil {
		ticket.AssignedTo = req.AssignedTo
	}

	if err := ticket.Validate(); err != nil {
		return badRequest(c, "ticket validation failed: "+err.Error())
	}
	if err := repo.Update(ticket); err != nil {
		return serverError(c, "ticket update failed")
	}
	return c.JSON(ticket)
}
