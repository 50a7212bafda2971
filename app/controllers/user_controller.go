package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/psfhyd/memberportal/app/models"
	"github.com/psfhyd/memberportal/app/repository"
	"github.com/psfhyd/memberportal/internal/pkg/mail"
	"github.com/psfhyd/memberportal/internal/pkg/payments"
	"github.com/psfhyd/memberportal/internal/pkg/phone"
	"github.com/psfhyd/memberportal/internal/pkg/usercontext"
)

// HandleGetMe returns the authenticated user's profile.
func HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "user lookup failed")
	}
	return c.JSON(user)
}

type updateProfileRequest struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	Occupation string `json:"occupation"`
}

// HandleUpdateMe updates the caller's editable profile fields. Role and
// payment flags are deliberately not accepted here.
func HandleUpdateMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return notFound(c, "user not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.City = req.City
	user.Occupation = req.Occupation

	if err := user.Validate(); err != nil {
		return badRequest(c, "profile validation failed: "+err.Error())
	}
	if err := repo.Update(user); err != nil {
		return serverError(c, "profile update failed")
	}

	return c.JSON(user)
}

// HandleListUsers lists all users, optionally filtered by a search query.
// Admin only.
func HandleListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return serverError(c, "user search failed")
		}
		return c.JSON(fiber.Map{"users": users, "total": len(users)})
	}

	offset, limit := parsePagination(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return serverError(c, "user listing failed")
	}
	total, err := repo.Count()
	if err != nil {
		return serverError(c, "user count failed")
	}

	return c.JSON(fiber.Map{"users": users, "total": total})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateUserRole performs an administrative role edit. This bypasses
// payment verification entirely; the route is admin-gated for exactly that
// reason. Moving a member into the individual tier clears has_paid until a
// verified payment event restores it, and notifies the member once.
func HandleUpdateUserRole(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !models.ValidRole(req.Role) {
		return badRequest(c, "unknown role")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "user lookup failed")
	}

	prevRole := user.Role
	next := payments.ApplyMembershipEvent(payments.MembershipState{
		Role:               user.Role,
		HasPaid:            user.HasPaid,
		AutoPayEnabled:     user.AutoPayEnabled,
		SubscriptionID:     user.SubscriptionID,
		SubscriptionStatus: user.SubscriptionStatus,
		MembershipStart:    user.MembershipStart,
		MembershipEnd:      user.MembershipEnd,
	}, payments.MembershipEvent{
		Kind:    payments.MembershipEventAdminSetRole,
		NewRole: req.Role,
		Now:     time.Now().UTC(),
	})

	user.Role = next.Role
	user.HasPaid = next.HasPaid
	if err := repo.Update(user); err != nil {
		return serverError(c, "role update failed")
	}

	if prevRole == models.ROLE_ASSOCIATE && next.Role == models.ROLE_INDIVIDUAL {
		if err := mail.SendMembershipUpgradeMail(user.Email, user.Name, next.Role); err != nil {
			log.Printf("role change mail to %s failed: %v", user.Email, err)
		}
	}

	return c.JSON(user)
}

type verifyPhoneRequest struct {
	IDToken string `json:"id_token"`
}

// HandleVerifyPhone validates a provider-issued phone verification token and
// records the verified number on the caller's profile.
func HandleVerifyPhone(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return badRequest(c, "id_token is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	number, err := phone.NewClientFromEnv().VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return badRequest(c, "phone verification failed")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return notFound(c, "user not found")
	}

	user.Phone = number
	user.PhoneVerified = true
	if err := repo.Update(user); err != nil {
		return serverError(c, "phone update failed")
	}

	return c.JSON(fiber.Map{"ok": true, "phone": number})
}

// HandleMyOrders lists the caller's payment history, newest first.
func HandleMyOrders(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c)

	orders, err := repository.GetGlobalFactory().GetOrderRepository().ListByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return serverError(c, "order listing failed")
	}
	return c.JSON(orders)
}
