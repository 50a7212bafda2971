package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/psfhyd/memberportal/app/controllers"
	"github.com/psfhyd/memberportal/internal/pkg/auth"
	"github.com/psfhyd/memberportal/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "PSF Hyderabad member portal API",
		})
	})

	// Webhooks are unauthenticated: the gateway signs the raw body and the
	// handlers verify that signature before touching anything.
	api.Post("/payment/webhook", controllers.HandlePaymentWebhook)
	api.Post("/subscription/webhook", controllers.HandleSubscriptionWebhook)

	// Public plan catalog for the signup flow.
	api.Get("/subscription/plans", controllers.HandleListPlans)

	requireAuth := middleware.BearerAuthMiddleware(auth.NewVerifierFromEnv())

	payment := api.Group("/payment", requireAuth)
	payment.Post("/create-order", controllers.HandleCreateOrder)
	payment.Get("/status/:orderId", controllers.HandleOrderStatus)

	subscription := api.Group("/subscription", requireAuth)
	subscription.Post("/create", controllers.HandleCreateSubscription)
	subscription.Post("/create-one-time-order", controllers.HandleCreateOneTimeOrder)
	subscription.Post("/verify-payment", controllers.HandleVerifyPayment)
	subscription.Post("/enable-auto-pay", controllers.HandleEnableAutoPay)
	subscription.Post("/disable-auto-pay", controllers.HandleDisableAutoPay)
	subscription.Post("/cancel", controllers.HandleCancelSubscription)
	subscription.Get("/mine", controllers.HandleMySubscriptions)
	subscription.Post("/create-plan", middleware.RequireAdmin, controllers.HandleCreatePlan)

	users := api.Group("/users", requireAuth)
	users.Get("/me", controllers.HandleGetMe)
	users.Put("/me", controllers.HandleUpdateMe)
	users.Get("/me/orders", controllers.HandleMyOrders)
	users.Post("/me/verify-phone", controllers.HandleVerifyPhone)
	users.Get("/", middleware.RequireAdmin, controllers.HandleListUsers)
	users.Put("/:id/role", middleware.RequireAdmin, controllers.HandleUpdateUserRole)

	events := api.Group("/events", requireAuth)
	events.Get("/", controllers.HandleListEvents)
	events.Post("/", middleware.RequireAdmin, controllers.HandleCreateEvent)
	events.Get("/:id", controllers.HandleGetEvent)
	events.Put("/:id", middleware.RequireAdmin, controllers.HandleUpdateEvent)
	events.Delete("/:id", middleware.RequireAdmin, controllers.HandleDeleteEvent)
	events.Post("/:id/rsvp", controllers.HandleRSVP)
	events.Delete("/:id/rsvp", controllers.HandleCancelRSVP)
	events.Get("/:id/rsvps", middleware.RequireAdmin, controllers.HandleListRSVPs)

	feedback := api.Group("/feedback", requireAuth)
	feedback.Post("/", controllers.HandleCreateFeedback)
	feedback.Get("/", middleware.RequireAdmin, controllers.HandleListFeedback)

	tickets := api.Group("/tickets", requireAuth)
	tickets.Post("/", controllers.HandleCreateTicket)
	tickets.Get("/mine", controllers.HandleMyTickets)
	tickets.Get("/", middleware.RequireAdmin, controllers.HandleListTickets)
	tickets.Put("/:id", middleware.RequireAdmin, controllers.HandleUpdateTicket)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
