package repository

import (
	"github.com/psfhyd/memberportal/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByAuthSub(authSub string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// OrderRepository defines read access to payment attempt mirrors
type OrderRepository interface {
	GetByGatewayOrderID(gatewayOrderID string) (*models.Order, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Order, error)
	List(offset, limit int) ([]models.Order, error)
	Count() (int64, error)
}

// SubscriptionRepository defines read access to subscription mirrors
type SubscriptionRepository interface {
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetByGatewayID(gatewaySubscriptionID string) (*models.Subscription, error)
}

// EventRepository defines the interface for event and RSVP operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	Update(event *models.Event) error
	Delete(id uint) error
	ListPublished(offset, limit int) ([]models.Event, error)
	ListAll(offset, limit int) ([]models.Event, error)

	UpsertRSVP(rsvp *models.RSVP) error
	GetRSVP(eventID, userID uint) (*models.RSVP, error)
	ListRSVPs(eventID uint) ([]models.RSVP, error)
	CountGoing(eventID uint) (int64, error)
}

// FeedbackRepository defines the interface for feedback operations
type FeedbackRepository interface {
	Create(fb *models.Feedback) error
	List(offset, limit int) ([]models.Feedback, error)
	Count() (int64, error)
}

// TicketRepository defines the interface for support tickets
type TicketRepository interface {
	Create(ticket *models.SupportTicket) error
	GetByID(id uint) (*models.SupportTicket, error)
	GetByReference(ref string) (*models.SupportTicket, error)
	Update(ticket *models.SupportTicket) error
	ListByUserID(userID uint) ([]models.SupportTicket, error)
	List(status string, offset, limit int) ([]models.SupportTicket, error)
}
