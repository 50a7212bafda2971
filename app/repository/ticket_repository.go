package repository

import (
	"github.com/psfhyd/memberportal/app/models"
	"gorm.io/gorm"
)

// ticketRepository implements the TicketRepository interface
type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new ticket repository instance
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create stores a new support ticket
func (r *ticketRepository) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

// GetByID retrieves a ticket by its ID
func (r *ticketRepository) GetByID(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByReference retrieves a ticket by its public reference
func (r *ticketRepository) GetByReference(ref string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Where("reference = ?", ref).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Update updates an existing ticket
func (r *ticketRepository) Update(ticket *models.SupportTicket) error {
	return r.db.Save(ticket).Error
}

// ListByUserID retrieves all tickets opened by a user
func (r *ticketRepository) ListByUserID(userID uint) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&tickets).Error
	return tickets, err
}

// List retrieves tickets with an optional status filter
func (r *ticketRepository) List(status string, offset, limit int) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	q := r.db.Order("created_at desc").Offset(offset).Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&tickets).Error
	return tickets, err
}
