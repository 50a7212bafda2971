package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	TicketPriorityLow    = "low"
	TicketPriorityNormal = "normal"
	TicketPriorityHigh   = "high"
)

type SupportTicket struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Reference  string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"reference"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Subject    string         `gorm:"type:varchar(200);not null" json:"subject" validate:"required,min=3,max=200"`
	Body       string         `gorm:"type:text;not null" json:"body" validate:"required,max=10000"`
	Status     string         `gorm:"type:varchar(16);not null;default:'open';index" json:"status" validate:"oneof=open in_progress resolved closed"`
	Priority   string         `gorm:"type:varchar(16);not null;default:'normal'" json:"priority" validate:"oneof=low normal high"`
	AssignedTo *uint          `gorm:"index" json:"assigned_to,omitempty"`
	ResolvedAt *time.Time     `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *SupportTicket) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// NewTicketReference generates a short human-shareable ticket reference.
func NewTicketReference() string {
	return "TKT-" + uuid.NewString()[:8]
}

// ValidTicketStatus reports whether status is an accepted ticket state.
func ValidTicketStatus(status string) bool {
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}
