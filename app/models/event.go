package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Event is a community gathering members can RSVP to.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Venue       string         `gorm:"type:varchar(255)" json:"venue" validate:"max=255"`
	StartsAt    time.Time      `gorm:"not null;index" json:"starts_at" validate:"required"`
	EndsAt      *time.Time     `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	Capacity    int            `gorm:"not null;default:0" json:"capacity"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	CreatedBy   uint           `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) Validate() error {
	v := validator.New()

	return v.Struct(e)
}

// HasCapacityLimit reports whether the event caps attendance.
func (e *Event) HasCapacityLimit() bool {
	return e.Capacity > 0
}
