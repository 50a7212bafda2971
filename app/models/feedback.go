package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Category  string    `gorm:"type:varchar(50);not null;default:'general'" json:"category" validate:"oneof=general events membership website other"`
	Rating    int       `gorm:"not null" json:"rating" validate:"required,min=1,max=5"`
	Message   string    `gorm:"type:text" json:"message" validate:"max=5000"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Feedback) Validate() error {
	v := validator.New()

	return v.Struct(f)
}
