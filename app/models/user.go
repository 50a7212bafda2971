package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ROLE_ADMIN      = "admin"
	ROLE_INDIVIDUAL = "individual_member"
	ROLE_ASSOCIATE  = "associate_member"
	ROLE_PENDING    = "pending"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	AuthSub            string         `gorm:"uniqueIndex;type:varchar(191);not null" json:"-"`
	Name               string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email              string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Role               string         `gorm:"type:varchar(50);default:'pending';index" json:"role" validate:"oneof=admin individual_member associate_member pending"`
	Phone              string         `gorm:"type:varchar(20);default:''" json:"phone" validate:"max=20"`
	PhoneVerified      bool           `gorm:"default:false" json:"phone_verified"`
	HasPaid            bool           `gorm:"default:false" json:"has_paid"`
	AutoPayEnabled     bool           `gorm:"default:false" json:"auto_pay_enabled"`
	SubscriptionID     string         `gorm:"type:varchar(191);default:'';index" json:"subscription_id"`
	SubscriptionStatus string         `gorm:"type:varchar(32);default:''" json:"subscription_status"`
	MembershipStart    *time.Time     `gorm:"type:timestamp;default:null" json:"membership_start,omitempty"`
	MembershipEnd      *time.Time     `gorm:"type:timestamp;default:null" json:"membership_end,omitempty"`
	City               string         `gorm:"type:varchar(100);default:''" json:"city" validate:"max=100"`
	Occupation         string         `gorm:"type:varchar(150);default:''" json:"occupation" validate:"max=150"`
	LastLoginAt        *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewUser provisions a user from identity-provider claims. New accounts
// start in the pending role until an admin or a verified payment event
// promotes them.
func NewUser(authSub, name, email string) (*User, error) {
	u := &User{
		AuthSub: authSub,
		Name:    name,
		Email:   email,
		Role:    ROLE_PENDING,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// IsMember reports whether the user holds a paying or associate membership role.
func (u *User) IsMember() bool {
	return u.Role == ROLE_INDIVIDUAL || u.Role == ROLE_ASSOCIATE
}

// MembershipCurrent reports whether the membership period covers the given time.
// Associate members are always considered paid.
func (u *User) MembershipCurrent(now time.Time) bool {
	if u.Role == ROLE_ASSOCIATE {
		return true
	}
	if !u.HasPaid || u.MembershipEnd == nil {
		return false
	}
	return now.Before(*u.MembershipEnd)
}

// ValidRole reports whether role is one of the assignable membership roles.
func ValidRole(role string) bool {
	switch role {
	case ROLE_ADMIN, ROLE_INDIVIDUAL, ROLE_ASSOCIATE, ROLE_PENDING:
		return true
	default:
		return false
	}
}
