package models

import "time"

const (
	RSVPStatusGoing      = "going"
	RSVPStatusWaitlisted = "waitlisted"
	RSVPStatusCancelled  = "cancelled"
)

// RSVP records one member's attendance intent for an event. A user has at
// most one row per event; re-submitting updates the existing row.
type RSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index:ux_rsvps_event_user,unique,priority:1" json:"event_id"`
	UserID    uint      `gorm:"not null;index:ux_rsvps_event_user,unique,priority:2" json:"user_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:'going';index" json:"status"`
	Guests    int       `gorm:"not null;default:0" json:"guests"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
