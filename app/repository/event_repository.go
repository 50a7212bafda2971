package repository

import (
	"github.com/psfhyd/memberportal/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event
func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// GetByID retrieves an event by its ID
func (r *eventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update updates an existing event
func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

// Delete soft-deletes an event
func (r *eventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

// ListPublished retrieves published events, soonest first
func (r *eventRepository) ListPublished(offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("published = ?", true).
		Order("starts_at asc").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// ListAll retrieves all events including drafts
func (r *eventRepository) ListAll(offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Order("starts_at desc").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// UpsertRSVP inserts or updates a user's RSVP for an event
func (r *eventRepository) UpsertRSVP(rsvp *models.RSVP) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"status", "guests", "updated_at"}),
	}).Create(rsvp).Error
}

// GetRSVP retrieves a user's RSVP for an event
func (r *eventRepository) GetRSVP(eventID, userID uint) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// ListRSVPs retrieves all RSVPs for an event
func (r *eventRepository) ListRSVPs(eventID uint) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := r.db.Where("event_id = ?", eventID).Order("created_at asc").Find(&rsvps).Error
	return rsvps, err
}

// CountGoing counts confirmed attendees for an event
func (r *eventRepository) CountGoing(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.RSVP{}).
		Where("event_id = ? AND status = ?", eventID, models.RSVPStatusGoing).
		Count(&count).Error
	return count, err
}
