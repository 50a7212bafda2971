package repository

import (
	"github.com/psfhyd/memberportal/app/models"
	"gorm.io/gorm"
)

// feedbackRepository implements the FeedbackRepository interface
type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository instance
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create stores a feedback entry
func (r *feedbackRepository) Create(fb *models.Feedback) error {
	return r.db.Create(fb).Error
}

// List retrieves feedback entries, newest first
func (r *feedbackRepository) List(offset, limit int) ([]models.Feedback, error) {
	var entries []models.Feedback
	err := r.db.Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// Count returns the total number of feedback entries
func (r *feedbackRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Feedback{}).Count(&count).Error
	return count, err
}
