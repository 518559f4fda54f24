package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// List retrieves meetings newest first
func (r *meetingRepository) List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error) {
	if limit == 0 {
		limit = 100
	}
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// Delete deletes a meeting
func (r *meetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entities.Meeting{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}

// TransitionStatus atomically claims the meeting for a new status.
// Only one caller can succeed if several see the same current status.
func (r *meetingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ProcessStatus, to entities.ProcessStatus) (bool, error) {
	updates := map[string]interface{}{
		"process_status": to,
		"updated_at":     time.Now(),
	}
	if to == entities.ProcessStatusProcessing {
		updates["process_error"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND process_status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "lost the race" from "no such meeting"
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Meeting{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, entities.ErrMeetingNotFound
	}
	return false, nil
}

// MarkCompleted marks the meeting as completed with its thought count
func (r *meetingRepository) MarkCompleted(ctx context.Context, id uuid.UUID, thoughtCount int, processedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"process_status": entities.ProcessStatusCompleted,
			"process_error":  nil,
			"thought_count":  thoughtCount,
			"processed_at":   processedAt,
			"updated_at":     time.Now(),
		}).Error
}

// MarkFailed marks the meeting as failed with error message
func (r *meetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"process_status": entities.ProcessStatusFailed,
			"process_error":  errMsg,
			"updated_at":     time.Now(),
		}).Error
}
