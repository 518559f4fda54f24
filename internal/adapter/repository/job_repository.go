package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

// jobRepository handles processing job data operations
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new processing job repository
func NewJobRepository(db *gorm.DB) repositories.JobRepository {
	return &jobRepository{db: db}
}

// Create creates a new processing job
func (r *jobRepository) Create(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID retrieves a processing job by ID
func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	var job entities.ProcessingJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListByMeeting retrieves all jobs for a meeting, newest first
func (r *jobRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ProcessingJob, error) {
	var jobs []*entities.ProcessingJob
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update saves a processing job
func (r *jobRepository) Update(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Save(job).Error
}
