package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// JobRepository defines persistence operations for pipeline runs
type JobRepository interface {
	Create(ctx context.Context, job *entities.ProcessingJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ProcessingJob, error)
	Update(ctx context.Context, job *entities.ProcessingJob) error
}
