package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meetings
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// TransitionStatus atomically moves the meeting to `to` if its current status
	// is one of `from`. Returns false when another caller got there first.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ProcessStatus, to entities.ProcessStatus) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, thoughtCount int, processedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
