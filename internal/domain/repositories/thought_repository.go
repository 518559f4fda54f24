package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// ThoughtRepository defines persistence operations for thoughts
type ThoughtRepository interface {
	Create(ctx context.Context, thought *entities.Thought) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Thought, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Thought, error)
	CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int, error)

	// ListActive returns every thought not yet merged away
	ListActive(ctx context.Context) ([]*entities.Thought, error)
	// ListReferencing returns active thoughts holding a similarity edge to any of ids
	ListReferencing(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error)

	Update(ctx context.Context, thought *entities.Thought) error
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float64) error
	UpdateSimilar(ctx context.Context, id uuid.UUID, similar []entities.SimilarThought) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}
