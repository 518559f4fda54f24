package thought

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// Service defines the thought use cases: queries, flags and merge resolution
type Service interface {
	// GetThought retrieves a thought by ID
	GetThought(ctx context.Context, thoughtID uuid.UUID) (*entities.Thought, error)

	// ListByMeeting retrieves a meeting's thoughts
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Thought, error)

	// FindSimilarCandidates scores a thought against the current active corpus without persisting
	FindSimilarCandidates(ctx context.Context, thoughtID uuid.UUID) ([]entities.SimilarThought, error)

	// ToggleImportant flips the important flag
	ToggleImportant(ctx context.Context, thoughtID uuid.UUID) (*entities.Thought, error)

	// MergeThoughts folds mergeIDs into the primary thought
	MergeThoughts(ctx context.Context, input MergeInput) (*entities.Thought, error)

	// DismissSimilar marks one similarity edge as dismissed
	DismissSimilar(ctx context.Context, thoughtID, similarThoughtID uuid.UUID) (*entities.Thought, error)
}

// MergeInput represents a merge request
type MergeInput struct {
	PrimaryID     uuid.UUID
	MergeIDs      []uuid.UUID
	MergedContent *string
}

// Ensure ThoughtService implements Service interface
var _ Service = (*ThoughtService)(nil)
