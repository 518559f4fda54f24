package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// TagRepository defines persistence operations for the tag vocabulary
type TagRepository interface {
	List(ctx context.Context) ([]*entities.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error)
	// Upsert inserts the tag or refreshes the display name of an existing tag with the same name
	Upsert(ctx context.Context, tag *entities.Tag) error
	// AdjustCounts adds delta to thought_count of every tag in ids
	AdjustCounts(ctx context.Context, ids []uuid.UUID, delta int) error
}
