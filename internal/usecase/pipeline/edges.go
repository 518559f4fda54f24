package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

// PruneEdges removes similarity edges that point at deleted thoughts
func PruneEdges(ctx context.Context, thoughts repositories.ThoughtRepository, deleted []uuid.UUID) error {
	if len(deleted) == 0 {
		return nil
	}
	gone := make(map[uuid.UUID]struct{}, len(deleted))
	for _, id := range deleted {
		gone[id] = struct{}{}
	}

	referencing, err := thoughts.ListReferencing(ctx, deleted)
	if err != nil {
		return fmt.Errorf("failed to list referencing thoughts: %w", err)
	}

	for _, t := range referencing {
		kept := make([]entities.SimilarThought, 0, len(t.SimilarThoughts))
		for _, edge := range t.SimilarThoughts {
			if _, ok := gone[edge.ThoughtID]; !ok {
				kept = append(kept, edge)
			}
		}
		if len(kept) == len(t.SimilarThoughts) {
			continue
		}
		if err := thoughts.UpdateSimilar(ctx, t.ID, kept); err != nil {
			return fmt.Errorf("failed to prune edges of thought %s: %w", t.ID, err)
		}
	}
	return nil
}
