package presenter

import (
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/tag"
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/thought"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// ToThoughtResponse converts a Thought entity to ThoughtResponse DTO
func ToThoughtResponse(t *entities.Thought) *thought.ThoughtResponse {
	if t == nil {
		return nil
	}

	return &thought.ThoughtResponse{
		ID:                t.ID.String(),
		MeetingID:         t.MeetingID.String(),
		Content:           t.Content,
		OriginalSegment:   t.OriginalSegment,
		Tags:              idStrings(t.Tags),
		Confidence:        t.Confidence,
		HasEmbedding:      t.HasEmbedding(),
		ExtractionVersion: t.ExtractionVersion,
		ContentType:       t.ContentType,
		Speaker:           t.Speaker,
		Context:           t.Context,
		SimilarThoughts:   ToSimilarResponses(t.SimilarThoughts),
		IsImportant:       t.IsImportant,
		MergedFrom:        idStrings(t.MergedFrom),
		IsMerged:          t.IsMerged,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// ToThoughtListResponse converts a slice of thoughts
func ToThoughtListResponse(thoughts []*entities.Thought) []*thought.ThoughtResponse {
	out := make([]*thought.ThoughtResponse, len(thoughts))
	for i, t := range thoughts {
		out[i] = ToThoughtResponse(t)
	}
	return out
}

// ToSimilarResponses converts similarity edges
func ToSimilarResponses(edges []entities.SimilarThought) []*thought.SimilarThoughtResponse {
	out := make([]*thought.SimilarThoughtResponse, len(edges))
	for i, e := range edges {
		out[i] = &thought.SimilarThoughtResponse{
			ThoughtID:  e.ThoughtID.String(),
			Similarity: e.Similarity,
			Status:     string(e.Status),
		}
	}
	return out
}

// ToTagListResponse converts the tag vocabulary
func ToTagListResponse(tags []*entities.Tag) []*tag.TagResponse {
	out := make([]*tag.TagResponse, len(tags))
	for i, t := range tags {
		out[i] = &tag.TagResponse{
			ID:           t.ID.String(),
			Name:         t.Name,
			DisplayName:  t.DisplayName,
			ThoughtCount: t.ThoughtCount,
		}
	}
	return out
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
