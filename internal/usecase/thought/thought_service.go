package thought

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/similarity"
)

// ThoughtService handles thought business logic
type ThoughtService struct {
	meetingRepo repositories.MeetingRepository
	thoughtRepo repositories.ThoughtRepository
	tagRepo     repositories.TagRepository
	engine      *similarity.Engine
	logger      *zap.Logger
}

// NewThoughtService creates a new thought service
func NewThoughtService(
	meetingRepo repositories.MeetingRepository,
	thoughtRepo repositories.ThoughtRepository,
	tagRepo repositories.TagRepository,
	engine *similarity.Engine,
	logger *zap.Logger,
) *ThoughtService {
	if engine == nil {
		engine = similarity.NewEngine(similarity.DefaultThreshold, entities.MaxSimilarThoughts)
	}
	return &ThoughtService{
		meetingRepo: meetingRepo,
		thoughtRepo: thoughtRepo,
		tagRepo:     tagRepo,
		engine:      engine,
		logger:      logger,
	}
}

// GetThought retrieves a thought by ID
func (s *ThoughtService) GetThought(ctx context.Context, thoughtID uuid.UUID) (*entities.Thought, error) {
	return s.thoughtRepo.FindByID(ctx, thoughtID)
}

// ListByMeeting retrieves a meeting's thoughts
func (s *ThoughtService) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Thought, error) {
	if _, err := s.meetingRepo.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.thoughtRepo.ListByMeeting(ctx, meetingID)
}

// FindSimilarCandidates scores the thought against every active thought
func (s *ThoughtService) FindSimilarCandidates(ctx context.Context, thoughtID uuid.UUID) ([]entities.SimilarThought, error) {
	target, err := s.thoughtRepo.FindByID(ctx, thoughtID)
	if err != nil {
		return nil, err
	}
	corpus, err := s.thoughtRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return s.engine.FindSimilar(target, corpus), nil
}

// ToggleImportant flips the important flag
func (s *ThoughtService) ToggleImportant(ctx context.Context, thoughtID uuid.UUID) (*entities.Thought, error) {
	t, err := s.thoughtRepo.FindByID(ctx, thoughtID)
	if err != nil {
		return nil, err
	}
	t.IsImportant = !t.IsImportant
	if err := s.thoughtRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update thought: %w", err)
	}
	return t, nil
}

// MergeThoughts folds the merge thoughts into the primary.
//
// The primary gains the union of all tags, records the merged IDs in
// MergedFrom and marks its edges to them as merged. Each merged thought is
// flagged IsMerged and releases one count on every tag it carried. Tags the
// primary gains are not counted again, so a tag only carried by merged
// thoughts ends up under-counted.
func (s *ThoughtService) MergeThoughts(ctx context.Context, input MergeInput) (*entities.Thought, error) {
	mergeIDs, err := uniqueMergeIDs(input.PrimaryID, input.MergeIDs)
	if err != nil {
		return nil, err
	}
	if input.MergedContent != nil && strings.TrimSpace(*input.MergedContent) == "" {
		return nil, fmt.Errorf("%w: merged content is blank", entities.ErrInvalidInput)
	}

	primary, err := s.thoughtRepo.FindByID(ctx, input.PrimaryID)
	if err != nil {
		return nil, err
	}
	if primary.IsMerged {
		return nil, fmt.Errorf("%w: primary %s", entities.ErrAlreadyMerged, primary.ID)
	}

	merged, err := s.thoughtRepo.FindByIDs(ctx, mergeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load thoughts to merge: %w", err)
	}
	if len(merged) != len(mergeIDs) {
		return nil, fmt.Errorf("%w: some thoughts to merge do not exist", entities.ErrThoughtNotFound)
	}
	for _, m := range merged {
		if m.IsMerged {
			return nil, fmt.Errorf("%w: %s", entities.ErrAlreadyMerged, m.ID)
		}
	}

	if input.MergedContent != nil {
		primary.Content = *input.MergedContent
	}
	for _, m := range merged {
		primary.AddTags(m.Tags)
	}
	primary.MergedFrom = append(primary.MergedFrom, mergeIDs...)
	for _, id := range mergeIDs {
		primary.SetSimilarStatus(id, entities.SimilarStatusMerged)
	}

	if err := s.thoughtRepo.Update(ctx, primary); err != nil {
		return nil, fmt.Errorf("failed to update primary thought: %w", err)
	}

	for _, m := range merged {
		m.IsMerged = true
		if err := s.thoughtRepo.Update(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to retire thought %s: %w", m.ID, err)
		}
		if len(m.Tags) > 0 {
			if err := s.tagRepo.AdjustCounts(ctx, m.Tags, -1); err != nil {
				return nil, fmt.Errorf("failed to release tags of thought %s: %w", m.ID, err)
			}
		}
	}

	s.resolveReferences(ctx, primary.ID, mergeIDs)

	if s.logger != nil {
		s.logger.Info("🔗 Thoughts merged",
			zap.String("primary_id", primary.ID.String()),
			zap.Int("merged", len(mergeIDs)),
			zap.Int("tags", len(primary.Tags)),
		)
	}

	return primary, nil
}

// resolveReferences marks pending edges from other thoughts to the retired
// thoughts as merged. It is best effort: the merge itself already happened.
func (s *ThoughtService) resolveReferences(ctx context.Context, primaryID uuid.UUID, mergeIDs []uuid.UUID) {
	referencing, err := s.thoughtRepo.ListReferencing(ctx, mergeIDs)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to list edges to merged thoughts", zap.Error(err))
		}
		return
	}

	for _, t := range referencing {
		if t.ID == primaryID {
			continue
		}
		changed := false
		for i := range t.SimilarThoughts {
			edge := &t.SimilarThoughts[i]
			if edge.Status != entities.SimilarStatusPending || !containsID(mergeIDs, edge.ThoughtID) {
				continue
			}
			edge.Status = entities.SimilarStatusMerged
			changed = true
		}
		if !changed {
			continue
		}
		if err := s.thoughtRepo.UpdateSimilar(ctx, t.ID, t.SimilarThoughts); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to resolve edge to merged thought",
				zap.String("thought_id", t.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// DismissSimilar marks the edge from thoughtID to similarThoughtID as
// dismissed. A missing edge is not an error.
func (s *ThoughtService) DismissSimilar(ctx context.Context, thoughtID, similarThoughtID uuid.UUID) (*entities.Thought, error) {
	t, err := s.thoughtRepo.FindByID(ctx, thoughtID)
	if err != nil {
		return nil, err
	}
	if !t.SetSimilarStatus(similarThoughtID, entities.SimilarStatusDismissed) {
		return t, nil
	}
	if err := s.thoughtRepo.UpdateSimilar(ctx, t.ID, t.SimilarThoughts); err != nil {
		return nil, fmt.Errorf("failed to update similarity edges: %w", err)
	}
	return t, nil
}

func uniqueMergeIDs(primaryID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", entities.ErrInvalidInput)
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == primaryID {
			return nil, fmt.Errorf("%w: a thought cannot be merged into itself", entities.ErrInvalidInput)
		}
		if !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
