package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// ThoughtRepository is the in-memory thought repository
type ThoughtRepository struct {
	s *Store
}

// Create stores a new thought
func (r *ThoughtRepository) Create(ctx context.Context, thought *entities.Thought) error {
	if thought == nil {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if thought.ID == uuid.Nil {
		thought.ID = uuid.New()
	}
	if _, exists := r.s.thoughts[thought.ID]; !exists {
		r.s.thoughtOrder = append(r.s.thoughtOrder, thought.ID)
	}
	r.s.thoughts[thought.ID] = thought.Clone()
	return nil
}

// FindByID retrieves a thought by ID
func (r *ThoughtRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Thought, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.thoughts[id]
	if !ok {
		return nil, entities.ErrThoughtNotFound
	}
	return t.Clone(), nil
}

// FindByIDs returns the thoughts that exist among ids, in the order given
func (r *ThoughtRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.Thought, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.s.thoughts[id]; ok {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// ListByMeeting returns a meeting's thoughts in insertion order
func (r *ThoughtRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Thought, error) {
	return r.filter(func(t *entities.Thought) bool { return t.MeetingID == meetingID }), nil
}

// CountByMeeting counts a meeting's thoughts
func (r *ThoughtRepository) CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int, error) {
	return len(r.filter(func(t *entities.Thought) bool { return t.MeetingID == meetingID })), nil
}

// ListActive returns all non-merged thoughts
func (r *ThoughtRepository) ListActive(ctx context.Context) ([]*entities.Thought, error) {
	return r.filter(func(t *entities.Thought) bool { return !t.IsMerged }), nil
}

// ListReferencing returns active thoughts with an edge to any of ids
func (r *ThoughtRepository) ListReferencing(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error) {
	targets := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	return r.filter(func(t *entities.Thought) bool {
		if t.IsMerged {
			return false
		}
		for _, s := range t.SimilarThoughts {
			if _, ok := targets[s.ThoughtID]; ok {
				return true
			}
		}
		return false
	}), nil
}

// Update replaces a stored thought
func (r *ThoughtRepository) Update(ctx context.Context, thought *entities.Thought) error {
	if thought == nil {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.thoughts[thought.ID]; !ok {
		return entities.ErrThoughtNotFound
	}
	thought.UpdatedAt = time.Now()
	r.s.thoughts[thought.ID] = thought.Clone()
	return nil
}

// UpdateEmbedding attaches an embedding vector
func (r *ThoughtRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.thoughts[id]
	if !ok {
		return entities.ErrThoughtNotFound
	}
	t.Embedding = append([]float64{}, embedding...)
	t.UpdatedAt = time.Now()
	return nil
}

// UpdateSimilar replaces the similarity edges of a thought
func (r *ThoughtRepository) UpdateSimilar(ctx context.Context, id uuid.UUID, similar []entities.SimilarThought) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.thoughts[id]
	if !ok {
		return entities.ErrThoughtNotFound
	}
	t.SimilarThoughts = append([]entities.SimilarThought{}, similar...)
	t.UpdatedAt = time.Now()
	return nil
}

// DeleteByIDs removes thoughts, ignoring ids that do not exist
func (r *ThoughtRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.s.thoughts[id]; !ok {
			continue
		}
		delete(r.s.thoughts, id)
		r.s.thoughtOrder = removeID(r.s.thoughtOrder, id)
	}
	return nil
}

func (r *ThoughtRepository) filter(keep func(*entities.Thought) bool) []*entities.Thought {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.Thought, 0)
	for _, id := range r.s.thoughtOrder {
		t := r.s.thoughts[id]
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
