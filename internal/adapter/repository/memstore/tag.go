package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// TagRepository is the in-memory tag repository
type TagRepository struct {
	s *Store
}

// List returns all tags in insertion order
func (r *TagRepository) List(ctx context.Context) ([]*entities.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.Tag, 0, len(r.s.tagOrder))
	for _, id := range r.s.tagOrder {
		out = append(out, r.s.tags[id].Clone())
	}
	return out, nil
}

// FindByIDs returns the tags that exist among ids
func (r *TagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// Upsert inserts a tag or refreshes the display name of the tag with the same name
func (r *TagRepository) Upsert(ctx context.Context, tag *entities.Tag) error {
	if tag == nil || tag.Name == "" {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tags {
		if existing.Name == tag.Name {
			existing.DisplayName = tag.DisplayName
			existing.UpdatedAt = time.Now()
			tag.ID = existing.ID
			tag.ThoughtCount = existing.ThoughtCount
			return nil
		}
	}
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	r.s.tags[tag.ID] = tag.Clone()
	r.s.tagOrder = append(r.s.tagOrder, tag.ID)
	return nil
}

// AdjustCounts adds delta to every tag in ids; unknown ids are ignored
func (r *TagRepository) AdjustCounts(ctx context.Context, ids []uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok {
			t.ThoughtCount += delta
			t.UpdatedAt = time.Now()
		}
	}
	return nil
}
