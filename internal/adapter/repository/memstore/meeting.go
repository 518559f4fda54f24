package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// MeetingRepository is the in-memory meeting repository
type MeetingRepository struct {
	s *Store
}

// Create stores a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	if _, exists := r.s.meetings[meeting.ID]; !exists {
		r.s.meetingOrder = append(r.s.meetingOrder, meeting.ID)
	}
	r.s.meetings[meeting.ID] = meeting.Clone()
	return nil
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	return m.Clone(), nil
}

// List returns meetings newest first
func (r *MeetingRepository) List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.Meeting, 0, len(r.s.meetingOrder))
	for i := len(r.s.meetingOrder) - 1; i >= 0; i-- {
		out = append(out, r.s.meetings[r.s.meetingOrder[i]].Clone())
	}
	if offset >= len(out) {
		return []*entities.Meeting{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a meeting
func (r *MeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.meetings[id]; !ok {
		return entities.ErrMeetingNotFound
	}
	delete(r.s.meetings, id)
	r.s.meetingOrder = removeID(r.s.meetingOrder, id)
	return nil
}

// TransitionStatus performs the status compare-and-swap under the store lock
func (r *MeetingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ProcessStatus, to entities.ProcessStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return false, entities.ErrMeetingNotFound
	}
	for _, status := range from {
		if m.ProcessStatus == status {
			m.ProcessStatus = to
			if to == entities.ProcessStatusProcessing {
				m.ProcessError = nil
			}
			m.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

// MarkCompleted records a successful run
func (r *MeetingRepository) MarkCompleted(ctx context.Context, id uuid.UUID, thoughtCount int, processedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	m.MarkAsCompleted(thoughtCount, processedAt)
	return nil
}

// MarkFailed records an aborted run
func (r *MeetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	m.MarkAsFailed(errMsg)
	return nil
}
