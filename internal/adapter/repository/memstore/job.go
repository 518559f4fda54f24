package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// JobRepository is the in-memory processing job repository
type JobRepository struct {
	s *Store
}

// Create stores a new job
func (r *JobRepository) Create(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if _, exists := r.s.jobs[job.ID]; !exists {
		r.s.jobOrder = append(r.s.jobOrder, job.ID)
	}
	r.s.jobs[job.ID] = job.Clone()
	return nil
}

// FindByID retrieves a job by ID
func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, entities.ErrJobNotFound
	}
	return j.Clone(), nil
}

// ListByMeeting returns a meeting's jobs newest first
func (r *JobRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ProcessingJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entities.ProcessingJob, 0)
	for i := len(r.s.jobOrder) - 1; i >= 0; i-- {
		j := r.s.jobs[r.s.jobOrder[i]]
		if j.MeetingID == meetingID {
			out = append(out, j.Clone())
		}
	}
	return out, nil
}

// Update replaces a stored job
func (r *JobRepository) Update(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return entities.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[job.ID]; !ok {
		return entities.ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	r.s.jobs[job.ID] = job.Clone()
	return nil
}
