// Package memstore keeps meetings, thoughts, tags and jobs in process memory.
// It backs DB_DRIVER=memory for local runs and serves as the persistence double in tests.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

var (
	_ repositories.MeetingRepository = (*MeetingRepository)(nil)
	_ repositories.ThoughtRepository = (*ThoughtRepository)(nil)
	_ repositories.TagRepository     = (*TagRepository)(nil)
	_ repositories.JobRepository     = (*JobRepository)(nil)
)

// Store is the shared in-memory state behind the repositories
type Store struct {
	mu sync.RWMutex

	meetings     map[uuid.UUID]*entities.Meeting
	meetingOrder []uuid.UUID

	thoughts     map[uuid.UUID]*entities.Thought
	thoughtOrder []uuid.UUID

	tags     map[uuid.UUID]*entities.Tag
	tagOrder []uuid.UUID

	jobs     map[uuid.UUID]*entities.ProcessingJob
	jobOrder []uuid.UUID
}

// New creates an empty store
func New() *Store {
	return &Store{
		meetings: make(map[uuid.UUID]*entities.Meeting),
		thoughts: make(map[uuid.UUID]*entities.Thought),
		tags:     make(map[uuid.UUID]*entities.Tag),
		jobs:     make(map[uuid.UUID]*entities.ProcessingJob),
	}
}

// Meetings returns the meeting repository view of the store
func (s *Store) Meetings() *MeetingRepository {
	return &MeetingRepository{s: s}
}

// Thoughts returns the thought repository view of the store
func (s *Store) Thoughts() *ThoughtRepository {
	return &ThoughtRepository{s: s}
}

// Tags returns the tag repository view of the store
func (s *Store) Tags() *TagRepository {
	return &TagRepository{s: s}
}

// Jobs returns the job repository view of the store
func (s *Store) Jobs() *JobRepository {
	return &JobRepository{s: s}
}

func removeID(order []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
