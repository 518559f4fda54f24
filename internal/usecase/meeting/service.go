package meeting

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// Service defines the meeting use cases: ingestion, lookup and deletion
type Service interface {
	// CreateMeeting ingests a transcript, inline or from object storage
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error)

	// GetMeeting retrieves a meeting by ID
	GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)

	// ListMeetings retrieves meetings, newest first
	ListMeetings(ctx context.Context, limit, offset int) ([]*entities.Meeting, error)

	// DeleteMeeting removes a meeting and its thoughts, releasing their tag counts
	DeleteMeeting(ctx context.Context, meetingID uuid.UUID) error
}

// CreateMeetingInput represents input for ingesting a meeting.
// Exactly one of Content and TranscriptKey is set.
type CreateMeetingInput struct {
	Title         string
	Content       string
	TranscriptKey string
}

// TranscriptStore archives and loads raw transcripts
type TranscriptStore interface {
	PutTranscript(ctx context.Context, key string, content string) error
	GetTranscript(ctx context.Context, key string) (string, error)
	DeleteTranscript(ctx context.Context, key string) error
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)
