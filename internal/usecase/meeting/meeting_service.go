package meeting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/pipeline"
)

const defaultListLimit = 50

// TranscriptKey is the object key an inline transcript is archived under
func TranscriptKey(meetingID uuid.UUID) string {
	return fmt.Sprintf("transcripts/%s.txt", meetingID)
}

// MeetingService handles meeting business logic
type MeetingService struct {
	meetingRepo repositories.MeetingRepository
	thoughtRepo repositories.ThoughtRepository
	tagRepo     repositories.TagRepository
	transcripts TranscriptStore
	logger      *zap.Logger
}

// NewMeetingService creates a new meeting service. transcripts may be nil
// when object storage is disabled.
func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	thoughtRepo repositories.ThoughtRepository,
	tagRepo repositories.TagRepository,
	transcripts TranscriptStore,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		meetingRepo: meetingRepo,
		thoughtRepo: thoughtRepo,
		tagRepo:     tagRepo,
		transcripts: transcripts,
		logger:      logger,
	}
}

// CreateMeeting ingests a transcript. Inline content is archived to object
// storage when available; a failed upload does not fail the ingestion.
func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	hasContent := strings.TrimSpace(input.Content) != ""
	hasKey := strings.TrimSpace(input.TranscriptKey) != ""
	if hasContent == hasKey {
		return nil, fmt.Errorf("%w: provide either content or transcript_key", entities.ErrInvalidInput)
	}

	var meeting *entities.Meeting
	if hasKey {
		if s.transcripts == nil {
			return nil, fmt.Errorf("%w: object storage is disabled", entities.ErrContentUnavailable)
		}
		content, err := s.transcripts.GetTranscript(ctx, input.TranscriptKey)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, entities.ErrEmptyContent
		}
		meeting = entities.NewMeeting(input.Title, content)
		meeting.TranscriptKey = input.TranscriptKey
	} else {
		meeting = entities.NewMeeting(input.Title, input.Content)
		s.archive(ctx, meeting)
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📝 Meeting ingested",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Int("content_length", len(meeting.Content)),
			zap.String("transcript_key", meeting.TranscriptKey),
		)
	}
	return meeting, nil
}

func (s *MeetingService) archive(ctx context.Context, meeting *entities.Meeting) {
	if s.transcripts == nil {
		return
	}
	key := TranscriptKey(meeting.ID)
	if err := s.transcripts.PutTranscript(ctx, key, meeting.Content); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to archive transcript",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
		return
	}
	meeting.TranscriptKey = key
}

// GetMeeting retrieves a meeting by ID
func (s *MeetingService) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	return s.meetingRepo.FindByID(ctx, meetingID)
}

// ListMeetings retrieves meetings, newest first
func (s *MeetingService) ListMeetings(ctx context.Context, limit, offset int) ([]*entities.Meeting, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.meetingRepo.List(ctx, limit, offset)
}

// DeleteMeeting removes a meeting and its thoughts. Non-merged thoughts
// release their tag counts first and edges pointing at them are dropped.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID uuid.UUID) error {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting.ProcessStatus == entities.ProcessStatusProcessing {
		return entities.ErrAlreadyProcessing
	}

	thoughts, err := s.thoughtRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to load thoughts: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(thoughts))
	for _, t := range thoughts {
		if !t.IsMerged && len(t.Tags) > 0 {
			if err := s.tagRepo.AdjustCounts(ctx, t.Tags, -1); err != nil {
				return fmt.Errorf("failed to release tags of thought %s: %w", t.ID, err)
			}
		}
		ids = append(ids, t.ID)
	}

	if len(ids) > 0 {
		if err := s.thoughtRepo.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete thoughts: %w", err)
		}
		if err := pipeline.PruneEdges(ctx, s.thoughtRepo, ids); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to prune similarity edges",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	// Caller-supplied keys stay; only the copy archived for this meeting goes
	if meeting.TranscriptKey == TranscriptKey(meeting.ID) && s.transcripts != nil {
		if err := s.transcripts.DeleteTranscript(ctx, meeting.TranscriptKey); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to delete archived transcript",
				zap.String("transcript_key", meeting.TranscriptKey),
				zap.Error(err),
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("🗑️ Meeting deleted",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("thoughts", len(ids)),
		)
	}
	return nil
}
