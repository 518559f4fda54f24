package meeting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/repository/memstore"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

type fakeTranscripts struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{objects: make(map[string]string)}
}

func (f *fakeTranscripts) PutTranscript(_ context.Context, key string, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = content
	return nil
}

func (f *fakeTranscripts) GetTranscript(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", entities.ErrContentUnavailable, key)
	}
	return content, nil
}

func (f *fakeTranscripts) DeleteTranscript(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func TestCreateMeeting_ArchivesInlineContent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeTranscripts()
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), objects, zaptest.NewLogger(t))

	m, err := svc.CreateMeeting(ctx, CreateMeetingInput{Title: "standup", Content: "We shipped it."})
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusPending, m.ProcessStatus)
	assert.Equal(t, TranscriptKey(m.ID), m.TranscriptKey)
	assert.Equal(t, "We shipped it.", objects.objects[m.TranscriptKey])

	stored, err := svc.GetMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.TranscriptKey, stored.TranscriptKey)
}

func TestCreateMeeting_ArchiveFailureIsNotFatal(t *testing.T) {
	store := memstore.New()
	objects := newFakeTranscripts()
	objects.putErr = errors.New("bucket unreachable")
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), objects, zaptest.NewLogger(t))

	m, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{Content: "We shipped it."})
	require.NoError(t, err)
	assert.Empty(t, m.TranscriptKey)
}

func TestCreateMeeting_FromTranscriptKey(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeTranscripts()
	objects.objects["uploads/retro.txt"] = "Retro notes."
	objects.objects["uploads/blank.txt"] = "  \n"
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), objects, zaptest.NewLogger(t))

	m, err := svc.CreateMeeting(ctx, CreateMeetingInput{Title: "retro", TranscriptKey: "uploads/retro.txt"})
	require.NoError(t, err)
	assert.Equal(t, "Retro notes.", m.Content)
	assert.Equal(t, "uploads/retro.txt", m.TranscriptKey)

	_, err = svc.CreateMeeting(ctx, CreateMeetingInput{TranscriptKey: "uploads/missing.txt"})
	assert.ErrorIs(t, err, entities.ErrContentUnavailable)

	_, err = svc.CreateMeeting(ctx, CreateMeetingInput{TranscriptKey: "uploads/blank.txt"})
	assert.ErrorIs(t, err, entities.ErrEmptyContent)
}

func TestCreateMeeting_InputErrors(t *testing.T) {
	store := memstore.New()

	tests := []struct {
		name        string
		transcripts TranscriptStore
		input       CreateMeetingInput
		wantErr     error
	}{
		{"nothing", newFakeTranscripts(), CreateMeetingInput{Title: "x"}, entities.ErrInvalidInput},
		{"blank content", newFakeTranscripts(), CreateMeetingInput{Content: "   "}, entities.ErrInvalidInput},
		{"both", newFakeTranscripts(), CreateMeetingInput{Content: "a", TranscriptKey: "k"}, entities.ErrInvalidInput},
		{"key without storage", nil, CreateMeetingInput{TranscriptKey: "k"}, entities.ErrContentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), tt.transcripts, nil)
			_, err := svc.CreateMeeting(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	list, err := store.Meetings().List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateMeeting_WithoutStorage(t *testing.T) {
	store := memstore.New()
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), nil, nil)

	m, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{Content: "Inline only."})
	require.NoError(t, err)
	assert.Empty(t, m.TranscriptKey)
}

func TestDeleteMeeting_Cascades(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeTranscripts()
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), objects, zaptest.NewLogger(t))

	tag := entities.NewTag("ops", "")
	require.NoError(t, store.Tags().Upsert(ctx, tag))

	m, err := svc.CreateMeeting(ctx, CreateMeetingInput{Content: "Ops review."})
	require.NoError(t, err)
	other, err := svc.CreateMeeting(ctx, CreateMeetingInput{Content: "Other."})
	require.NoError(t, err)

	active := entities.NewThought(m.ID, "rotate on-call", entities.ExtractionVersionV1)
	active.AddTags([]uuid.UUID{tag.ID})
	retired := entities.NewThought(m.ID, "on-call rotation", entities.ExtractionVersionV1)
	retired.AddTags([]uuid.UUID{tag.ID})
	retired.IsMerged = true
	survivor := entities.NewThought(other.ID, "on-call schedule", entities.ExtractionVersionV1)
	survivor.AddTags([]uuid.UUID{tag.ID})
	survivor.SimilarThoughts = []entities.SimilarThought{{ThoughtID: active.ID, Similarity: 0.7, Status: entities.SimilarStatusPending}}
	for _, th := range []*entities.Thought{active, retired, survivor} {
		require.NoError(t, store.Thoughts().Create(ctx, th))
	}
	require.NoError(t, store.Tags().AdjustCounts(ctx, []uuid.UUID{tag.ID}, 2))

	require.NoError(t, svc.DeleteMeeting(ctx, m.ID))

	_, err = svc.GetMeeting(ctx, m.ID)
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)

	left, err := store.Thoughts().ListByMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	tags, err := store.Tags().FindByIDs(ctx, []uuid.UUID{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, tags[0].ThoughtCount)

	s, err := store.Thoughts().FindByID(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Empty(t, s.SimilarThoughts)

	_, archived := objects.objects[TranscriptKey(m.ID)]
	assert.False(t, archived)
}

func TestDeleteMeeting_KeepsSourceTranscript(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeTranscripts()
	objects.objects["uploads/retro.txt"] = "Retro notes."
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), objects, zaptest.NewLogger(t))

	first, err := svc.CreateMeeting(ctx, CreateMeetingInput{Title: "retro", TranscriptKey: "uploads/retro.txt"})
	require.NoError(t, err)
	second, err := svc.CreateMeeting(ctx, CreateMeetingInput{Title: "retro again", TranscriptKey: "uploads/retro.txt"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMeeting(ctx, first.ID))

	content, err := objects.GetTranscript(ctx, second.TranscriptKey)
	require.NoError(t, err)
	assert.Equal(t, "Retro notes.", content)
}

func TestDeleteMeeting_RejectedWhileProcessing(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), nil, nil)

	m := entities.NewMeeting("busy", "Content.")
	m.ProcessStatus = entities.ProcessStatusProcessing
	require.NoError(t, store.Meetings().Create(ctx, m))

	assert.ErrorIs(t, svc.DeleteMeeting(ctx, m.ID), entities.ErrAlreadyProcessing)
	_, err := svc.GetMeeting(ctx, m.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteMeeting(ctx, uuid.New()), entities.ErrMeetingNotFound)
}

func TestListMeetings(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewMeetingService(store.Meetings(), store.Thoughts(), store.Tags(), nil, nil)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		m, err := svc.CreateMeeting(ctx, CreateMeetingInput{Content: fmt.Sprintf("meeting %d", i)})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	all, err := svc.ListMeetings(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	page, err := svc.ListMeetings(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}
