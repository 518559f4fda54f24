package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/repository/memstore"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/chunking"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/similarity"
)

type extractFunc func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error)

func (f extractFunc) Extract(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
	return f(ctx, chunk, vocabulary, version)
}

type embedFunc func(ctx context.Context, texts []string) ([][]float64, error)

func (f embedFunc) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return f(ctx, texts)
}

// numbered returns one distinct candidate per call
func numbered(calls *int32, tags ...string) extractFunc {
	return func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		n := atomic.AddInt32(calls, 1)
		return []entities.Candidate{{
			Content:     fmt.Sprintf("insight number %d", n),
			Tags:        tags,
			Confidence:  0.8,
			ContentType: "idea",
		}}, nil
	}
}

func testConfig() Config {
	return Config{
		ProcessChunking:    chunking.Options{Policy: chunking.PolicyBoundary, MaxSize: 60, Overlap: 0},
		ReprocessChunking:  chunking.Options{Policy: chunking.PolicySentence, MaxSize: 60},
		EmbeddingBatchSize: 2,
		RunTimeout:         10 * time.Second,
	}
}

func newTestService(t *testing.T, store *memstore.Store, thoughts repositories.ThoughtRepository, ext ThoughtExtractor, emb EmbeddingProvider) *service {
	t.Helper()
	if thoughts == nil {
		thoughts = store.Thoughts()
	}
	svc, err := NewService(
		store.Meetings(),
		thoughts,
		store.Tags(),
		store.Jobs(),
		ext,
		emb,
		similarity.NewEngine(similarity.DefaultThreshold, entities.MaxSimilarThoughts),
		testConfig(),
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	return svc.(*service)
}

// transcript produces several sentences so both chunkers split it
func transcript() string {
	return strings.Repeat("We agreed to ship the beta next week.\n", 6)
}

func seedMeeting(t *testing.T, store *memstore.Store, content string, status entities.ProcessStatus) *entities.Meeting {
	t.Helper()
	m := entities.NewMeeting("weekly sync", content)
	m.ProcessStatus = status
	require.NoError(t, store.Meetings().Create(context.Background(), m))
	return m
}

func seedTag(t *testing.T, store *memstore.Store, name string) *entities.Tag {
	t.Helper()
	tag := entities.NewTag(name, "")
	require.NoError(t, store.Tags().Upsert(context.Background(), tag))
	return tag
}

func chunkCount(t *testing.T, opts chunking.Options, content string) int {
	t.Helper()
	c, err := chunking.New(opts)
	require.NoError(t, err)
	chunks, err := c.Chunk(content)
	require.NoError(t, err)
	return len(chunks)
}

func TestStartProcessing_Completes(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	product := seedTag(t, store, "product")
	meeting := seedMeeting(t, store, transcript(), entities.ProcessStatusPending)

	var calls int32
	svc := newTestService(t, store, nil, numbered(&calls, "Product", "Unknown-Tag"), nil)

	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusRunning, job.Status)
	assert.Equal(t, entities.JobKindProcess, job.Kind)

	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusCompleted, got.ProcessStatus)
	assert.Nil(t, got.ProcessError)
	require.NotNil(t, got.ProcessedAt)

	thoughts, err := store.Thoughts().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	expected := chunkCount(t, testConfig().ProcessChunking, transcript())
	assert.Len(t, thoughts, expected)
	assert.Equal(t, len(thoughts), got.ThoughtCount)
	assert.Equal(t, int(atomic.LoadInt32(&calls)), expected)

	for _, th := range thoughts {
		assert.Equal(t, entities.ExtractionVersionV1, th.ExtractionVersion)
		assert.Empty(t, th.ContentType, "v2 fields are not copied on a v1 run")
		assert.Equal(t, []uuid.UUID{product.ID}, []uuid.UUID(th.Tags))
	}

	tags, err := store.Tags().FindByIDs(ctx, []uuid.UUID{product.ID})
	require.NoError(t, err)
	assert.Equal(t, expected, tags[0].ThoughtCount)

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusCompleted, finished.Status)
	assert.Equal(t, []string{"unknown-tag"}, []string(finished.UnresolvedTags))
	assert.Equal(t, expected, finished.Stats.Chunks)
	assert.Equal(t, expected, finished.Stats.Persisted)
	assert.NotNil(t, finished.CompletedAt)
}

func TestStartProcessing_LogsElapsedTime(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, transcript(), entities.ProcessStatusPending)

	var calls int32
	svc := newTestService(t, store, nil, numbered(&calls), nil)
	core, logs := observer.New(zapcore.InfoLevel)
	svc.logger = zap.New(core)

	_, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	done := logs.FilterMessage("✅ Processing run completed").All()
	require.Len(t, done, 1)
	elapsed, ok := done[0].ContextMap()["elapsed"].(time.Duration)
	require.True(t, ok)
	assert.Greater(t, elapsed, time.Duration(0))
}

func TestStartProcessing_RejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  entities.ProcessStatus
		wantErr error
	}{
		{"already processing", transcript(), entities.ProcessStatusProcessing, entities.ErrAlreadyProcessing},
		{"completed", transcript(), entities.ProcessStatusCompleted, entities.ErrInvalidTransition},
		{"empty content", "   \n ", entities.ProcessStatusPending, entities.ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memstore.New()
			meeting := seedMeeting(t, store, tt.content, tt.status)

			var calls int32
			svc := newTestService(t, store, nil, numbered(&calls), nil)

			_, err := svc.StartProcessing(ctx, meeting.ID)
			assert.ErrorIs(t, err, tt.wantErr)
			svc.waitIdle()

			got, err := store.Meetings().FindByID(ctx, meeting.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.ProcessStatus)

			jobs, err := store.Jobs().ListByMeeting(ctx, meeting.ID)
			require.NoError(t, err)
			assert.Empty(t, jobs)
			assert.Zero(t, atomic.LoadInt32(&calls))
		})
	}
}

func TestStartProcessing_UnknownMeeting(t *testing.T) {
	store := memstore.New()
	var calls int32
	svc := newTestService(t, store, nil, numbered(&calls), nil)

	_, err := svc.StartProcessing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestStartProcessing_ConcurrentTriggersOneWins(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "One short sentence.", entities.ProcessStatusPending)

	release := make(chan struct{})
	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		<-release
		return nil, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	const callers = 10
	var wins, busy int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartProcessing(ctx, meeting.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, entities.ErrAlreadyProcessing):
				atomic.AddInt32(&busy, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	close(release)
	svc.waitIdle()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(callers-1), busy)

	jobs, err := store.Jobs().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestStartProcessing_StrictAbortsOnChunkFailure(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, transcript(), entities.ProcessStatusPending)
	require.Greater(t, chunkCount(t, testConfig().ProcessChunking, transcript()), 2)

	var calls int32
	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 2 {
			return nil, &entities.ExtractionError{Reason: "rate limited"}
		}
		return []entities.Candidate{{Content: fmt.Sprintf("insight %d", n), Confidence: 0.5}}, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusFailed, got.ProcessStatus)
	require.NotNil(t, got.ProcessError)
	assert.Contains(t, *got.ProcessError, "chunk 2/")
	assert.Contains(t, *got.ProcessError, "rate limited")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "no chunk is extracted after the failure")

	// Extraction finishes before anything is written, so nothing was persisted
	count, err := store.Thoughts().CountByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusFailed, finished.Status)
	require.NotNil(t, finished.LastError)

	// A failed meeting may be processed again
	_, err = svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()
}

// failingThoughts rejects every Create after the first `allow`
type failingThoughts struct {
	repositories.ThoughtRepository
	allow   int32
	creates int32
}

func (f *failingThoughts) Create(ctx context.Context, thought *entities.Thought) error {
	if atomic.AddInt32(&f.creates, 1) > f.allow {
		return errors.New("disk full")
	}
	return f.ThoughtRepository.Create(ctx, thought)
}

func TestStartProcessing_PersistFailureKeepsCommittedThoughts(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		return []entities.Candidate{
			{Content: "first insight", Confidence: 0.9},
			{Content: "second insight", Confidence: 0.9},
			{Content: "third insight", Confidence: 0.9},
		}, nil
	})
	thoughts := &failingThoughts{ThoughtRepository: store.Thoughts(), allow: 1}
	svc := newTestService(t, store, thoughts, ext, nil)

	_, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusFailed, got.ProcessStatus)
	assert.Contains(t, *got.ProcessError, "disk full")

	count, err := store.Thoughts().CountByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStartProcessing_ExtractorPanicFailsMeeting(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		panic("boom")
	})
	svc := newTestService(t, store, nil, ext, nil)

	_, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusFailed, got.ProcessStatus)
	assert.Contains(t, *got.ProcessError, "panic recovered: boom")
}

func TestReprocess_TolerantSkipsFailedChunks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, transcript(), entities.ProcessStatusCompleted)
	chunks := chunkCount(t, testConfig().ReprocessChunking, transcript())
	require.Greater(t, chunks, 1)

	var calls int32
	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return nil, &entities.ExtractionError{Reason: "malformed response"}
		}
		assert.Equal(t, entities.ExtractionVersionV2, version)
		return []entities.Candidate{{
			Content:     fmt.Sprintf("insight %d", n),
			Confidence:  0.7,
			ContentType: "decision",
			Speaker:     "Ana",
		}}, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	job, err := svc.Reprocess(ctx, meeting.ID, entities.ReprocessOptions{})
	require.NoError(t, err)
	assert.Equal(t, entities.JobKindReprocess, job.Kind)
	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusCompleted, got.ProcessStatus)
	assert.Equal(t, chunks-1, got.ThoughtCount)

	thoughts, err := store.Thoughts().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, thoughts, chunks-1)
	for _, th := range thoughts {
		assert.Equal(t, entities.ExtractionVersionV2, th.ExtractionVersion)
		assert.Equal(t, "decision", th.ContentType)
		assert.Equal(t, "Ana", th.Speaker)
	}

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, finished.Stats.FailedChunks)
	assert.Equal(t, chunks, finished.Stats.Chunks)
}

func TestReprocess_PreservationMatrix(t *testing.T) {
	tests := []struct {
		name          string
		opts          entities.ReprocessOptions
		keepManual    bool
		keepMerged    bool
		wantTagCount  int
		wantPreserved int
		wantDeleted   int
	}{
		{"drop all", entities.ReprocessOptions{}, false, false, 0, 0, 3},
		{"keep manual", entities.ReprocessOptions{PreserveManual: true}, true, false, 1, 1, 2},
		{"keep merged", entities.ReprocessOptions{PreserveMerged: true}, false, true, 0, 1, 2},
		{"keep both", entities.ReprocessOptions{PreserveManual: true, PreserveMerged: true}, true, true, 1, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memstore.New()
			tag := seedTag(t, store, "risk")
			meeting := seedMeeting(t, store, "Nothing new here.", entities.ProcessStatusCompleted)

			manual := entities.NewThought(meeting.ID, "hand written note", entities.ExtractionVersionV1)
			merged := entities.NewThought(meeting.ID, "merged away", entities.ExtractionVersionV2)
			merged.IsMerged = true
			plain := entities.NewThought(meeting.ID, "extracted earlier", entities.ExtractionVersionV2)
			for _, th := range []*entities.Thought{manual, merged, plain} {
				th.AddTags([]uuid.UUID{tag.ID})
				require.NoError(t, store.Thoughts().Create(ctx, th))
			}
			// Only non-merged thoughts count towards the tag
			require.NoError(t, store.Tags().AdjustCounts(ctx, []uuid.UUID{tag.ID}, 2))

			// A thought in another meeting that points at the plain thought
			other := seedMeeting(t, store, "Other.", entities.ProcessStatusCompleted)
			neighbour := entities.NewThought(other.ID, "neighbour", entities.ExtractionVersionV2)
			neighbour.SimilarThoughts = []entities.SimilarThought{{ThoughtID: plain.ID, Similarity: 0.8, Status: entities.SimilarStatusPending}}
			require.NoError(t, store.Thoughts().Create(ctx, neighbour))

			ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
				return nil, nil
			})
			svc := newTestService(t, store, nil, ext, nil)

			job, err := svc.Reprocess(ctx, meeting.ID, tt.opts)
			require.NoError(t, err)
			svc.waitIdle()

			_, err = store.Thoughts().FindByID(ctx, manual.ID)
			assert.Equal(t, tt.keepManual, err == nil)
			_, err = store.Thoughts().FindByID(ctx, merged.ID)
			assert.Equal(t, tt.keepMerged, err == nil)
			_, err = store.Thoughts().FindByID(ctx, plain.ID)
			assert.ErrorIs(t, err, entities.ErrThoughtNotFound)

			tags, err := store.Tags().FindByIDs(ctx, []uuid.UUID{tag.ID})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTagCount, tags[0].ThoughtCount)

			n, err := store.Thoughts().FindByID(ctx, neighbour.ID)
			require.NoError(t, err)
			assert.Empty(t, n.SimilarThoughts)

			finished, err := svc.GetJob(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPreserved, finished.Stats.Preserved)
			assert.Equal(t, tt.wantDeleted, finished.Stats.Deleted)

			got, err := store.Meetings().FindByID(ctx, meeting.ID)
			require.NoError(t, err)
			assert.Equal(t, entities.ProcessStatusCompleted, got.ProcessStatus)
			// Preserved merged thoughts are still stored rows of the meeting
			assert.Equal(t, tt.wantPreserved, got.ThoughtCount)
		})
	}
}

func TestProcessing_DedupesCandidates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		return []entities.Candidate{
			{Content: "Ship the beta", Confidence: 0.6},
			{Content: "ship  the beta", Confidence: 0.9},
		}, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	_, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	thoughts, err := store.Thoughts().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, thoughts, 1)
	assert.Equal(t, 0.9, thoughts[0].Confidence)
}

func TestProcessing_EmbedsInBatches(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		return []entities.Candidate{
			{Content: "alpha launch", Confidence: 0.9},
			{Content: "beta pricing", Confidence: 0.9},
			{Content: "gamma hiring", Confidence: 0.9},
		}, nil
	})

	var mu sync.Mutex
	var batches []int
	emb := embedFunc(func(ctx context.Context, texts []string) ([][]float64, error) {
		mu.Lock()
		batches = append(batches, len(texts))
		mu.Unlock()
		out := make([][]float64, len(texts))
		for i := range texts {
			out[i] = []float64{float64(i + 1), 1}
		}
		return out, nil
	})
	svc := newTestService(t, store, nil, ext, emb)

	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	assert.Equal(t, []int{2, 1}, batches)

	thoughts, err := store.Thoughts().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	for _, th := range thoughts {
		assert.True(t, th.HasEmbedding())
	}

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, finished.Stats.Embedded)
	assert.Zero(t, finished.Stats.EmbeddingFailures)
}

func TestProcessing_EmbeddingFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		return []entities.Candidate{{Content: "alpha launch", Confidence: 0.9}}, nil
	})
	emb := embedFunc(func(ctx context.Context, texts []string) ([][]float64, error) {
		return nil, &entities.EmbeddingError{Reason: "provider unavailable"}
	})
	svc := newTestService(t, store, nil, ext, emb)

	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusCompleted, got.ProcessStatus)
	assert.Equal(t, 1, got.ThoughtCount)

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, finished.Stats.EmbeddingFailures)
	assert.Zero(t, finished.Stats.Embedded)
}

func TestProcessing_LinksSimilarThoughtsAcrossMeetings(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	earlier := seedMeeting(t, store, "Earlier.", entities.ProcessStatusCompleted)
	existing := entities.NewThought(earlier.ID, "review the quarterly budget", entities.ExtractionVersionV1)
	require.NoError(t, store.Thoughts().Create(ctx, existing))

	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)
	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		return []entities.Candidate{
			{Content: "review the quarterly budget", Confidence: 0.9},
			{Content: "hire two designers", Confidence: 0.9},
		}, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	thoughts, err := store.Thoughts().ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, thoughts, 2)

	budget := thoughts[0]
	require.Len(t, budget.SimilarThoughts, 1)
	assert.Equal(t, existing.ID, budget.SimilarThoughts[0].ThoughtID)
	assert.InDelta(t, 1.0, budget.SimilarThoughts[0].Similarity, 1e-9)
	assert.Equal(t, entities.SimilarStatusPending, budget.SimilarThoughts[0].Status)
	assert.Empty(t, thoughts[1].SimilarThoughts)

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, finished.Stats.SimilarEdges)
}

func TestShutdown_DrainsAndRejects(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)
	second := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)

	release := make(chan struct{})
	ext := extractFunc(func(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
		<-release
		return []entities.Candidate{{Content: "late insight", Confidence: 0.5}}, nil
	})
	svc := newTestService(t, store, nil, ext, nil)

	_, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, svc.Shutdown(short), "run still in flight")

	_, err = svc.StartProcessing(ctx, second.ID)
	assert.ErrorIs(t, err, ErrClosed)

	close(release)
	require.NoError(t, svc.Shutdown(ctx))

	got, err := store.Meetings().FindByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusCompleted, got.ProcessStatus)

	untouched, err := store.Meetings().FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusPending, untouched.ProcessStatus)
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	var calls int32
	svc := newTestService(t, store, nil, numbered(&calls), nil)

	_, err := svc.ListJobs(ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)

	meeting := seedMeeting(t, store, "Short.", entities.ProcessStatusPending)
	job, err := svc.StartProcessing(ctx, meeting.ID)
	require.NoError(t, err)
	svc.waitIdle()

	jobs, err := svc.ListJobs(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)

	_, err = svc.GetJob(ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrJobNotFound)
}
