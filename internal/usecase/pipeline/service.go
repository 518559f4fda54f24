// Package pipeline turns meeting transcripts into persisted thoughts.
//
// A run is triggered by StartProcessing or Reprocess, which flip the meeting
// to processing with an atomic status transition, record a ProcessingJob and
// return immediately. The run itself executes detached: chunk, extract per
// chunk, dedupe, resolve tags, persist, embed, scan for similar thoughts and
// finally mark the meeting completed or failed. Callers poll the job or the
// meeting for the outcome. There is no automatic retry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/chunking"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/similarity"
)

// ErrClosed is returned by triggers after Shutdown began
var ErrClosed = errors.New("pipeline is shutting down")

// DefaultEmbeddingBatchSize is the number of texts sent per embedding call
const DefaultEmbeddingBatchSize = 10

// ThoughtExtractor returns candidate thoughts for one chunk of transcript
type ThoughtExtractor interface {
	Extract(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error)
}

// EmbeddingProvider maps texts to vectors, one per text in order
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// FailurePolicy decides what a per-chunk extraction failure does to the run
type FailurePolicy string

const (
	// FailurePolicyStrict aborts the run on the first failed chunk
	FailurePolicyStrict FailurePolicy = "strict"
	// FailurePolicyTolerant logs the failed chunk and continues without it
	FailurePolicyTolerant FailurePolicy = "tolerant"
)

// Mode is the configuration of one entry point
type Mode struct {
	Kind    entities.JobKind
	Chunker *chunking.Chunker
	Policy  FailurePolicy
	Version int
}

// Config holds pipeline tuning
type Config struct {
	ProcessChunking    chunking.Options
	ReprocessChunking  chunking.Options
	EmbeddingBatchSize int
	RunTimeout         time.Duration
}

// DefaultConfig returns the chunking and batching defaults
func DefaultConfig() Config {
	return Config{
		ProcessChunking:    chunking.Options{Policy: chunking.PolicyBoundary, MaxSize: 3000, Overlap: 200},
		ReprocessChunking:  chunking.Options{Policy: chunking.PolicySentence, MaxSize: 2000},
		EmbeddingBatchSize: DefaultEmbeddingBatchSize,
	}
}

// Service defines the meeting processing operations
type Service interface {
	// StartProcessing runs the strict v1 pipeline on a pending or failed meeting
	StartProcessing(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingJob, error)
	// Reprocess resets any non-processing meeting and runs the tolerant v2 pipeline
	Reprocess(ctx context.Context, meetingID uuid.UUID, opts entities.ReprocessOptions) (*entities.ProcessingJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*entities.ProcessingJob, error)
	ListJobs(ctx context.Context, meetingID uuid.UUID) ([]*entities.ProcessingJob, error)
	// Shutdown stops accepting triggers and waits for in-flight runs until ctx expires
	Shutdown(ctx context.Context) error
}

type service struct {
	meetingRepo repositories.MeetingRepository
	thoughtRepo repositories.ThoughtRepository
	tagRepo     repositories.TagRepository
	jobRepo     repositories.JobRepository
	extractor   ThoughtExtractor
	embedder    EmbeddingProvider
	engine      *similarity.Engine
	logger      *zap.Logger

	processMode   Mode
	reprocessMode Mode
	batchSize     int
	runTimeout    time.Duration

	mu      sync.Mutex
	closed  bool
	running sync.WaitGroup
}

// NewService constructs the pipeline. embedder may be nil, in which case
// similarity is lexical only.
func NewService(
	meetingRepo repositories.MeetingRepository,
	thoughtRepo repositories.ThoughtRepository,
	tagRepo repositories.TagRepository,
	jobRepo repositories.JobRepository,
	extractor ThoughtExtractor,
	embedder EmbeddingProvider,
	engine *similarity.Engine,
	cfg Config,
	logger *zap.Logger,
) (Service, error) {
	if extractor == nil {
		return nil, fmt.Errorf("thought extractor is required")
	}
	if engine == nil {
		engine = similarity.NewEngine(similarity.DefaultThreshold, entities.MaxSimilarThoughts)
	}

	processChunker, err := chunking.New(cfg.ProcessChunking)
	if err != nil {
		return nil, fmt.Errorf("process chunking: %w", err)
	}
	reprocessChunker, err := chunking.New(cfg.ReprocessChunking)
	if err != nil {
		return nil, fmt.Errorf("reprocess chunking: %w", err)
	}

	batchSize := cfg.EmbeddingBatchSize
	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}

	return &service{
		meetingRepo: meetingRepo,
		thoughtRepo: thoughtRepo,
		tagRepo:     tagRepo,
		jobRepo:     jobRepo,
		extractor:   extractor,
		embedder:    embedder,
		engine:      engine,
		logger:      logger,
		processMode: Mode{
			Kind:    entities.JobKindProcess,
			Chunker: processChunker,
			Policy:  FailurePolicyStrict,
			Version: entities.ExtractionVersionV1,
		},
		reprocessMode: Mode{
			Kind:    entities.JobKindReprocess,
			Chunker: reprocessChunker,
			Policy:  FailurePolicyTolerant,
			Version: entities.ExtractionVersionV2,
		},
		batchSize:  batchSize,
		runTimeout: cfg.RunTimeout,
	}, nil
}

// StartProcessing starts a strict v1 run
func (s *service) StartProcessing(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingJob, error) {
	from := []entities.ProcessStatus{entities.ProcessStatusPending, entities.ProcessStatusFailed}
	return s.trigger(ctx, meetingID, s.processMode, entities.ReprocessOptions{}, from)
}

// Reprocess starts a tolerant v2 run that first drops unpreserved thoughts
func (s *service) Reprocess(ctx context.Context, meetingID uuid.UUID, opts entities.ReprocessOptions) (*entities.ProcessingJob, error) {
	from := []entities.ProcessStatus{
		entities.ProcessStatusPending,
		entities.ProcessStatusCompleted,
		entities.ProcessStatusFailed,
	}
	return s.trigger(ctx, meetingID, s.reprocessMode, opts, from)
}

func (s *service) trigger(ctx context.Context, meetingID uuid.UUID, mode Mode, opts entities.ReprocessOptions, from []entities.ProcessStatus) (*entities.ProcessingJob, error) {
	// Input errors are rejected before any state changes
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(meeting.Content) == "" {
		return nil, entities.ErrEmptyContent
	}
	if meeting.ProcessStatus == entities.ProcessStatusProcessing {
		return nil, entities.ErrAlreadyProcessing
	}
	if !statusIn(meeting.ProcessStatus, from) {
		return nil, fmt.Errorf("%w: cannot %s a %s meeting", entities.ErrInvalidTransition, mode.Kind, meeting.ProcessStatus)
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	launched := false
	defer func() {
		if !launched {
			s.running.Done()
		}
	}()

	// Compare-and-swap: only one concurrent trigger wins
	ok, err := s.meetingRepo.TransitionStatus(ctx, meetingID, from, entities.ProcessStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("failed to claim meeting: %w", err)
	}
	if !ok {
		if s.logger != nil {
			s.logger.Info("⏭️ Meeting already claimed by another run",
				zap.String("meeting_id", meetingID.String()),
			)
		}
		return nil, entities.ErrAlreadyProcessing
	}

	job := entities.NewProcessingJob(meetingID, mode.Kind, opts)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		msg := fmt.Sprintf("failed to create processing job: %v", err)
		if markErr := s.meetingRepo.MarkFailed(context.Background(), meetingID, msg); markErr != nil && s.logger != nil {
			s.logger.Error("❌ Failed to release meeting after job creation error",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(markErr),
			)
		}
		return nil, fmt.Errorf("failed to create processing job: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🚀 Processing run started",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", meetingID.String()),
			zap.String("kind", string(mode.Kind)),
			zap.String("policy", string(mode.Policy)),
		)
	}

	launched = true
	go s.run(job.Clone(), meeting.Content, mode)

	return job, nil
}

// GetJob returns a job by ID
func (s *service) GetJob(ctx context.Context, jobID uuid.UUID) (*entities.ProcessingJob, error) {
	return s.jobRepo.FindByID(ctx, jobID)
}

// ListJobs returns a meeting's jobs, newest first
func (s *service) ListJobs(ctx context.Context, meetingID uuid.UUID) ([]*entities.ProcessingJob, error) {
	if _, err := s.meetingRepo.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.jobRepo.ListByMeeting(ctx, meetingID)
}

// Shutdown stops accepting triggers and drains in-flight runs.
// Runs are never cancelled; if ctx expires first they keep going in the background.
func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("🛑 Draining processing runs...")
	}

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		if s.logger != nil {
			s.logger.Info("✅ Processing runs drained")
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("processing runs still in flight: %w", ctx.Err())
	}
}

// acquire registers a run unless the service is closed
func (s *service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.running.Add(1)
	return nil
}

// waitIdle blocks until no run is in flight
func (s *service) waitIdle() {
	s.running.Wait()
}

func statusIn(status entities.ProcessStatus, set []entities.ProcessStatus) bool {
	for _, st := range set {
		if st == status {
			return true
		}
	}
	return false
}
