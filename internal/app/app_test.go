package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/chunking"
	meetingUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

type oneThought struct{}

func (oneThought) Extract(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
	return []entities.Candidate{{Content: "follow up with legal", Tags: []string{"Decision"}, Confidence: 0.8}}, nil
}

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverMemory
	cfg.Extractor.Provider = config.ProviderGroq
	cfg.Extractor.APIKey = "test"
	cfg.Extractor.RequestsPerMinute = 60
	cfg.Chunking = config.ChunkingConfig{MaxSize: 3000, Overlap: 200, SentenceBucketSize: 2000}
	cfg.Similarity = config.SimilarityConfig{Threshold: 0.5, TopK: 5}
	cfg.Pipeline.RunTimeout = time.Minute
	return cfg
}

func TestNew_MemoryDriverRunsPipeline(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()

	seedFile := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte("tags:\n  - name: decision\n    display_name: Decision\n"), 0o600))
	cfg.Tags.SeedFile = seedFile

	a, err := New(ctx, cfg, zaptest.NewLogger(t), WithExtractor(oneThought{}))
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Storage)

	tags, err := a.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "decision", tags[0].Name)

	m, err := a.MeetingService.CreateMeeting(ctx, meetingUsecase.CreateMeetingInput{Title: "legal", Content: "Legal needs to review the contract."})
	require.NoError(t, err)

	job, err := a.Pipeline.StartProcessing(ctx, m.ID)
	require.NoError(t, err)
	require.NoError(t, a.Pipeline.Shutdown(ctx))

	job, err = a.Pipeline.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusCompleted, job.Status)
	assert.Empty(t, job.UnresolvedTags)

	thoughts, err := a.ThoughtService.ListByMeeting(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, thoughts, 1)
	assert.True(t, thoughts[0].HasTag(tags[0].ID))
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Driver = "sqlite"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNew_MissingSeedFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.Tags.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithExtractor(oneThought{}))
	assert.Error(t, err)
}

func TestSeedTags_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zaptest.NewLogger(t), WithExtractor(oneThought{}))
	require.NoError(t, err)
	defer a.Close()

	seeds := []config.TagSeed{{Name: "Risk", DisplayName: "Risk"}, {Name: "idea", DisplayName: "Idea"}}
	n, err := a.SeedTags(ctx, seeds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	seeds[0].DisplayName = "Risks"
	_, err = a.SeedTags(ctx, seeds)
	require.NoError(t, err)

	tags, err := a.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	names := map[string]string{}
	for _, tag := range tags {
		names[tag.Name] = tag.DisplayName
	}
	assert.Equal(t, map[string]string{"risk": "Risks", "idea": "Idea"}, names)
}

func TestPipelineConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Embedding.BatchSize = 7

	pc := PipelineConfig(cfg)
	assert.Equal(t, chunking.Options{Policy: chunking.PolicyBoundary, MaxSize: 3000, Overlap: 200}, pc.ProcessChunking)
	assert.Equal(t, chunking.Options{Policy: chunking.PolicySentence, MaxSize: 2000}, pc.ReprocessChunking)
	assert.Equal(t, 7, pc.EmbeddingBatchSize)
	assert.Equal(t, time.Minute, pc.RunTimeout)
}
