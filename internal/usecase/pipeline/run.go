package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/dedupe"
	"github.com/johnquangdev/meeting-thoughts/pkg/jobcontext"
)

// finishTimeout bounds the final status writes, which use a fresh context
// because the run context may already have expired
const finishTimeout = 30 * time.Second

// runState accumulates what a run did
type runState struct {
	job        *entities.ProcessingJob
	content    string
	mode       Mode
	stats      entities.JobStats
	unresolved []string
	seen       map[string]struct{}
}

func (st *runState) addUnresolved(name string) {
	if _, ok := st.seen[name]; ok {
		return
	}
	st.seen[name] = struct{}{}
	st.unresolved = append(st.unresolved, name)
}

func (s *service) run(job *entities.ProcessingJob, content string, mode Mode) {
	defer s.running.Done()

	ctx, cancel := jobcontext.RunBegin(context.Background(), job.ID, string(mode.Kind), job.MeetingID, s.runTimeout)
	defer cancel()

	st := &runState{job: job, content: content, mode: mode, seen: make(map[string]struct{})}
	var thoughtCount int
	err := jobcontext.RunEnd(ctx, func(ctx context.Context) error {
		var err error
		thoughtCount, err = s.execute(ctx, st)
		return err
	})

	s.finish(st, thoughtCount, jobcontext.Elapsed(ctx), err)
}

// execute performs the run steps. Anything it returns is fatal to the run.
// Side effects already committed are kept: a failed run may leave some of
// its thoughts persisted.
func (s *service) execute(ctx context.Context, st *runState) (int, error) {
	meetingID := st.job.MeetingID

	if st.mode.Kind == entities.JobKindReprocess {
		if err := s.dropUnpreserved(ctx, st); err != nil {
			return 0, err
		}
	}

	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tag vocabulary: %w", err)
	}
	vocabulary := make([]string, 0, len(tags))
	byName := make(map[string]uuid.UUID, len(tags))
	for _, t := range tags {
		vocabulary = append(vocabulary, t.Name)
		byName[entities.NormalizeTagName(t.Name)] = t.ID
	}

	chunks, err := st.mode.Chunker.Chunk(st.content)
	if err != nil {
		return 0, fmt.Errorf("failed to chunk content: %w", err)
	}
	st.stats.Chunks = len(chunks)

	candidates, err := s.extractAll(ctx, st, chunks, vocabulary)
	if err != nil {
		return 0, err
	}
	st.stats.Candidates = len(candidates)

	unique := dedupe.Candidates(candidates)
	st.stats.UniqueCandidates = len(unique)

	created, err := s.persist(ctx, st, unique, byName)
	if err != nil {
		return 0, err
	}

	s.embed(ctx, st, created)
	s.scanSimilar(ctx, st, created)

	count, err := s.thoughtRepo.CountByMeeting(ctx, meetingID)
	if err != nil {
		return 0, fmt.Errorf("failed to count thoughts: %w", err)
	}
	return count, nil
}

// dropUnpreserved deletes the meeting's thoughts not covered by an active
// preservation rule. Tag counts are decremented before deletion, except for
// merged thoughts whose counts were already released by the merge.
func (s *service) dropUnpreserved(ctx context.Context, st *runState) error {
	existing, err := s.thoughtRepo.ListByMeeting(ctx, st.job.MeetingID)
	if err != nil {
		return fmt.Errorf("failed to load existing thoughts: %w", err)
	}

	opts := st.job.Options
	var doomed []uuid.UUID
	for _, t := range existing {
		keep := (opts.PreserveManual && t.IsManual()) || (opts.PreserveMerged && t.IsMerged)
		if keep {
			st.stats.Preserved++
			continue
		}
		if !t.IsMerged && len(t.Tags) > 0 {
			if err := s.tagRepo.AdjustCounts(ctx, t.Tags, -1); err != nil {
				return fmt.Errorf("failed to release tags of thought %s: %w", t.ID, err)
			}
		}
		doomed = append(doomed, t.ID)
	}
	if len(doomed) == 0 {
		return nil
	}

	if err := s.thoughtRepo.DeleteByIDs(ctx, doomed); err != nil {
		return fmt.Errorf("failed to delete thoughts: %w", err)
	}
	st.stats.Deleted = len(doomed)

	if err := PruneEdges(ctx, s.thoughtRepo, doomed); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to prune similarity edges to deleted thoughts",
			zap.String("meeting_id", st.job.MeetingID.String()),
			zap.Error(err),
		)
	}

	if s.logger != nil {
		s.logger.Info("🧹 Dropped thoughts before reprocess",
			zap.String("meeting_id", st.job.MeetingID.String()),
			zap.Int("deleted", len(doomed)),
			zap.Int("preserved", st.stats.Preserved),
		)
	}
	return nil
}

// extractAll calls the extractor for each chunk in order, one at a time
func (s *service) extractAll(ctx context.Context, st *runState, chunks []string, vocabulary []string) ([]entities.Candidate, error) {
	var all []entities.Candidate
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run aborted before chunk %d/%d: %w", i+1, len(chunks), err)
		}

		got, err := s.extractor.Extract(ctx, chunk, vocabulary, st.mode.Version)
		if err != nil {
			if st.mode.Policy == FailurePolicyStrict {
				return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			st.stats.FailedChunks++
			if s.logger != nil {
				s.logger.Warn("⚠️ Chunk extraction failed, skipping",
					zap.String("job_id", st.job.ID.String()),
					zap.Int("chunk_index", i),
					zap.Error(err),
				)
			}
			continue
		}
		all = append(all, got...)
	}
	return all, nil
}

// persist stores one thought per candidate and counts its tags
func (s *service) persist(ctx context.Context, st *runState, candidates []entities.Candidate, byName map[string]uuid.UUID) ([]*entities.Thought, error) {
	created := make([]*entities.Thought, 0, len(candidates))
	for _, c := range candidates {
		thought := entities.NewThought(st.job.MeetingID, c.Content, st.mode.Version)
		thought.OriginalSegment = c.OriginalSegment
		thought.Confidence = c.Confidence
		thought.IsImportant = c.IsImportant
		if st.mode.Version >= entities.ExtractionVersionV2 {
			thought.ContentType = c.ContentType
			thought.Speaker = c.Speaker
			thought.Context = c.Context
		}

		for _, name := range c.Tags {
			key := entities.NormalizeTagName(name)
			if key == "" {
				continue
			}
			id, ok := byName[key]
			if !ok {
				st.addUnresolved(key)
				continue
			}
			thought.AddTags([]uuid.UUID{id})
		}

		if err := s.thoughtRepo.Create(ctx, thought); err != nil {
			return created, fmt.Errorf("failed to save thought: %w", err)
		}
		if len(thought.Tags) > 0 {
			if err := s.tagRepo.AdjustCounts(ctx, thought.Tags, 1); err != nil {
				return created, fmt.Errorf("failed to update tag counts: %w", err)
			}
		}
		created = append(created, thought)
		st.stats.Persisted++
	}
	return created, nil
}

// embed attaches vectors in fixed-size batches. Failures leave thoughts
// without embeddings and never fail the run.
func (s *service) embed(ctx context.Context, st *runState, thoughts []*entities.Thought) {
	if s.embedder == nil || len(thoughts) == 0 {
		return
	}

	for start := 0; start < len(thoughts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(thoughts) {
			end = len(thoughts)
		}
		batch := thoughts[start:end]

		texts := make([]string, len(batch))
		for i, t := range batch {
			texts[i] = t.Content
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err == nil && len(vectors) != len(batch) {
			err = &entities.EmbeddingError{Reason: fmt.Sprintf("expected %d vectors, got %d", len(batch), len(vectors))}
		}
		if err != nil {
			st.stats.EmbeddingFailures += len(batch)
			if s.logger != nil {
				s.logger.Warn("⚠️ Embedding batch failed, continuing without vectors",
					zap.String("job_id", st.job.ID.String()),
					zap.Int("batch_start", start),
					zap.Int("batch_size", len(batch)),
					zap.Error(err),
				)
			}
			continue
		}

		for i, t := range batch {
			if len(vectors[i]) == 0 {
				st.stats.EmbeddingFailures++
				continue
			}
			if err := s.thoughtRepo.UpdateEmbedding(ctx, t.ID, vectors[i]); err != nil {
				st.stats.EmbeddingFailures++
				if s.logger != nil {
					s.logger.Warn("⚠️ Failed to store embedding",
						zap.String("thought_id", t.ID.String()),
						zap.Error(err),
					)
				}
				continue
			}
			t.Embedding = vectors[i]
			st.stats.Embedded++
		}
	}
}

// scanSimilar scores every new thought against the whole active corpus.
// One thought failing never stops the others.
func (s *service) scanSimilar(ctx context.Context, st *runState, thoughts []*entities.Thought) {
	if len(thoughts) == 0 {
		return
	}

	corpus, err := s.thoughtRepo.ListActive(ctx)
	if err != nil {
		st.stats.SimilarFailures += len(thoughts)
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to load corpus, skipping similarity scan",
				zap.String("job_id", st.job.ID.String()),
				zap.Error(err),
			)
		}
		return
	}

	for _, t := range thoughts {
		edges, err := s.similarFor(ctx, t, corpus)
		if err != nil {
			st.stats.SimilarFailures++
			if s.logger != nil {
				s.logger.Warn("⚠️ Similarity scan failed for thought",
					zap.String("thought_id", t.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		t.SimilarThoughts = edges
		st.stats.SimilarEdges += len(edges)
	}
}

func (s *service) similarFor(ctx context.Context, t *entities.Thought, corpus []*entities.Thought) (edges []entities.SimilarThought, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while scoring: %v", p)
		}
	}()

	edges = s.engine.FindSimilar(t, corpus)
	if err := s.thoughtRepo.UpdateSimilar(ctx, t.ID, edges); err != nil {
		return nil, fmt.Errorf("failed to save similarity edges: %w", err)
	}
	return edges, nil
}

// finish records the outcome on the meeting and the job
func (s *service) finish(st *runState, thoughtCount int, elapsed time.Duration, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	job := st.job
	meetingID := job.MeetingID

	if runErr == nil {
		if err := s.meetingRepo.MarkCompleted(ctx, meetingID, thoughtCount, time.Now()); err != nil {
			runErr = fmt.Errorf("failed to mark meeting completed: %w", err)
		}
	}

	if runErr != nil {
		if err := s.meetingRepo.MarkFailed(ctx, meetingID, runErr.Error()); err != nil && s.logger != nil {
			s.logger.Error("❌ Failed to mark meeting as failed",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
		job.MarkAsFailed(st.stats, st.unresolved, runErr.Error())
	} else {
		job.MarkAsCompleted(st.stats, st.unresolved)
	}

	if err := s.jobRepo.Update(ctx, job); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to update processing job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	if s.logger == nil {
		return
	}
	if runErr != nil {
		s.logger.Error("❌ Processing run failed",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", meetingID.String()),
			zap.Int("persisted", st.stats.Persisted),
			zap.Duration("elapsed", elapsed),
			zap.Error(runErr),
		)
		return
	}
	s.logger.Info("✅ Processing run completed",
		zap.String("job_id", job.ID.String()),
		zap.String("meeting_id", meetingID.String()),
		zap.Int("chunks", st.stats.Chunks),
		zap.Int("thought_count", thoughtCount),
		zap.Int("similar_edges", st.stats.SimilarEdges),
		zap.Strings("unresolved_tags", st.unresolved),
		zap.Duration("elapsed", elapsed),
	)
}
