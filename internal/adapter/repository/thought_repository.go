package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

// thoughtRepository implements the ThoughtRepository interface
type thoughtRepository struct {
	db *gorm.DB
}

// NewThoughtRepository creates a new thought repository
func NewThoughtRepository(db *gorm.DB) repositories.ThoughtRepository {
	return &thoughtRepository{db: db}
}

// Create creates a new thought
func (r *thoughtRepository) Create(ctx context.Context, thought *entities.Thought) error {
	if thought == nil {
		return errors.New("thought cannot be nil")
	}
	return r.db.WithContext(ctx).Create(thought).Error
}

// FindByID retrieves a thought by ID
func (r *thoughtRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Thought, error) {
	var thought entities.Thought
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&thought).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrThoughtNotFound
		}
		return nil, err
	}
	return &thought, nil
}

// FindByIDs retrieves the thoughts that exist among ids
func (r *thoughtRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error) {
	var thoughts []*entities.Thought
	if len(ids) == 0 {
		return thoughts, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&thoughts).Error; err != nil {
		return nil, err
	}
	return thoughts, nil
}

// ListByMeeting retrieves all thoughts of a meeting
func (r *thoughtRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Thought, error) {
	var thoughts []*entities.Thought
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&thoughts).Error; err != nil {
		return nil, err
	}
	return thoughts, nil
}

// CountByMeeting counts the thoughts of a meeting
func (r *thoughtRepository) CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Thought{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListActive retrieves the whole non-merged corpus
func (r *thoughtRepository) ListActive(ctx context.Context) ([]*entities.Thought, error) {
	var thoughts []*entities.Thought
	if err := r.db.WithContext(ctx).
		Where("is_merged = ?", false).
		Order("created_at ASC").
		Find(&thoughts).Error; err != nil {
		return nil, err
	}
	return thoughts, nil
}

// ListReferencing retrieves active thoughts whose similar_thoughts contain any of ids
func (r *thoughtRepository) ListReferencing(ctx context.Context, ids []uuid.UUID) ([]*entities.Thought, error) {
	var thoughts []*entities.Thought
	if len(ids) == 0 {
		return thoughts, nil
	}

	clauses := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		probe, err := json.Marshal([]map[string]string{{"thought_id": id.String()}})
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, "similar_thoughts @> ?::jsonb")
		args = append(args, string(probe))
	}

	if err := r.db.WithContext(ctx).
		Where("is_merged = ?", false).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Find(&thoughts).Error; err != nil {
		return nil, err
	}
	return thoughts, nil
}

// Update saves all fields of a thought
func (r *thoughtRepository) Update(ctx context.Context, thought *entities.Thought) error {
	if thought == nil {
		return errors.New("thought cannot be nil")
	}
	return r.db.WithContext(ctx).Save(thought).Error
}

// UpdateEmbedding attaches an embedding vector to a thought
func (r *thoughtRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float64) error {
	return r.db.WithContext(ctx).
		Model(&entities.Thought{ID: id}).
		Select("embedding", "updated_at").
		Updates(&entities.Thought{Embedding: embedding, UpdatedAt: time.Now()}).Error
}

// UpdateSimilar replaces the similarity edges of a thought
func (r *thoughtRepository) UpdateSimilar(ctx context.Context, id uuid.UUID, similar []entities.SimilarThought) error {
	return r.db.WithContext(ctx).
		Model(&entities.Thought{ID: id}).
		Select("similar_thoughts", "updated_at").
		Updates(&entities.Thought{SimilarThoughts: similar, UpdatedAt: time.Now()}).Error
}

// DeleteByIDs deletes thoughts by ID
func (r *thoughtRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entities.Thought{}).Error
}
