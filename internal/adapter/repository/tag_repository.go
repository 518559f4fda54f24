package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
)

// tagRepository implements the TagRepository interface
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) repositories.TagRepository {
	return &tagRepository{db: db}
}

// List retrieves the whole tag vocabulary
func (r *tagRepository) List(ctx context.Context) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindByIDs retrieves the tags that exist among ids
func (r *tagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Upsert inserts a tag or refreshes the display name on name conflict
func (r *tagRepository) Upsert(ctx context.Context, tag *entities.Tag) error {
	if tag == nil || tag.Name == "" {
		return errors.New("tag name cannot be empty")
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
		}).
		Create(tag).Error; err != nil {
		return err
	}
	// Reload so the caller sees the surviving row's ID and count
	return r.db.WithContext(ctx).Where("name = ?", tag.Name).First(tag).Error
}

// AdjustCounts adds delta to thought_count of every tag in ids
func (r *tagRepository) AdjustCounts(ctx context.Context, ids []uuid.UUID, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"thought_count": gorm.Expr("thought_count + ?", delta),
			"updated_at":    time.Now(),
		}).Error
}
