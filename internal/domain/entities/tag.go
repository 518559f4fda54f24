package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag is a vocabulary entry used to classify thoughts.
// ThoughtCount must equal the number of non-merged thoughts referencing the tag.
type Tag struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(255)"`
	ThoughtCount int       `json:"thought_count" gorm:"type:integer;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// NewTag creates a tag with a normalized name
func NewTag(name, displayName string) *Tag {
	if displayName == "" {
		displayName = name
	}
	now := time.Now()
	return &Tag{
		ID:          uuid.New(),
		Name:        NormalizeTagName(name),
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeTagName produces the lookup key for a tag name
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Clone returns a copy of the tag
func (t *Tag) Clone() *Tag {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
