package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Extraction schema versions
const (
	ExtractionVersionManual = 0 // Added by hand, never extracted
	ExtractionVersionV1     = 1 // Content, quote, tags, confidence
	ExtractionVersionV2     = 2 // V1 plus content type, speaker and context
)

// MaxSimilarThoughts caps the similarity edges stored on a thought
const MaxSimilarThoughts = 5

// SimilarStatus is the resolution state of a similarity edge
type SimilarStatus string

const (
	SimilarStatusPending   SimilarStatus = "pending"
	SimilarStatusMerged    SimilarStatus = "merged"
	SimilarStatusDismissed SimilarStatus = "dismissed"
)

// SimilarThought is a scored link from one thought to a near-duplicate
type SimilarThought struct {
	ThoughtID  uuid.UUID     `json:"thought_id"`
	Similarity float64       `json:"similarity"`
	Status     SimilarStatus `json:"status"`
}

// Thought is an atomic insight extracted from a meeting transcript
type Thought struct {
	ID              uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID       uuid.UUID                      `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Content         string                         `json:"content" gorm:"type:text;not null"`
	OriginalSegment string                         `json:"original_segment,omitempty" gorm:"type:text"`
	Tags            datatypes.JSONSlice[uuid.UUID] `json:"tags" gorm:"type:jsonb"`
	Confidence      float64                        `json:"confidence" gorm:"type:double precision;default:0"`
	Embedding       []float64                      `json:"embedding,omitempty" gorm:"type:jsonb;serializer:json"`

	// Version 2 schema fields
	ExtractionVersion int    `json:"extraction_version" gorm:"type:integer;default:0"`
	ContentType       string `json:"content_type,omitempty" gorm:"type:varchar(50)"`
	Speaker           string `json:"speaker,omitempty" gorm:"type:varchar(255)"`
	Context           string `json:"context,omitempty" gorm:"type:text"`

	SimilarThoughts []SimilarThought               `json:"similar_thoughts" gorm:"type:jsonb;serializer:json"`
	IsImportant     bool                           `json:"is_important" gorm:"default:false"`
	MergedFrom      datatypes.JSONSlice[uuid.UUID] `json:"merged_from" gorm:"type:jsonb"`
	IsMerged        bool                           `json:"is_merged" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Thought) TableName() string {
	return "thoughts"
}

// NewThought creates a thought owned by a meeting
func NewThought(meetingID uuid.UUID, content string, version int) *Thought {
	now := time.Now()
	return &Thought{
		ID:                uuid.New(),
		MeetingID:         meetingID,
		Content:           content,
		ExtractionVersion: version,
		Tags:              datatypes.JSONSlice[uuid.UUID]{},
		SimilarThoughts:   []SimilarThought{},
		MergedFrom:        datatypes.JSONSlice[uuid.UUID]{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasEmbedding reports whether a semantic vector is attached
func (t *Thought) HasEmbedding() bool {
	return len(t.Embedding) > 0
}

// IsManual applies the "manually added" heuristic: no extraction version or version 1
func (t *Thought) IsManual() bool {
	return t.ExtractionVersion <= ExtractionVersionV1
}

// HasTag reports whether the thought references the tag
func (t *Thought) HasTag(tagID uuid.UUID) bool {
	for _, id := range t.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// AddTags unions tagIDs into the tag set and returns the ones that were new
func (t *Thought) AddTags(tagIDs []uuid.UUID) []uuid.UUID {
	var added []uuid.UUID
	for _, id := range tagIDs {
		if t.HasTag(id) {
			continue
		}
		t.Tags = append(t.Tags, id)
		added = append(added, id)
	}
	return added
}

// SetSimilarStatus updates the edge pointing at target. Returns false when no edge exists.
func (t *Thought) SetSimilarStatus(target uuid.UUID, status SimilarStatus) bool {
	found := false
	for i := range t.SimilarThoughts {
		if t.SimilarThoughts[i].ThoughtID == target {
			t.SimilarThoughts[i].Status = status
			found = true
		}
	}
	return found
}

// Clone returns a deep copy of the thought
func (t *Thought) Clone() *Thought {
	if t == nil {
		return nil
	}
	c := *t
	c.Tags = append(datatypes.JSONSlice[uuid.UUID]{}, t.Tags...)
	c.MergedFrom = append(datatypes.JSONSlice[uuid.UUID]{}, t.MergedFrom...)
	c.SimilarThoughts = append([]SimilarThought{}, t.SimilarThoughts...)
	if t.Embedding != nil {
		c.Embedding = append([]float64{}, t.Embedding...)
	}
	return &c
}
