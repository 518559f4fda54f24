package thought

import "time"

// SimilarThoughtResponse represents one similarity edge
type SimilarThoughtResponse struct {
	ThoughtID  string  `json:"thought_id"`
	Similarity float64 `json:"similarity"`
	Status     string  `json:"status"`
}

// ThoughtResponse represents a thought in API responses
type ThoughtResponse struct {
	ID                string                    `json:"id"`
	MeetingID         string                    `json:"meeting_id"`
	Content           string                    `json:"content"`
	OriginalSegment   string                    `json:"original_segment,omitempty"`
	Tags              []string                  `json:"tags"`
	Confidence        float64                   `json:"confidence"`
	HasEmbedding      bool                      `json:"has_embedding"`
	ExtractionVersion int                       `json:"extraction_version"`
	ContentType       string                    `json:"content_type,omitempty"`
	Speaker           string                    `json:"speaker,omitempty"`
	Context           string                    `json:"context,omitempty"`
	SimilarThoughts   []*SimilarThoughtResponse `json:"similar_thoughts"`
	IsImportant       bool                      `json:"is_important"`
	MergedFrom        []string                  `json:"merged_from"`
	IsMerged          bool                      `json:"is_merged"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}
