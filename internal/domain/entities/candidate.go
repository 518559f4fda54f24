package entities

// Candidate is a not-yet-persisted thought returned by an extractor
type Candidate struct {
	Content         string   `json:"content" validate:"required"`
	OriginalSegment string   `json:"original_segment"`
	Tags            []string `json:"tags"`
	Confidence      float64  `json:"confidence" validate:"gte=0,lte=1"`
	IsImportant     bool     `json:"is_important"`

	// Present only in version 2 responses
	ContentType string `json:"content_type,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
	Context     string `json:"context,omitempty"`
}
