package meeting

// CreateMeetingRequest represents the request to ingest a meeting.
// Exactly one of Content and TranscriptKey is set.
type CreateMeetingRequest struct {
	Title         string `json:"title" validate:"max=255"`
	Content       string `json:"content,omitempty" validate:"required_without=TranscriptKey,excluded_with=TranscriptKey"`
	TranscriptKey string `json:"transcript_key,omitempty" validate:"omitempty,max=512"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Page     int `query:"page" validate:"min=1"`
	PageSize int `query:"page_size" validate:"min=1,max=100"`
}

// ReprocessRequest selects which existing thoughts survive a reprocess run
type ReprocessRequest struct {
	PreserveManual bool `json:"preserve_manual"`
	PreserveMerged bool `json:"preserve_merged"`
}
