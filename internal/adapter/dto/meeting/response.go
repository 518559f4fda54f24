package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/common"
)

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content,omitempty"`
	TranscriptKey string     `json:"transcript_key,omitempty"`
	ProcessStatus string     `json:"process_status"`
	ProcessError  *string    `json:"process_error,omitempty"`
	ThoughtCount  int        `json:"thought_count"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MeetingListResponse represents a page of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse         `json:"meetings"`
	Pagination *common.PaginationResponse `json:"pagination"`
}

// JobStatsResponse summarizes what a processing run did
type JobStatsResponse struct {
	Chunks            int `json:"chunks"`
	FailedChunks      int `json:"failed_chunks"`
	Candidates        int `json:"candidates"`
	UniqueCandidates  int `json:"unique_candidates"`
	Persisted         int `json:"persisted"`
	Preserved         int `json:"preserved"`
	Deleted           int `json:"deleted"`
	Embedded          int `json:"embedded"`
	EmbeddingFailures int `json:"embedding_failures"`
	SimilarEdges      int `json:"similar_edges"`
	SimilarFailures   int `json:"similar_failures"`
}

// JobResponse represents a processing job
type JobResponse struct {
	ID             string           `json:"id"`
	MeetingID      string           `json:"meeting_id"`
	Kind           string           `json:"kind"`
	Status         string           `json:"status"`
	PreserveManual bool             `json:"preserve_manual"`
	PreserveMerged bool             `json:"preserve_merged"`
	Stats          JobStatsResponse `json:"stats"`
	UnresolvedTags []string         `json:"unresolved_tags"`
	LastError      *string          `json:"last_error,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}
