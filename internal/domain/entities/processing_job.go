package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobStatus represents the status of a pipeline run
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"   // Detached run in flight
	JobStatusCompleted JobStatus = "completed" // Meeting reached completed
	JobStatusFailed    JobStatus = "failed"    // Meeting reached failed
)

// JobKind distinguishes the two pipeline entry points
type JobKind string

const (
	JobKindProcess   JobKind = "process"
	JobKindReprocess JobKind = "reprocess"
)

// ReprocessOptions selects which existing thoughts survive a reprocess run
type ReprocessOptions struct {
	PreserveManual bool `json:"preserve_manual"`
	PreserveMerged bool `json:"preserve_merged"`
}

// JobStats summarizes what a run did
type JobStats struct {
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

// ProcessingJob is the pollable record of one pipeline run
type ProcessingJob struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID      uuid.UUID                   `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Kind           JobKind                     `json:"kind" gorm:"type:varchar(20);not null"`
	Status         JobStatus                   `json:"status" gorm:"type:varchar(20);not null;index"`
	Options        ReprocessOptions            `json:"options" gorm:"type:jsonb;serializer:json"`
	Stats          JobStats                    `json:"stats" gorm:"type:jsonb;serializer:json"`
	UnresolvedTags datatypes.JSONSlice[string] `json:"unresolved_tags" gorm:"type:jsonb"`
	LastError      *string                     `json:"last_error,omitempty" gorm:"type:text"`
	StartedAt      time.Time                   `json:"started_at" gorm:"type:timestamp"`
	CompletedAt    *time.Time                  `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}

// NewProcessingJob creates a running job for a meeting
func NewProcessingJob(meetingID uuid.UUID, kind JobKind, opts ReprocessOptions) *ProcessingJob {
	now := time.Now()
	return &ProcessingJob{
		ID:             uuid.New(),
		MeetingID:      meetingID,
		Kind:           kind,
		Status:         JobStatusRunning,
		Options:        opts,
		UnresolvedTags: datatypes.JSONSlice[string]{},
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsFinished reports whether the run reached a terminal status
func (j *ProcessingJob) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MarkAsCompleted marks the job as completed with its final stats
func (j *ProcessingJob) MarkAsCompleted(stats JobStats, unresolved []string) {
	j.Status = JobStatusCompleted
	j.Stats = stats
	j.UnresolvedTags = append(datatypes.JSONSlice[string]{}, unresolved...)
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job as failed, keeping whatever stats were gathered
func (j *ProcessingJob) MarkAsFailed(stats JobStats, unresolved []string, errMsg string) {
	j.Status = JobStatusFailed
	j.Stats = stats
	j.UnresolvedTags = append(datatypes.JSONSlice[string]{}, unresolved...)
	j.LastError = &errMsg
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Clone returns a deep copy of the job
func (j *ProcessingJob) Clone() *ProcessingJob {
	if j == nil {
		return nil
	}
	c := *j
	c.UnresolvedTags = append(datatypes.JSONSlice[string]{}, j.UnresolvedTags...)
	if j.LastError != nil {
		e := *j.LastError
		c.LastError = &e
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
