package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProcessStatus represents where a meeting is in the extraction pipeline
type ProcessStatus string

const (
	ProcessStatusPending    ProcessStatus = "pending"    // Ingested, never processed
	ProcessStatusProcessing ProcessStatus = "processing" // A pipeline run owns the meeting
	ProcessStatusCompleted  ProcessStatus = "completed"  // Last run finished
	ProcessStatusFailed     ProcessStatus = "failed"     // Last run aborted, see ProcessError
)

// Meeting is an ingested transcript and the bookkeeping of its processing
type Meeting struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title         string        `json:"title" gorm:"type:varchar(255)"`
	Content       string        `json:"content" gorm:"type:text;not null"`
	TranscriptKey string        `json:"transcript_key,omitempty" gorm:"type:varchar(512)"`
	ProcessStatus ProcessStatus `json:"process_status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	ProcessError  *string       `json:"process_error,omitempty" gorm:"type:text"`
	ThoughtCount  int           `json:"thought_count" gorm:"type:integer;default:0"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a pending meeting from raw transcript content
func NewMeeting(title, content string) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:            uuid.New(),
		Title:         title,
		Content:       content,
		ProcessStatus: ProcessStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanStartProcessing reports whether a plain processing run may begin.
// Completed meetings go through reprocessing instead.
func (m *Meeting) CanStartProcessing() bool {
	return m.ProcessStatus == ProcessStatusPending || m.ProcessStatus == ProcessStatusFailed
}

// CanReprocess reports whether a reprocess run may reset the meeting
func (m *Meeting) CanReprocess() bool {
	return m.ProcessStatus != ProcessStatusProcessing
}

// MarkAsProcessing moves the meeting into the processing state and clears the last error
func (m *Meeting) MarkAsProcessing() {
	m.ProcessStatus = ProcessStatusProcessing
	m.ProcessError = nil
	m.UpdatedAt = time.Now()
}

// MarkAsCompleted records a successful run
func (m *Meeting) MarkAsCompleted(thoughtCount int, at time.Time) {
	m.ProcessStatus = ProcessStatusCompleted
	m.ProcessError = nil
	m.ThoughtCount = thoughtCount
	m.ProcessedAt = &at
	m.UpdatedAt = at
}

// MarkAsFailed records an aborted run
func (m *Meeting) MarkAsFailed(errMsg string) {
	m.ProcessStatus = ProcessStatusFailed
	m.ProcessError = &errMsg
	m.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the meeting
func (m *Meeting) Clone() *Meeting {
	if m == nil {
		return nil
	}
	c := *m
	if m.ProcessError != nil {
		e := *m.ProcessError
		c.ProcessError = &e
	}
	if m.ProcessedAt != nil {
		t := *m.ProcessedAt
		c.ProcessedAt = &t
	}
	return &c
}
