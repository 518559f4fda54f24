package entities

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrEmptyContent       = errors.New("meeting content is empty")
	ErrAlreadyProcessing  = errors.New("meeting is already processing")
	ErrInvalidTransition  = errors.New("invalid process status transition")
	ErrContentUnavailable = errors.New("transcript content unavailable")

	// Thought errors
	ErrThoughtNotFound = errors.New("thought not found")
	ErrAlreadyMerged   = errors.New("thought is already merged")

	// Job errors
	ErrJobNotFound = errors.New("processing job not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

// ExtractionError reports a transport or decode failure of the thought extractor
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingError reports a failure of the embedding provider
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
