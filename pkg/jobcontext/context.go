package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyRunKind      KeyContext = "run_kind"
	keyMeetingID    KeyContext = "meeting_id"
	keyRunStartTime KeyContext = "run_start_time"
)

// DefaultRunTimeout bounds a pipeline run when no timeout is configured
const DefaultRunTimeout = 15 * time.Minute

// RunMetadata holds metadata for a pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	Kind      string
	MeetingID uuid.UUID
	StartTime time.Time
}

// RunBegin initializes a run context with metadata and timeout.
// Runs are detached from the request that triggered them, so callers
// normally pass context.Background() as parent.
func RunBegin(parentCtx context.Context, runID uuid.UUID, kind string, meetingID uuid.UUID, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunKind, kind)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// RunEnd executes the run function once with panic recovery.
// There is no automatic retry: a failed run is re-triggered by a human.
func RunEnd(ctx context.Context, runFunc func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before run execution: %w", ctx.Err())
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	return runFunc(ctx)
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetRunKind extracts run kind from context
func GetRunKind(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(keyRunKind).(string)
	return kind, ok
}

// GetMeetingID extracts the meeting being processed from context
func GetMeetingID(ctx context.Context) (uuid.UUID, bool) {
	meetingID, ok := ctx.Value(keyMeetingID).(uuid.UUID)
	return meetingID, ok
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	kind, _ := GetRunKind(ctx)
	meetingID, _ := GetMeetingID(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		Kind:      kind,
		MeetingID: meetingID,
		StartTime: startTime,
	}
}

// Elapsed returns the time since the run started, or zero outside a run
func Elapsed(ctx context.Context) time.Duration {
	startTime, ok := GetRunStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(startTime)
}

// IsRetryableError checks if an external call should be retried
// Retryable errors include: network errors, timeouts, rate limits, 5xx
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// The run itself timed out or was cancelled, retrying cannot help
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return false
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "unexpected eof") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "overloaded") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration, capped at max
func CalculateBackoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}

	// 2^attempt * baseDelay
	backoff := time.Duration(1<<uint(attempt)) * baseDelay
	if maxDelay > 0 && backoff > maxDelay {
		backoff = maxDelay
	}

	return backoff
}
