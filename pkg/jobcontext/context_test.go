package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBegin_SetsMetadataAndDeadline(t *testing.T) {
	runID, meetingID := uuid.New(), uuid.New()
	ctx, cancel := RunBegin(context.Background(), runID, "process", meetingID, time.Minute)
	defer cancel()

	meta := GetRunMetadata(ctx)
	assert.Equal(t, runID, meta.RunID)
	assert.Equal(t, "process", meta.Kind)
	assert.Equal(t, meetingID, meta.MeetingID)
	assert.False(t, meta.StartTime.IsZero())

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRunBegin_DefaultTimeout(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), uuid.New(), "process", uuid.New(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultRunTimeout), deadline, 5*time.Second)
}

func TestRunEnd_RecoversPanic(t *testing.T) {
	err := RunEnd(context.Background(), func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: boom")
}

func TestRunEnd_RunsOnce(t *testing.T) {
	calls := 0
	sentinel := errors.New("connection refused")
	err := RunEnd(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRunEnd_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RunEnd(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("groq API error: status 503"), true},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("context deadline exceeded"), false},
		{errors.New("groq API error: status 401"), false},
		{errors.New("malformed extraction payload"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.err), "%v", tt.err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, CalculateBackoff(0, time.Second, time.Minute))
	assert.Equal(t, 8*time.Second, CalculateBackoff(3, time.Second, time.Minute))
	assert.Equal(t, time.Minute, CalculateBackoff(10, time.Second, time.Minute))
	assert.Equal(t, time.Second, CalculateBackoff(-2, time.Second, 0))
}

func TestElapsed(t *testing.T) {
	assert.Zero(t, Elapsed(context.Background()))

	ctx, cancel := RunBegin(context.Background(), uuid.New(), "process", uuid.New(), time.Minute)
	defer cancel()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, Elapsed(ctx), 5*time.Millisecond)
}
