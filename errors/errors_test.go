package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode ErrorCode
	}{
		{"meeting not found", entities.ErrMeetingNotFound, http.StatusNotFound, ErrorCode_MEETING_NOT_FOUND},
		{"wrapped thought not found", fmt.Errorf("load: %w", entities.ErrThoughtNotFound), http.StatusNotFound, ErrorCode_THOUGHT_NOT_FOUND},
		{"job not found", entities.ErrJobNotFound, http.StatusNotFound, ErrorCode_JOB_NOT_FOUND},
		{"empty content", entities.ErrEmptyContent, http.StatusBadRequest, ErrorCode_MEETING_EMPTY_CONTENT},
		{"busy", entities.ErrAlreadyProcessing, http.StatusConflict, ErrorCode_MEETING_ALREADY_PROCESSING},
		{"transition", fmt.Errorf("%w: cannot process a completed meeting", entities.ErrInvalidTransition), http.StatusConflict, ErrorCode_MEETING_INVALID_TRANSITION},
		{"unavailable", entities.ErrContentUnavailable, http.StatusUnprocessableEntity, ErrorCode_MEETING_CONTENT_UNAVAILABLE},
		{"merged", entities.ErrAlreadyMerged, http.StatusConflict, ErrorCode_THOUGHT_ALREADY_MERGED},
		{"invalid input", entities.ErrInvalidInput, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT},
		{"app error passes through", ErrInvalidToken(), http.StatusUnauthorized, ErrorCode_AUTH_INVALID_TOKEN},
		{"unknown", stdErrors.New("boom"), http.StatusInternalServerError, ErrorCode_INTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			assert.Equal(t, tt.wantHTTP, got.HTTPCode)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestAppError_Error(t *testing.T) {
	err := ErrInternal(stdErrors.New("db down"))
	assert.Equal(t, "[INTERNAL] Internal server error: db down", err.Error())
	assert.Equal(t, "[MEETING_NOT_FOUND] Meeting not found", ErrMeetingNotFound().Error())
	assert.Equal(t, "UNSPECIFIED", ErrorCode(42).String())

	withDetail := ErrNotFound("Tag").WithDetail("name", "ops")
	assert.Equal(t, "ops", withDetail.Details["name"])
}
