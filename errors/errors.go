package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// AppError is the error type returned to HTTP clients
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid request payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid API token",
	}
}

func ErrServiceUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_UNAVAILABLE,
		Message:  "Service is shutting down",
	}
}

// Meeting Errors
func ErrMeetingNotFound() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_MEETING_NOT_FOUND,
		Message:  "Meeting not found",
	}
}

func ErrMeetingEmptyContent() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MEETING_EMPTY_CONTENT,
		Message:  "Meeting content is empty",
	}
}

func ErrMeetingAlreadyProcessing() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_MEETING_ALREADY_PROCESSING,
		Message:  "Meeting is already processing",
	}
}

func ErrMeetingInvalidTransition(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_MEETING_INVALID_TRANSITION,
		Message:  "Meeting cannot move to processing from its current status",
	}
}

func ErrMeetingContentUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_MEETING_CONTENT_UNAVAILABLE,
		Message:  "Transcript content unavailable",
	}
}

// Thought Errors
func ErrThoughtNotFound() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_THOUGHT_NOT_FOUND,
		Message:  "Thought not found",
	}
}

func ErrThoughtAlreadyMerged(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_THOUGHT_ALREADY_MERGED,
		Message:  "Thought is already merged",
	}
}

// Job Errors
func ErrJobNotFound() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_JOB_NOT_FOUND,
		Message:  "Processing job not found",
	}
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

// FromDomain maps domain sentinel errors to AppErrors. Anything unknown is internal.
func FromDomain(err error) AppError {
	var appErr AppError
	switch {
	case err == nil:
		return ErrInternal(nil)
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return ErrMeetingNotFound()
	case stdErrors.Is(err, entities.ErrThoughtNotFound):
		return ErrThoughtNotFound()
	case stdErrors.Is(err, entities.ErrJobNotFound):
		return ErrJobNotFound()
	case stdErrors.Is(err, entities.ErrEmptyContent):
		return ErrMeetingEmptyContent()
	case stdErrors.Is(err, entities.ErrAlreadyProcessing):
		return ErrMeetingAlreadyProcessing()
	case stdErrors.Is(err, entities.ErrInvalidTransition):
		return ErrMeetingInvalidTransition(err)
	case stdErrors.Is(err, entities.ErrContentUnavailable):
		return ErrMeetingContentUnavailable(err)
	case stdErrors.Is(err, entities.ErrAlreadyMerged):
		return ErrThoughtAlreadyMerged(err)
	case stdErrors.Is(err, entities.ErrInvalidInput):
		e := ErrInvalidArgument("Invalid input")
		e.Raw = err
		return e
	default:
		return ErrInternal(err)
	}
}
