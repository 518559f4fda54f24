package errors

// ErrorCode is the machine-readable code carried in error responses
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED      ErrorCode = 0
	ErrorCode_HTTP_OK          ErrorCode = 200
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1002
	ErrorCode_NOT_FOUND        ErrorCode = 1003
	ErrorCode_CONFLICT         ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1005
	ErrorCode_INTERNAL         ErrorCode = 1006
	ErrorCode_UNAVAILABLE      ErrorCode = 1007

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001

	ErrorCode_MEETING_NOT_FOUND           ErrorCode = 3001
	ErrorCode_MEETING_EMPTY_CONTENT       ErrorCode = 3002
	ErrorCode_MEETING_ALREADY_PROCESSING  ErrorCode = 3003
	ErrorCode_MEETING_INVALID_TRANSITION  ErrorCode = 3004
	ErrorCode_MEETING_CONTENT_UNAVAILABLE ErrorCode = 3005

	ErrorCode_THOUGHT_NOT_FOUND      ErrorCode = 4001
	ErrorCode_THOUGHT_ALREADY_MERGED ErrorCode = 4002

	ErrorCode_JOB_NOT_FOUND ErrorCode = 5001

	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                 "UNSPECIFIED",
	ErrorCode_HTTP_OK:                     "HTTP_OK",
	ErrorCode_INVALID_ARGUMENT:            "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:             "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                   "NOT_FOUND",
	ErrorCode_CONFLICT:                    "CONFLICT",
	ErrorCode_UNAUTHENTICATED:             "UNAUTHENTICATED",
	ErrorCode_INTERNAL:                    "INTERNAL",
	ErrorCode_UNAVAILABLE:                 "UNAVAILABLE",
	ErrorCode_AUTH_INVALID_TOKEN:          "AUTH_INVALID_TOKEN",
	ErrorCode_MEETING_NOT_FOUND:           "MEETING_NOT_FOUND",
	ErrorCode_MEETING_EMPTY_CONTENT:       "MEETING_EMPTY_CONTENT",
	ErrorCode_MEETING_ALREADY_PROCESSING:  "MEETING_ALREADY_PROCESSING",
	ErrorCode_MEETING_INVALID_TRANSITION:  "MEETING_INVALID_TRANSITION",
	ErrorCode_MEETING_CONTENT_UNAVAILABLE: "MEETING_CONTENT_UNAVAILABLE",
	ErrorCode_THOUGHT_NOT_FOUND:           "THOUGHT_NOT_FOUND",
	ErrorCode_THOUGHT_ALREADY_MERGED:      "THOUGHT_ALREADY_MERGED",
	ErrorCode_JOB_NOT_FOUND:               "JOB_NOT_FOUND",
	ErrorCode_INTEGRATION_STORAGE_FAILED:  "INTEGRATION_STORAGE_FAILED",
}

// String returns the code name
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNSPECIFIED"
}
