package handler

import (
	stdErrors "errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/errors"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/pipeline"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized 200 response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusOK, data)
}

// HandleCreated writes a standardized 201 response
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusCreated, data)
}

// HandleAccepted writes a standardized 202 response for detached work
func HandleAccepted(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusAccepted, data)
}

func respond(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Domain errors are mapped to their AppError; anything else is internal.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	var appErr errors.AppError
	if stdErrors.Is(err, pipeline.ErrClosed) {
		appErr = errors.ErrServiceUnavailable(err)
	} else {
		appErr = errors.FromDomain(err)
	}

	if logger != nil {
		log := logger.Warn
		if appErr.HTTPCode >= http.StatusInternalServerError {
			log = logger.Error
		}
		log("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// bindAndValidate decodes the request into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload(err)
	}
	if err := c.Validate(req); err != nil {
		e := errors.ErrInvalidArgument("Validation failed")
		e.Raw = err
		return e
	}
	return nil
}

// uuidParam parses a path parameter as a UUID
func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("Invalid " + name).WithDetail(name, c.Param(name))
	}
	return id, nil
}

// intQuery reads an integer query parameter with a default value
func intQuery(c echo.Context, key string, defaultValue int) int {
	raw := c.QueryParam(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}
