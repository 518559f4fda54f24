package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/errors"
)

// TokenMiddleware guards the API with a single static bearer token
type TokenMiddleware struct {
	token  string
	logger *zap.Logger
}

// NewTokenMiddleware creates the middleware. An empty token disables the check.
func NewTokenMiddleware(token string, logger *zap.Logger) *TokenMiddleware {
	return &TokenMiddleware{
		token:  token,
		logger: logger,
	}
}

// Enabled reports whether requests are checked
func (m *TokenMiddleware) Enabled() bool {
	return m.token != ""
}

// Authenticate rejects requests without the configured bearer token
func (m *TokenMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.Enabled() {
			return next(c)
		}

		token := extractToken(c)
		if token == "" {
			return respondError(c, errors.ErrUnauthenticated())
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			if m.logger != nil {
				m.logger.Warn("🔒 Rejected request with invalid API token",
					zap.String("path", c.Path()),
					zap.String("remote_ip", c.RealIP()),
				)
			}
			return respondError(c, errors.ErrInvalidToken())
		}
		return next(c)
	}
}

// extractToken reads "Authorization: Bearer <token>"
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func respondError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
