package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-thoughts/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	thoughtHandler *Thought
	storageHandler *Storage
	auth           *middleware.TokenMiddleware
}

// NewRouter creates a new router with all handlers. storageHandler may be
// nil when object storage is disabled.
func NewRouter(
	cfg *config.Config,
	meetingHandler *Meeting,
	thoughtHandler *Thought,
	storageHandler *Storage,
	auth *middleware.TokenMiddleware,
) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		thoughtHandler: thoughtHandler,
		storageHandler: storageHandler,
		auth:           auth,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1", rt.auth.Authenticate)

	rt.setupMeetingRoutes(v1)
	rt.setupThoughtRoutes(v1)
	rt.setupStorageRoutes(v1)
}

// setupMeetingRoutes configures meeting, processing and job routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	meetings.POST("", rt.meetingHandler.CreateMeeting)
	meetings.GET("", rt.meetingHandler.ListMeetings)
	meetings.GET("/:id", rt.meetingHandler.GetMeeting)
	meetings.DELETE("/:id", rt.meetingHandler.DeleteMeeting)
	meetings.POST("/:id/process", rt.meetingHandler.StartProcessing)
	meetings.POST("/:id/reprocess", rt.meetingHandler.Reprocess)
	meetings.GET("/:id/thoughts", rt.meetingHandler.ListThoughts)
	meetings.GET("/:id/jobs", rt.meetingHandler.ListJobs)

	g.GET("/jobs/:id", rt.meetingHandler.GetJob)
}

// setupThoughtRoutes configures thought, merge and tag routes
func (rt *Router) setupThoughtRoutes(g *echo.Group) {
	thoughts := g.Group("/thoughts")
	thoughts.GET("/:id", rt.thoughtHandler.GetThought)
	thoughts.GET("/:id/similar", rt.thoughtHandler.FindSimilar)
	thoughts.POST("/:id/merge", rt.thoughtHandler.MergeThoughts)
	thoughts.POST("/:id/similar/:similarId/dismiss", rt.thoughtHandler.DismissSimilar)
	thoughts.PATCH("/:id/important", rt.thoughtHandler.ToggleImportant)

	g.GET("/tags", rt.thoughtHandler.ListTags)
}

// setupStorageRoutes configures storage routes
func (rt *Router) setupStorageRoutes(g *echo.Group) {
	if rt.storageHandler != nil {
		g.GET("/storage/info", rt.storageHandler.GetInfo)
	} else {
		g.GET("/storage/info", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not enabled",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Enable object storage with STORAGE_ENABLED=true",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
