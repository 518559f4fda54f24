package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/errors"
	thoughtDTO "github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/thought"
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	thoughtUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/thought"
)

// Thought handles thought and tag HTTP requests
type Thought struct {
	thoughtService thoughtUsecase.Service
	tagRepo        repositories.TagRepository
	logger         *zap.Logger
}

// NewThoughtHandler creates a new thought handler
func NewThoughtHandler(thoughtService thoughtUsecase.Service, tagRepo repositories.TagRepository, logger *zap.Logger) *Thought {
	return &Thought{
		thoughtService: thoughtService,
		tagRepo:        tagRepo,
		logger:         logger,
	}
}

// GetThought handles GET /v1/thoughts/:id
func (h *Thought) GetThought(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.thoughtService.GetThought(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToThoughtResponse(t))
}

// FindSimilar handles GET /v1/thoughts/:id/similar
func (h *Thought) FindSimilar(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	edges, err := h.thoughtService.FindSimilarCandidates(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToSimilarResponses(edges))
}

// MergeThoughts handles POST /v1/thoughts/:id/merge
func (h *Thought) MergeThoughts(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req thoughtDTO.MergeThoughtsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	mergeIDs := make([]uuid.UUID, 0, len(req.MergeIDs))
	for _, raw := range req.MergeIDs {
		mid, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid merge id").WithDetail("merge_id", raw))
		}
		mergeIDs = append(mergeIDs, mid)
	}

	t, err := h.thoughtService.MergeThoughts(c.Request().Context(), thoughtUsecase.MergeInput{
		PrimaryID:     id,
		MergeIDs:      mergeIDs,
		MergedContent: req.MergedContent,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToThoughtResponse(t))
}

// DismissSimilar handles POST /v1/thoughts/:id/similar/:similarId/dismiss
func (h *Thought) DismissSimilar(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	similarID, err := uuidParam(c, "similarId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.thoughtService.DismissSimilar(c.Request().Context(), id, similarID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToThoughtResponse(t))
}

// ToggleImportant handles PATCH /v1/thoughts/:id/important
func (h *Thought) ToggleImportant(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.thoughtService.ToggleImportant(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToThoughtResponse(t))
}

// ListTags handles GET /v1/tags
func (h *Thought) ListTags(c echo.Context) error {
	tags, err := h.tagRepo.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTagListResponse(tags))
}
