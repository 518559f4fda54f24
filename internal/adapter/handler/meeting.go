package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/errors"
	meetingDTO "github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/pipeline"
	thoughtUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/thought"
)

// Meeting handles meeting and processing HTTP requests
type Meeting struct {
	meetingService meetingUsecase.Service
	thoughtService thoughtUsecase.Service
	pipeline       pipeline.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(
	meetingService meetingUsecase.Service,
	thoughtService thoughtUsecase.Service,
	pipelineService pipeline.Service,
	logger *zap.Logger,
) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		thoughtService: thoughtService,
		pipeline:       pipelineService,
		logger:         logger,
	}
}

// CreateMeeting handles POST /v1/meetings
func (h *Meeting) CreateMeeting(c echo.Context) error {
	var req meetingDTO.CreateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.meetingService.CreateMeeting(c.Request().Context(), meetingUsecase.CreateMeetingInput{
		Title:         req.Title,
		Content:       req.Content,
		TranscriptKey: req.TranscriptKey,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, presenter.ToMeetingResponse(m, false))
}

// ListMeetings handles GET /v1/meetings
func (h *Meeting) ListMeetings(c echo.Context) error {
	req := meetingDTO.ListMeetingsRequest{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if err := c.Validate(&req); err != nil {
		e := errors.ErrInvalidArgument("Invalid pagination")
		e.Raw = err
		return HandleError(h.logger, c, e)
	}

	meetings, err := h.meetingService.ListMeetings(c.Request().Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(meetings, req.Page, req.PageSize))
}

// GetMeeting handles GET /v1/meetings/:id
func (h *Meeting) GetMeeting(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.meetingService.GetMeeting(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m, true))
}

// DeleteMeeting handles DELETE /v1/meetings/:id
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetingService.DeleteMeeting(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String()})
}

// StartProcessing handles POST /v1/meetings/:id/process
func (h *Meeting) StartProcessing(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.pipeline.StartProcessing(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleAccepted(h.logger, c, presenter.ToJobResponse(job))
}

// Reprocess handles POST /v1/meetings/:id/reprocess
func (h *Meeting) Reprocess(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.ReprocessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.pipeline.Reprocess(c.Request().Context(), id, entities.ReprocessOptions{
		PreserveManual: req.PreserveManual,
		PreserveMerged: req.PreserveMerged,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleAccepted(h.logger, c, presenter.ToJobResponse(job))
}

// ListThoughts handles GET /v1/meetings/:id/thoughts
func (h *Meeting) ListThoughts(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	thoughts, err := h.thoughtService.ListByMeeting(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToThoughtListResponse(thoughts))
}

// ListJobs handles GET /v1/meetings/:id/jobs
func (h *Meeting) ListJobs(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobs, err := h.pipeline.ListJobs(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToJobListResponse(jobs))
}

// GetJob handles GET /v1/jobs/:id
func (h *Meeting) GetJob(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.pipeline.GetJob(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToJobResponse(job))
}
