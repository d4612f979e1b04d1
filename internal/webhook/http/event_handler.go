package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/httputil"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/http/dto"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// EventHandler serves the webhook event ledger to operators.
type EventHandler struct {
	eventUseCase webhookUsecase.EventUseCase
	logger       *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(eventUseCase webhookUsecase.EventUseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventUseCase: eventUseCase,
		logger:       logger,
	}
}

// ListHandler returns ledger rows, newest first.
// GET /v1/webhook-events?status=&provider=&include_archived=&offset=0&limit=50
func (h *EventHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.List(c.Request.Context(), req.Filter(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events, page))
}

// GetHandler returns one ledger row.
// GET /v1/webhook-events/:id
func (h *EventHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid event id format"), h.logger)
		return
	}

	event, err := h.eventUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}
