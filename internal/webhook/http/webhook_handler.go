// Package http exposes the payment webhook endpoint and the read-only webhook ledger API.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/httputil"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/http/dto"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// WebhookHandler receives payment provider notifications.
type WebhookHandler struct {
	settlementUseCase webhookUsecase.SettlementUseCase
	maxBodyBytes      int64
	logger            *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. Bodies larger than maxBodyBytes are rejected.
func NewWebhookHandler(
	settlementUseCase webhookUsecase.SettlementUseCase,
	maxBodyBytes int64,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		settlementUseCase: settlementUseCase,
		maxBodyBytes:      maxBodyBytes,
		logger:            logger,
	}
}

// SettleHandler authenticates and applies one delivery.
// POST /payments/webhook
//
// The raw body is read before any parsing because signatures are computed over the exact bytes.
// Duplicates, in-flight redeliveries and already-completed orders answer 200 so the provider
// stops retrying.
func (h *WebhookHandler) SettleHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("webhook body too large",
				slog.Int64("limit_bytes", tooLarge.Limit),
				slog.String("source_ip", c.ClientIP()),
			)
			c.JSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
				Error:   "payload_too_large",
				Message: "Request body exceeds the configured limit",
			})
			return
		}
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.settlementUseCase.Settle(c.Request.Context(), webhookUsecase.SettleInput{
		Body:     body,
		Headers:  c.Request.Header.Clone(),
		SourceIP: c.ClientIP(),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSettleResultToResponse(result))
}
