package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marketledger/backend/internal/application/ingest"
	"github.com/marketledger/backend/internal/infrastructure/logger"
	"github.com/marketledger/backend/internal/interfaces/http/dto"
)

// WebhookHandler receives order delivery callbacks from the marketplace
type WebhookHandler struct {
	BaseHandler
	webhookService *ingest.WebhookService
	maxBatchSize   int
}

// WebhookHandlerOption is a functional option for WebhookHandler configuration
type WebhookHandlerOption func(*WebhookHandler)

// WithMaxBatchSize caps how many payload elements one delivery may carry.
// Zero disables the cap.
func WithMaxBatchSize(n int) WebhookHandlerOption {
	return func(h *WebhookHandler) {
		h.maxBatchSize = n
	}
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *ingest.WebhookService, opts ...WebhookHandlerOption) *WebhookHandler {
	h := &WebhookHandler{
		webhookService: webhookService,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ReceiveOrders handles POST /webhooks/orders.
//
// The body may be a single order object or an array of orders. Each payload
// is validated and reconciled independently, so one bad order never blocks
// the rest of the batch.
func (h *WebhookHandler) ReceiveOrders(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}

	payloads, err := ingest.DecodeBatch(body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	if h.maxBatchSize > 0 && len(payloads) > h.maxBatchSize {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation,
			fmt.Sprintf("Batch exceeds the maximum of %d payloads", h.maxBatchSize))
		return
	}

	result := h.webhookService.ProcessBatch(c.Request.Context(), payloads)

	logger.L(c.Request.Context()).Info("webhook batch processed",
		zap.Int("payloads", len(payloads)),
		zap.Int("processed", result.Processed),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("rejected", result.Rejected),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	switch {
	case result.Succeeded():
		h.Success(c, result)
	case result.OnlyFailures():
		requestID := getRequestID(c)
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeStorageUnavailable,
			"Ledger storage is unavailable, retry the delivery later", requestID)
		resp.Data = result
		c.JSON(http.StatusBadGateway, resp)
	default:
		requestID := getRequestID(c)
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnprocessable,
			"No payload in the delivery could be applied", requestID)
		resp.Data = result
		c.JSON(http.StatusUnprocessableEntity, resp)
	}
}

// RegisterRoutes registers webhook ingestion routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/orders", h.ReceiveOrders)
	}
}
