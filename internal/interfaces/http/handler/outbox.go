package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	eventapp "github.com/parcelhub/backend/internal/application/event"
)

// DeliveryOperations inspects and requeues outbox deliveries
type DeliveryOperations interface {
	ListDeadEntries(ctx context.Context, filter eventapp.OutboxFilter) (*eventapp.OutboxListResult, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error)
	RetryDeadEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error)
	RetryDeadCashEntries(ctx context.Context) (int64, error)
	GetStats(ctx context.Context) (*eventapp.OutboxStatsDTO, error)
}

// RequeueResult reports how many entries went back to PENDING
type RequeueResult struct {
	Requeued int64 `json:"requeued"`
}

// OutboxHandler serves /api/v1/ledger/outbox for ADMIN and SUPER_ADMIN
type OutboxHandler struct {
	BaseHandler
	deliveries DeliveryOperations
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(deliveries DeliveryOperations) *OutboxHandler {
	return &OutboxHandler{deliveries: deliveries}
}

// RegisterRoutes mounts the outbox routes under rg
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	o := rg.Group("/ledger/outbox", h.requireAdmin)
	o.GET("/stats", h.GetStats)
	o.GET("/dead", h.ListDead)
	o.POST("/dead/retry", h.RetryAllCash)
	o.GET("/entries/:id", h.GetEntry)
	o.POST("/entries/:id/retry", h.RetryEntry)
}

func (h *OutboxHandler) requireAdmin(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		c.Abort()
		return
	}
	if !caller.Role.IsBranchExempt() {
		h.Forbidden(c, "Administrator role required")
		c.Abort()
		return
	}
	c.Next()
}

// GetStats godoc
// @ID           getOutboxStats
// @Summary      Outbox delivery counts per status
// @Tags         ledger-outbox
// @Produce      json
// @Success      200 {object} APIResponse[eventapp.OutboxStatsDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.deliveries.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDead godoc
// @ID           listDeadOutboxEntries
// @Summary      List entries that exhausted their retries
// @Tags         ledger-outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]eventapp.OutboxEntryDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/outbox/dead [get]
func (h *OutboxHandler) ListDead(c *gin.Context) {
	var filter eventapp.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.deliveries.ListDeadEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Entries, result.Total, result.Page, result.PageSize)
}

// RetryAllCash godoc
// @ID           retryDeadCashEntries
// @Summary      Requeue every dead cash entry
// @Tags         ledger-outbox
// @Produce      json
// @Success      200 {object} APIResponse[RequeueResult]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/outbox/dead/retry [post]
func (h *OutboxHandler) RetryAllCash(c *gin.Context) {
	n, err := h.deliveries.RetryDeadCashEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RequeueResult{Requeued: n})
}

// GetEntry godoc
// @ID           getOutboxEntry
// @Summary      Get an outbox entry
// @Tags         ledger-outbox
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[eventapp.OutboxEntryDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/outbox/entries/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	entry, err := h.deliveries.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryEntry godoc
// @ID           retryOutboxEntry
// @Summary      Requeue one dead entry
// @Tags         ledger-outbox
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[eventapp.OutboxEntryDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Entry is not dead"
// @Security     BearerAuth
// @Router       /ledger/outbox/entries/{id}/retry [post]
func (h *OutboxHandler) RetryEntry(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	entry, err := h.deliveries.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
