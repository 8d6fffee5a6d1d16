// Package event exposes the delivery state of committed ledger events to operators.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Error codes returned by DeliveryService
const (
	CodeEntryNotFound = "NOT_FOUND"
	CodeInvalidState  = "INVALID_STATE"
	CodePersistence   = "PERSISTENCE_ERROR"
)

// DeliveryService lets operators inspect the outbox and push DEAD cash
// entries back into delivery
type DeliveryService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(repo shared.OutboxRepository, logger *zap.Logger) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{repo: repo, logger: logger}
}

// OutboxEntryDTO is an outbox row as operators see it
type OutboxEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
	LastError     string          `json:"last_error,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OutboxFilter pages through dead entries
type OutboxFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OutboxListResult is one page of entries
type OutboxListResult struct {
	Entries  []OutboxEntryDTO `json:"entries"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// OutboxStatsDTO counts entries per delivery state
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ListDeadEntries returns entries that exhausted their retries, newest first
func (s *DeliveryService) ListDeadEntries(ctx context.Context, filter OutboxFilter) (*OutboxListResult, error) {
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	entries, total, err := s.repo.FindDead(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list dead outbox entries", zap.Error(err))
		return nil, shared.WrapDomainError(CodePersistence, "Failed to list dead outbox entries", err)
	}

	out := make([]OutboxEntryDTO, len(entries))
	for i, entry := range entries {
		out[i] = toOutboxEntryDTO(entry)
	}
	return &OutboxListResult{Entries: out, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetEntry returns a single outbox entry
func (s *DeliveryService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry moves one DEAD entry back to PENDING with a fresh retry budget
func (s *DeliveryService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.NewDomainError(CodeInvalidState, "Only dead entries can be retried")
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to requeue outbox entry", zap.String("id", id.String()), zap.Error(err))
		return nil, shared.WrapDomainError(CodePersistence, "Failed to requeue outbox entry", err)
	}

	s.logger.Info("Dead outbox entry requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadCashEntries requeues every DEAD cash entry request in one statement
func (s *DeliveryService) RetryDeadCashEntries(ctx context.Context) (int64, error) {
	n, err := s.repo.RequeueDead(ctx, ledger.EventTypeCashEntryRequested)
	if err != nil {
		s.logger.Error("Failed to requeue dead cash entries", zap.Error(err))
		return 0, shared.WrapDomainError(CodePersistence, "Failed to requeue dead cash entries", err)
	}
	s.logger.Info("Dead cash entries requeued", zap.Int64("count", n))
	return n, nil
}

// GetStats counts entries per status
func (s *DeliveryService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count outbox entries", zap.Error(err))
		return nil, shared.WrapDomainError(CodePersistence, "Failed to count outbox entries", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func (s *DeliveryService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError(CodeEntryNotFound, "Outbox entry not found")
	}
	if err != nil {
		s.logger.Error("Failed to load outbox entry", zap.String("id", id.String()), zap.Error(err))
		return nil, shared.WrapDomainError(CodePersistence, "Failed to load outbox entry", err)
	}
	if entry == nil {
		return nil, shared.NewDomainError(CodeEntryNotFound, "Outbox entry not found")
	}
	return entry, nil
}

func toOutboxEntryDTO(entry *shared.OutboxEntry) OutboxEntryDTO {
	dto := OutboxEntryDTO{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
	if json.Valid(entry.Payload) {
		dto.Payload = entry.Payload
	}
	return dto
}
