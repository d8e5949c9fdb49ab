package usecase

import (
	"context"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

// changeRecorder writes the outbox event and audit row that accompany
// every mutation. Both go through the caller's transaction.
type changeRecorder struct {
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
}

func (r changeRecorder) emit(
	ctx context.Context,
	tx Transaction,
	aggregateType, aggregateID, eventType string,
	payload map[string]any,
	at time.Time,
) error {
	if r.outboxRepo == nil {
		return nil
	}
	return r.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            r.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	})
}

func (r changeRecorder) audit(
	ctx context.Context,
	tx Transaction,
	userID string,
	action domain.AuditAction,
	resourceType, resourceID string,
	before, after any,
	at time.Time,
) error {
	if r.auditRepo == nil {
		return nil
	}
	return r.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		CreatedAt:    at,
	})
}
