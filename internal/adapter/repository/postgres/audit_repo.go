package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	queries *generated.Queries
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{queries: generated.New(db)}
}

// CreateTx inserts an audit log entry inside tx
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	before, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}
	after, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	return queriesFor(r.queries, tx).CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           log.ID,
		UserID:       log.UserID,
		Action:       string(log.Action),
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		BeforeState:  before,
		AfterState:   after,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})
}

// ListByResource returns the newest audit entries for one resource
func (r *AuditRepository) ListByResource(ctx context.Context, userID, resourceType, resourceID string, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.queries.ListAuditLogsByResource(ctx, generated.ListAuditLogsByResourceParams{
		UserID:       userID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		log := &domain.AuditLog{
			ID:           row.ID,
			UserID:       row.UserID,
			Action:       domain.AuditAction(row.Action),
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			CreatedAt:    row.CreatedAt.Time,
		}
		if row.BeforeState != nil {
			_ = json.Unmarshal(row.BeforeState, &log.BeforeState)
		}
		if row.AfterState != nil {
			_ = json.Unmarshal(row.AfterState, &log.AfterState)
		}
		logs = append(logs, log)
	}

	return logs, nil
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

var _ usecase.AuditRepository = (*AuditRepository)(nil)
