package repository

import (
	"context"

	"github.com/google/uuid"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
	"academy-api/internal/usecase/shared"
)

type AuditRepository struct{}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

const appendAuditSQL = `
INSERT INTO audit_logs (id, table_name, operation, record_id, actor_id, before, after, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *AuditRepository) Append(ctx context.Context, q db.DBTX, entry shared.AuditEntry) error {
	_, err := q.Exec(ctx, appendAuditSQL,
		pgconv.UUIDToPgtype(uuid.New()),
		entry.EntityType,
		entry.Action,
		pgconv.UUIDToPgtype(entry.EntityID),
		pgconv.UUIDPtrToPgtype(entry.ActorID),
		entry.Before,
		entry.After,
		pgconv.TimeToPgtype(entry.OccurredAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append audit log", err)
	}
	return nil
}
