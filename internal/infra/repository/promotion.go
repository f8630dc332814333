package repository

import (
	"context"

	"github.com/google/uuid"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
)

type PromotionRepository struct{}

func NewPromotionRepository() *PromotionRepository {
	return &PromotionRepository{}
}

const incrementQuotaSQL = `
UPDATE promotions
SET quota_used = quota_used + 1, updated_at = now()
WHERE id = $1 AND (quota_limit IS NULL OR quota_used < quota_limit)`

// IncrementQuotaUsed consumes one quota slot. Zero rows affected means
// the quota filled up (or the promotion row vanished) since validation.
func (r *PromotionRepository) IncrementQuotaUsed(ctx context.Context, q db.DBTX, promotionID uuid.UUID) error {
	tag, err := q.Exec(ctx, incrementQuotaSQL, pgconv.UUIDToPgtype(promotionID))
	if err != nil {
		return infra.WrapRepoErr("failed to increment promotion quota", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("promotion quota exhausted", nil, infra.KindConflict)
	}
	return nil
}
