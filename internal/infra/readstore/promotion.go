package readstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
	"academy-api/internal/usecase/shared"
)

type PromotionReadStore struct {
	db db.DBTX
}

func NewPromotionReadStore(q db.DBTX) *PromotionReadStore {
	return &PromotionReadStore{db: q}
}

const promotionByIDSQL = `
SELECT id, name, principal_section_id, promotional_section_id,
       quota_limit, quota_used, active, valid_from, valid_to
FROM promotions
WHERE id = $1`

func (r *PromotionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.PromotionSnapshot, error) {
	var (
		snap       shared.PromotionSnapshot
		quotaLimit pgtype.Int4
		validFrom  pgtype.Timestamptz
		validTo    pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, promotionByIDSQL, pgconv.UUIDToPgtype(id)).Scan(
		&snap.ID, &snap.Name, &snap.PrincipalSectionID, &snap.PromotionalSectionID,
		&quotaLimit, &snap.QuotaUsed, &snap.Active, &validFrom, &validTo,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promotion by ID", err)
	}
	snap.QuotaLimit = pgconv.Int32PtrFromPgtype(quotaLimit)
	snap.ValidFrom = pgconv.TimePtrFromPgtype(validFrom)
	snap.ValidTo = pgconv.TimePtrFromPgtype(validTo)
	return &snap, nil
}
