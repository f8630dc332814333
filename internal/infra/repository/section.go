package repository

import (
	"context"

	"github.com/google/uuid"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
)

type SectionRepository struct{}

func NewSectionRepository() *SectionRepository {
	return &SectionRepository{}
}

const reserveSeatSQL = `
UPDATE sections
SET seats_available = seats_available - 1, updated_at = now()
WHERE id = $1 AND seats_available > 0`

// ReserveSeat takes one seat iff one remains. Zero rows affected means
// another transaction took the last seat between read and write.
func (r *SectionRepository) ReserveSeat(ctx context.Context, q db.DBTX, sectionID uuid.UUID) error {
	tag, err := q.Exec(ctx, reserveSeatSQL, pgconv.UUIDToPgtype(sectionID))
	if err != nil {
		return infra.WrapRepoErr("failed to reserve seat", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("no seats available", nil, infra.KindConflict)
	}
	return nil
}

const releaseSeatSQL = `
UPDATE sections
SET seats_available = LEAST(seats_available + 1, capacity), updated_at = now()
WHERE id = $1`

func (r *SectionRepository) ReleaseSeat(ctx context.Context, q db.DBTX, sectionID uuid.UUID) error {
	tag, err := q.Exec(ctx, releaseSeatSQL, pgconv.UUIDToPgtype(sectionID))
	if err != nil {
		return infra.WrapRepoErr("failed to release seat", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("section not found", nil, infra.KindNotFound)
	}
	return nil
}

// recomputeSeatsSQL rebuilds seats_available from capacity minus every
// live claim: pending/observations requests holding the section as
// principal, pending/observations requests holding it through their
// selected promotion, and active enrollments. Clamped at zero.
const recomputeSeatsSQL = `
UPDATE sections s
SET seats_available = GREATEST(
        s.capacity
        - (SELECT count(*) FROM enrollment_requests r
           WHERE r.section_id = s.id
             AND r.state IN ('pending', 'observations'))
        - (SELECT count(*) FROM enrollment_requests r
           JOIN promotions p ON p.id = r.promotion_id
           WHERE p.promotional_section_id = s.id
             AND r.state IN ('pending', 'observations'))
        - (SELECT count(*) FROM enrollments e
           WHERE e.section_id = s.id
             AND e.state = 'active'),
        0),
    updated_at = now()
WHERE s.id = $1
RETURNING s.seats_available`

func (r *SectionRepository) RecomputeSeats(ctx context.Context, q db.DBTX, sectionID uuid.UUID) (int32, error) {
	var seats int32
	err := q.QueryRow(ctx, recomputeSeatsSQL, pgconv.UUIDToPgtype(sectionID)).Scan(&seats)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("section not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to recompute seats", err)
	}
	return seats, nil
}
