package readstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"academy-api/internal/domain/section"
	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

type SectionReadStore struct {
	db db.DBTX
}

func NewSectionReadStore(q db.DBTX) *SectionReadStore {
	return &SectionReadStore{db: q}
}

const sectionSnapshotColumns = `
s.id, s.course_type_id, s.code, s.name, s.schedule_slot, s.start_date,
s.capacity, s.seats_available, s.state,
ct.payment_modality, ct.monthly_rate_cents, ct.session_count,
ct.session_rate_cents, ct.enrollment_fee_cents`

const sectionByIDSQL = `
SELECT ` + sectionSnapshotColumns + `
FROM sections s
JOIN course_types ct ON ct.id = s.course_type_id
WHERE s.id = $1`

func (r *SectionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.SectionSnapshot, error) {
	row := r.db.QueryRow(ctx, sectionByIDSQL, pgconv.UUIDToPgtype(id))
	snap, err := scanSectionSnapshot(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("section not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find section by ID", err)
	}
	return snap, nil
}

// Best match for a course type and schedule: active, seats left, the
// soonest start date first, lowest id as the tiebreak.
const sectionBestMatchSQL = `
SELECT ` + sectionSnapshotColumns + `
FROM sections s
JOIN course_types ct ON ct.id = s.course_type_id
WHERE s.course_type_id = $1
  AND s.schedule_slot = $2
  AND s.state = 'active'
  AND s.seats_available > 0
ORDER BY s.start_date ASC, s.id ASC
LIMIT 1`

func (r *SectionReadStore) FindBestMatch(ctx context.Context, courseTypeID uuid.UUID, scheduleSlot string) (*shared.SectionSnapshot, error) {
	row := r.db.QueryRow(ctx, sectionBestMatchSQL, pgconv.UUIDToPgtype(courseTypeID), scheduleSlot)
	snap, err := scanSectionSnapshot(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no open section for course and schedule", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to resolve section", err)
	}
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSectionSnapshot(row rowScanner) (*shared.SectionSnapshot, error) {
	var (
		snap      shared.SectionSnapshot
		startDate pgtype.Date
		modality  string
	)
	err := row.Scan(
		&snap.ID, &snap.CourseTypeID, &snap.Code, &snap.Name, &snap.ScheduleSlot, &startDate,
		&snap.Capacity, &snap.SeatsAvailable, &snap.State,
		&modality, &snap.Pricing.MonthlyRateCents, &snap.Pricing.SessionCount,
		&snap.Pricing.SessionRateCents, &snap.Pricing.EnrollmentFeeCents,
	)
	if err != nil {
		return nil, err
	}
	snap.StartDate = startDate.Time
	snap.Pricing.Modality = section.PaymentModality(modality)
	return &snap, nil
}

const availableSectionsSQL = `
SELECT s.id, s.course_type_id, ct.name, s.code, s.name, s.schedule_slot,
       s.start_date, s.capacity, s.seats_available
FROM sections s
JOIN course_types ct ON ct.id = s.course_type_id
WHERE s.state = 'active' AND s.seats_available > 0
ORDER BY s.start_date ASC, s.code ASC`

func (r *SectionReadStore) FindAvailable(ctx context.Context) ([]*queries.SectionView, error) {
	rows, err := r.db.Query(ctx, availableSectionsSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list available sections", err)
	}
	defer rows.Close()

	var result []*queries.SectionView
	for rows.Next() {
		var (
			view      queries.SectionView
			startDate pgtype.Date
		)
		if err := rows.Scan(
			&view.ID, &view.CourseTypeID, &view.CourseTypeName, &view.Code, &view.Name,
			&view.ScheduleSlot, &startDate, &view.Capacity, &view.SeatsAvailable,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan section row", err)
		}
		view.StartDate = startDate.Time
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read section rows", err)
	}
	return result, nil
}
