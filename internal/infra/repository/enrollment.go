package repository

import (
	"context"

	"github.com/google/uuid"

	"academy-api/internal/domain/enrollment"
	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
	"academy-api/internal/usecase/shared"
)

type EnrollmentRepository struct{}

func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{}
}

const createEnrollmentSQL = `
INSERT INTO enrollments (id, code, student_id, section_id, request_id, state, enrolled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

func (r *EnrollmentRepository) Create(ctx context.Context, q db.DBTX, enr *enrollment.Enrollment) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, createEnrollmentSQL,
		pgconv.UUIDToPgtype(enr.ID()),
		enr.Code(),
		pgconv.UUIDPtrToPgtype(enr.StudentID()),
		pgconv.UUIDToPgtype(enr.SectionID()),
		pgconv.UUIDToPgtype(enr.RequestID()),
		string(enr.State()),
		pgconv.TimeToPgtype(enr.EnrolledAt()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create enrollment", err)
	}
	return id, nil
}

const findEnrollmentByRequestSQL = `
SELECT id, code, section_id, request_id, state
FROM enrollments
WHERE request_id = $1`

func (r *EnrollmentRepository) FindByRequestID(ctx context.Context, q db.DBTX, requestID uuid.UUID) (*shared.EnrollmentSnapshot, error) {
	var snap shared.EnrollmentSnapshot
	err := q.QueryRow(ctx, findEnrollmentByRequestSQL, pgconv.UUIDToPgtype(requestID)).
		Scan(&snap.ID, &snap.Code, &snap.SectionID, &snap.RequestID, &snap.State)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("enrollment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find enrollment", err)
	}
	return &snap, nil
}
