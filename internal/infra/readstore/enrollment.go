package readstore

import (
	"context"

	"github.com/google/uuid"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
)

type EnrollmentReadStore struct {
	db db.DBTX
}

func NewEnrollmentReadStore(q db.DBTX) *EnrollmentReadStore {
	return &EnrollmentReadStore{db: q}
}

const activeEnrollmentExistsSQL = `
SELECT EXISTS (
    SELECT 1
    FROM enrollments e
    JOIN enrollment_requests r ON r.id = e.request_id
    JOIN sections s ON s.id = e.section_id
    WHERE r.national_id = $1
      AND s.course_type_id = $2
      AND e.state = 'active'
)`

func (r *EnrollmentReadStore) ActiveExists(ctx context.Context, nationalID string, courseTypeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, activeEnrollmentExistsSQL, nationalID, pgconv.UUIDToPgtype(courseTypeID)).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check active enrollment", err)
	}
	return exists, nil
}

const activeInSectionSQL = `
SELECT EXISTS (
    SELECT 1
    FROM enrollments e
    JOIN enrollment_requests r ON r.id = e.request_id
    WHERE r.national_id = $1
      AND e.section_id = $2
      AND e.state = 'active'
)`

func (r *EnrollmentReadStore) ActiveExistsInSection(ctx context.Context, nationalID string, sectionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, activeInSectionSQL, nationalID, pgconv.UUIDToPgtype(sectionID)).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check section enrollment", err)
	}
	return exists, nil
}
