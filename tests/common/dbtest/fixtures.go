//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Fixed fixture ids so tests can reference the seeded catalogue directly.
var (
	CourseTypeEnglishID = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	CourseTypeWeldingID = uuid.MustParse("11111111-0000-0000-0000-000000000002")

	SectionPrincipalID   = uuid.MustParse("22222222-0000-0000-0000-000000000001")
	SectionPromotionalID = uuid.MustParse("22222222-0000-0000-0000-000000000002")
	SectionFullID        = uuid.MustParse("22222222-0000-0000-0000-000000000003")
	SectionInactiveID    = uuid.MustParse("22222222-0000-0000-0000-000000000004")
	SectionWeldingID     = uuid.MustParse("22222222-0000-0000-0000-000000000005")

	PromotionEarlyBirdID = uuid.MustParse("33333333-0000-0000-0000-000000000001")
)

// inserts the course catalogue, sections, and promotion used by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO course_types (id, name, payment_modality, monthly_rate_cents, session_count, session_rate_cents, enrollment_fee_cents) VALUES
		    ($1, 'English A1', 'monthly', 9000, 0, 0, 0),
		    ($2, 'Welding Basics', 'per_session', 0, 12, 2500, 5000)
		ON CONFLICT (id) DO NOTHING;
	`, CourseTypeEnglishID, CourseTypeWeldingID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO sections (id, course_type_id, code, name, schedule_slot, start_date, capacity, seats_available, state) VALUES
		    ($1, $6, 'ENG-A1-01', 'English A1 Evening', 'mon-wed-18h', '2025-04-01', 20, 20, 'active'),
		    ($2, $6, 'ENG-A1-02', 'English A1 Promo',   'tue-thu-18h', '2025-04-01', 10, 10, 'active'),
		    ($3, $6, 'ENG-A1-03', 'English A1 Full',    'sat-09h',     '2025-04-01',  5,  0, 'active'),
		    ($4, $6, 'ENG-A1-04', 'English A1 Closed',  'sun-09h',     '2025-04-01', 20, 20, 'inactive'),
		    ($5, $7, 'WLD-01',    'Welding Mornings',   'mon-fri-08h', '2025-05-01', 15, 15, 'active')
		ON CONFLICT (id) DO NOTHING;
	`, SectionPrincipalID, SectionPromotionalID, SectionFullID, SectionInactiveID, SectionWeldingID,
		CourseTypeEnglishID, CourseTypeWeldingID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO promotions (id, name, principal_section_id, promotional_section_id, quota_limit, quota_used, active) VALUES
		    ($1, 'Early Bird', $2, $3, 5, 0, TRUE)
		ON CONFLICT (id) DO NOTHING;
	`, PromotionEarlyBirdID, SectionPrincipalID, SectionPromotionalID)
	return err
}

// truncates the mutable tables and restores the seeded catalogue
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		TRUNCATE notification_jobs, audit_logs, enrollments, enrollment_requests,
		         promotions, sections, course_types
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		return err
	}

	return SeedReferenceData(pool)
}

// SectionSeats reads the current seats_available for assertions.
func SectionSeats(t *testing.T, db DBLike, sectionID uuid.UUID) int32 {
	t.Helper()

	var seats int32
	err := db.QueryRow(context.Background(),
		"SELECT seats_available FROM sections WHERE id = $1", sectionID).Scan(&seats)
	require.NoError(t, err)
	return seats
}

// PromotionQuotaUsed reads the consumed quota for assertions.
func PromotionQuotaUsed(t *testing.T, db DBLike, promotionID uuid.UUID) int32 {
	t.Helper()

	var used int32
	err := db.QueryRow(context.Background(),
		"SELECT quota_used FROM promotions WHERE id = $1", promotionID).Scan(&used)
	require.NoError(t, err)
	return used
}

// RequestState reads the lifecycle state of a stored request.
func RequestState(t *testing.T, db DBLike, requestID uuid.UUID) string {
	t.Helper()

	var state string
	err := db.QueryRow(context.Background(),
		"SELECT state FROM enrollment_requests WHERE id = $1", requestID).Scan(&state)
	require.NoError(t, err)
	return state
}

// CreateActiveEnrollment plants an enrollment row backed by an approved
// request, for repeat-intake guard scenarios.
func CreateActiveEnrollment(t *testing.T, db DBLike, nationalID string, sectionID uuid.UUID) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	requestID := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO enrollment_requests
		    (id, code, national_id, first_name, last_name, email, phone,
		     course_type_id, section_id, schedule_slot, amount_cents,
		     payment_method, proof_reference, state)
		SELECT $1, $2, $3, 'Seeded', 'Student', 'seed@example.com', '0999999999',
		       s.course_type_id, s.id, s.schedule_slot, 9000,
		       'cash', $4, 'approved'
		FROM sections s WHERE s.id = $5`,
		requestID, "REQ-SEED-"+requestID.String()[:8], nationalID, "SEED-"+requestID.String()[:8], sectionID)
	require.NoError(t, err)

	enrollmentID := uuid.New()
	_, err = db.Exec(ctx, `
		INSERT INTO enrollments (id, code, section_id, request_id, state)
		VALUES ($1, $2, $3, $4, 'active')`,
		enrollmentID, "ENR-SEED-"+enrollmentID.String()[:8], sectionID, requestID)
	require.NoError(t, err)

	return enrollmentID
}
