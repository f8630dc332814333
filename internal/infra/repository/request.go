package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/request"
	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
)

type RequestRepository struct{}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{}
}

const createRequestSQL = `
INSERT INTO enrollment_requests (
    id, code,
    national_id, first_name, last_name, email, phone, birth_date,
    address, gender, emergency_contact, student_id,
    course_type_id, section_id, schedule_slot,
    amount_cents, payment_method, proof_reference, proof_bank,
    transfer_date, received_by,
    proof_url, id_document_url, certificate_url,
    promotion_id, state,
    created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
    $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
)
RETURNING id`

func (r *RequestRepository) Create(ctx context.Context, q db.DBTX, req *request.EnrollmentRequest) (uuid.UUID, error) {
	app := req.Applicant()
	pay := req.Payment()
	att := req.Attachments()

	var id uuid.UUID
	err := q.QueryRow(ctx, createRequestSQL,
		pgconv.UUIDToPgtype(req.ID()),
		req.Code(),
		app.NationalID,
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		pgconv.DatePtrToPgtype(app.BirthDate),
		app.Address,
		app.Gender,
		app.EmergencyContact,
		pgconv.UUIDPtrToPgtype(app.StudentID),
		pgconv.UUIDToPgtype(req.CourseTypeID()),
		pgconv.UUIDToPgtype(req.SectionID()),
		req.ScheduleSlot(),
		pay.AmountCents,
		pay.Method.String(),
		pay.ProofReference.String(),
		pgconv.StringPtrToPgtype(pay.Bank),
		pgconv.DatePtrToPgtype(pay.TransferDate),
		pgconv.StringPtrToPgtype(pay.ReceivedBy),
		pgconv.StringPtrToPgtype(att.ProofURL),
		pgconv.StringPtrToPgtype(att.IDDocumentURL),
		pgconv.StringPtrToPgtype(att.CertificateURL),
		pgconv.UUIDPtrToPgtype(req.PromotionID()),
		req.Status().String(),
		pgconv.TimeToPgtype(req.CreatedAt()),
		pgconv.TimeToPgtype(req.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create enrollment request", err)
	}
	return id, nil
}

// The state predicate rejects a write racing another decision: the
// snapshot read is not locked, so a request that left the reviewable
// states between read and write must not be decided again.
const updateDecisionSQL = `
UPDATE enrollment_requests
SET state = $2, reviewer_id = $3, reviewer_notes = $4, decided_at = $5, updated_at = $6
WHERE id = $1 AND state IN ('pending', 'observations')`

func (r *RequestRepository) UpdateDecision(ctx context.Context, q db.DBTX, req *request.EnrollmentRequest) error {
	tag, err := q.Exec(ctx, updateDecisionSQL,
		pgconv.UUIDToPgtype(req.ID()),
		req.Status().String(),
		pgconv.UUIDPtrToPgtype(req.ReviewerID()),
		pgconv.StringPtrToPgtype(req.ReviewerNotes()),
		pgconv.TimePtrToPgtype(req.DecidedAt()),
		pgconv.TimeToPgtype(req.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update request decision", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("enrollment request not decidable", nil, infra.KindConflict)
	}
	return nil
}

const updatePromotionSQL = `
UPDATE enrollment_requests
SET promotion_id = $2, updated_at = $3
WHERE id = $1 AND state IN ('pending', 'observations')`

func (r *RequestRepository) UpdatePromotion(ctx context.Context, q db.DBTX, requestID uuid.UUID, promotionID *uuid.UUID, updatedAt time.Time) error {
	tag, err := q.Exec(ctx, updatePromotionSQL,
		pgconv.UUIDToPgtype(requestID),
		pgconv.UUIDPtrToPgtype(promotionID),
		pgconv.TimeToPgtype(updatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update request promotion", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("enrollment request not modifiable", nil, infra.KindConflict)
	}
	return nil
}
