package readstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

type RequestReadStore struct {
	db db.DBTX
}

func NewRequestReadStore(q db.DBTX) *RequestReadStore {
	return &RequestReadStore{db: q}
}

const requestViewSQL = `
SELECT r.id, r.code,
       r.national_id, r.first_name, r.last_name, r.email, r.phone, r.birth_date,
       r.address, r.gender, r.emergency_contact, r.student_id,
       r.course_type_id, r.section_id, s.code, s.name, r.schedule_slot,
       r.amount_cents, r.payment_method, r.proof_reference, r.proof_bank,
       r.transfer_date, r.received_by,
       r.proof_url, r.id_document_url, r.certificate_url,
       r.promotion_id, p.name,
       r.state, r.reviewer_id, r.reviewer_notes, r.decided_at,
       r.created_at, r.updated_at
FROM enrollment_requests r
JOIN sections s ON s.id = r.section_id
LEFT JOIN promotions p ON p.id = r.promotion_id
WHERE r.id = $1`

func (r *RequestReadStore) FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*queries.RequestView, error) {
	var (
		view         queries.RequestView
		birthDate    pgtype.Date
		studentID    pgtype.UUID
		proofBank    pgtype.Text
		transferDate pgtype.Date
		receivedBy   pgtype.Text
		proofURL     pgtype.Text
		idDocURL     pgtype.Text
		certURL      pgtype.Text
		promotionID  pgtype.UUID
		promoName    pgtype.Text
		reviewerID   pgtype.UUID
		notes        pgtype.Text
		decidedAt    pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)

	err := q.QueryRow(ctx, requestViewSQL, pgconv.UUIDToPgtype(id)).Scan(
		&view.ID, &view.Code,
		&view.NationalID, &view.FirstName, &view.LastName, &view.Email, &view.Phone, &birthDate,
		&view.Address, &view.Gender, &view.EmergencyContact, &studentID,
		&view.CourseTypeID, &view.SectionID, &view.SectionCode, &view.SectionName, &view.ScheduleSlot,
		&view.AmountCents, &view.PaymentMethod, &view.ProofReference, &proofBank,
		&transferDate, &receivedBy,
		&proofURL, &idDocURL, &certURL,
		&promotionID, &promoName,
		&view.State, &reviewerID, &notes, &decidedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("enrollment request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find enrollment request by ID", err)
	}

	view.BirthDate = pgconv.DatePtrFromPgtype(birthDate)
	view.StudentID = pgconv.UUIDPtrFromPgtype(studentID)
	view.ProofBank = pgconv.StringPtrFromPgtype(proofBank)
	view.TransferDate = pgconv.DatePtrFromPgtype(transferDate)
	view.ReceivedBy = pgconv.StringPtrFromPgtype(receivedBy)
	view.ProofURL = pgconv.StringPtrFromPgtype(proofURL)
	view.IDDocumentURL = pgconv.StringPtrFromPgtype(idDocURL)
	view.CertificateURL = pgconv.StringPtrFromPgtype(certURL)
	view.PromotionID = pgconv.UUIDPtrFromPgtype(promotionID)
	view.PromotionName = pgconv.StringPtrFromPgtype(promoName)
	view.ReviewerID = pgconv.UUIDPtrFromPgtype(reviewerID)
	view.ReviewerNotes = pgconv.StringPtrFromPgtype(notes)
	view.DecidedAt = pgconv.TimePtrFromPgtype(decidedAt)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &view, nil
}

const requestListSQL = `
SELECT r.id, r.code, r.first_name, r.last_name, s.code, s.name,
       r.amount_cents, r.payment_method, r.state, r.created_at
FROM enrollment_requests r
JOIN sections s ON s.id = r.section_id
%s
ORDER BY r.created_at DESC, r.id DESC
LIMIT $%d OFFSET $%d`

const requestCountSQL = `
SELECT count(*)
FROM enrollment_requests r
%s`

func requestFilterClause(filter queries.RequestFilter) (string, []any) {
	clause := ""
	args := []any{}
	appendCond := func(cond string, arg any) {
		args = append(args, arg)
		if clause == "" {
			clause = "WHERE "
		} else {
			clause += " AND "
		}
		clause += fmt.Sprintf(cond, len(args))
	}

	if filter.State != nil {
		appendCond("r.state = $%d", *filter.State)
	}
	if filter.CourseTypeID != nil {
		appendCond("r.course_type_id = $%d", pgconv.UUIDToPgtype(*filter.CourseTypeID))
	}
	return clause, args
}

func (r *RequestReadStore) FindFiltered(ctx context.Context, q db.DBTX, filter queries.RequestFilter) ([]*queries.RequestListItem, error) {
	clause, args := requestFilterClause(filter)
	sql := fmt.Sprintf(requestListSQL, clause, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list enrollment requests", err)
	}
	defer rows.Close()

	var result []*queries.RequestListItem
	for rows.Next() {
		var (
			item      queries.RequestListItem
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&item.ID, &item.Code, &item.FirstName, &item.LastName,
			&item.SectionCode, &item.SectionName,
			&item.AmountCents, &item.PaymentMethod, &item.State, &createdAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan enrollment request row", err)
		}
		item.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read enrollment request rows", err)
	}
	return result, nil
}

func (r *RequestReadStore) CountFiltered(ctx context.Context, q db.DBTX, filter queries.RequestFilter) (int64, error) {
	clause, args := requestFilterClause(filter)
	sql := fmt.Sprintf(requestCountSQL, clause)

	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, infra.WrapRepoErr("failed to count enrollment requests", err)
	}
	return total, nil
}

const requestStateCountSQL = `
SELECT state, count(*)
FROM enrollment_requests
GROUP BY state
ORDER BY state`

func (r *RequestReadStore) CountGroupedByState(ctx context.Context, q db.DBTX) ([]queries.StateCount, error) {
	rows, err := q.Query(ctx, requestStateCountSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count requests by state", err)
	}
	defer rows.Close()

	var result []queries.StateCount
	for rows.Next() {
		var sc queries.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan state count row", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read state count rows", err)
	}
	return result, nil
}

const requestSnapshotSQL = `
SELECT id, code, section_id, student_id, promotion_id, state, national_id, email
FROM enrollment_requests
WHERE id = $1`

func (r *RequestReadStore) FindSnapshotByID(ctx context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	var (
		snap        shared.RequestSnapshot
		studentID   pgtype.UUID
		promotionID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, requestSnapshotSQL, pgconv.UUIDToPgtype(id)).Scan(
		&snap.ID, &snap.Code, &snap.SectionID, &studentID, &promotionID,
		&snap.Status, &snap.NationalID, &snap.Email,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("enrollment request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find enrollment request snapshot", err)
	}
	snap.StudentID = pgconv.UUIDPtrFromPgtype(studentID)
	snap.PromotionID = pgconv.UUIDPtrFromPgtype(promotionID)
	return &snap, nil
}

const proofInUseSQL = `
SELECT EXISTS (
    SELECT 1 FROM enrollment_requests
    WHERE upper(proof_reference) = upper($1)
)`

func (r *RequestReadStore) ProofReferenceInUse(ctx context.Context, ref string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, proofInUseSQL, ref).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check proof reference", err)
	}
	return exists, nil
}
