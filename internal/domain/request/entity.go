package request

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrReservationExpired = errors.New("request no longer holds a reservation")
)

// Applicant is the identity block captured at intake. StudentID is set
// when the applicant is an already-known student.
type Applicant struct {
	NationalID       string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	BirthDate        *time.Time
	Address          string
	Gender           string
	EmergencyContact string
	StudentID        *uuid.UUID
}

// Payment is the proof block captured at intake. ProofReference is
// globally unique across requests in every state.
type Payment struct {
	AmountCents    int64
	Method         PaymentMethod
	ProofReference ProofReference
	Bank           *string
	TransferDate   *time.Time
	ReceivedBy     *string
}

// Attachments holds references to externally stored documents; upload
// itself happens before the request is created.
type Attachments struct {
	ProofURL       *string
	IDDocumentURL  *string
	CertificateURL *string
}

type EnrollmentRequest struct {
	id            uuid.UUID
	code          string
	applicant     Applicant
	courseTypeID  uuid.UUID
	sectionID     uuid.UUID
	scheduleSlot  string
	payment       Payment
	attachments   Attachments
	promotionID   *uuid.UUID
	status        Status
	reviewerID    *uuid.UUID
	reviewerNotes *string
	decidedAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewEnrollmentRequest creates a pending request against an already
// resolved section. Validation happens in the intake validator before
// this point.
func NewEnrollmentRequest(
	applicant Applicant,
	courseTypeID, sectionID uuid.UUID,
	scheduleSlot string,
	payment Payment,
	attachments Attachments,
	promotionID *uuid.UUID,
	now time.Time,
) *EnrollmentRequest {
	return &EnrollmentRequest{
		id:           uuid.New(),
		code:         NewRequestCode(now),
		applicant:    applicant,
		courseTypeID: courseTypeID,
		sectionID:    sectionID,
		scheduleSlot: scheduleSlot,
		payment:      payment,
		attachments:  attachments,
		promotionID:  promotionID,
		status:       StatusPending,
		createdAt:    now,
		updatedAt:    now,
	}
}

func Reconstruct(
	id uuid.UUID,
	code string,
	applicant Applicant,
	courseTypeID, sectionID uuid.UUID,
	scheduleSlot string,
	payment Payment,
	attachments Attachments,
	promotionID *uuid.UUID,
	status Status,
	reviewerID *uuid.UUID,
	reviewerNotes *string,
	decidedAt *time.Time,
	createdAt, updatedAt time.Time,
) *EnrollmentRequest {
	return &EnrollmentRequest{
		id:            id,
		code:          code,
		applicant:     applicant,
		courseTypeID:  courseTypeID,
		sectionID:     sectionID,
		scheduleSlot:  scheduleSlot,
		payment:       payment,
		attachments:   attachments,
		promotionID:   promotionID,
		status:        status,
		reviewerID:    reviewerID,
		reviewerNotes: reviewerNotes,
		decidedAt:     decidedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (r *EnrollmentRequest) transition(next Status, reviewerID uuid.UUID, notes *string, now time.Time) error {
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.status = next
	r.reviewerID = &reviewerID
	r.reviewerNotes = notes
	r.decidedAt = &now
	r.updatedAt = now
	return nil
}

// MarkObservations keeps the reservation and attaches reviewer notes.
func (r *EnrollmentRequest) MarkObservations(reviewerID uuid.UUID, notes *string, now time.Time) error {
	return r.transition(StatusObservations, reviewerID, notes, now)
}

func (r *EnrollmentRequest) Approve(reviewerID uuid.UUID, notes *string, now time.Time) error {
	return r.transition(StatusApproved, reviewerID, notes, now)
}

func (r *EnrollmentRequest) Reject(reviewerID uuid.UUID, notes *string, now time.Time) error {
	return r.transition(StatusRejected, reviewerID, notes, now)
}

// ChangePromotion swaps the selected promotion. Only a request that
// still holds its reservation can be edited.
func (r *EnrollmentRequest) ChangePromotion(promotionID *uuid.UUID, now time.Time) error {
	if !r.status.HoldsReservation() {
		return ErrReservationExpired
	}
	r.promotionID = promotionID
	r.updatedAt = now
	return nil
}

func (r *EnrollmentRequest) HasPromotion() bool {
	return r.promotionID != nil
}

func (r *EnrollmentRequest) ID() uuid.UUID           { return r.id }
func (r *EnrollmentRequest) Code() string            { return r.code }
func (r *EnrollmentRequest) Applicant() Applicant    { return r.applicant }
func (r *EnrollmentRequest) CourseTypeID() uuid.UUID { return r.courseTypeID }
func (r *EnrollmentRequest) SectionID() uuid.UUID    { return r.sectionID }
func (r *EnrollmentRequest) ScheduleSlot() string    { return r.scheduleSlot }
func (r *EnrollmentRequest) Payment() Payment        { return r.payment }
func (r *EnrollmentRequest) Attachments() Attachments { return r.attachments }
func (r *EnrollmentRequest) PromotionID() *uuid.UUID { return r.promotionID }
func (r *EnrollmentRequest) Status() Status          { return r.status }
func (r *EnrollmentRequest) ReviewerID() *uuid.UUID  { return r.reviewerID }
func (r *EnrollmentRequest) ReviewerNotes() *string  { return r.reviewerNotes }
func (r *EnrollmentRequest) DecidedAt() *time.Time   { return r.decidedAt }
func (r *EnrollmentRequest) CreatedAt() time.Time    { return r.createdAt }
func (r *EnrollmentRequest) UpdatedAt() time.Time    { return r.updatedAt }
