package request

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/usecase/commands"
)

type CreateEnrollmentRequest struct {
	NationalID       string     `json:"national_id" binding:"required"`
	FirstName        string     `json:"first_name" binding:"required"`
	LastName         string     `json:"last_name" binding:"required"`
	Email            string     `json:"email" binding:"required,email"`
	Phone            string     `json:"phone" binding:"required"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Address          string     `json:"address,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	StudentID        *uuid.UUID `json:"student_id,omitempty"`

	CourseTypeID uuid.UUID  `json:"course_type_id,omitempty"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	ScheduleSlot string     `json:"schedule_slot,omitempty"`

	AmountCents    int64      `json:"amount_cents" binding:"required"`
	PaymentMethod  string     `json:"payment_method" binding:"required"`
	ProofReference string     `json:"proof_reference" binding:"required"`
	Bank           *string    `json:"bank,omitempty"`
	TransferDate   *time.Time `json:"transfer_date,omitempty"`
	ReceivedBy     *string    `json:"received_by,omitempty"`

	ProofURL       *string `json:"proof_url,omitempty"`
	IDDocumentURL  *string `json:"id_document_url,omitempty"`
	CertificateURL *string `json:"certificate_url,omitempty"`

	PromotionID *uuid.UUID `json:"promotion_id,omitempty"`
}

func (r CreateEnrollmentRequest) ToInput() commands.CreateRequestInput {
	return commands.CreateRequestInput{
		NationalID:       strings.TrimSpace(r.NationalID),
		FirstName:        strings.TrimSpace(r.FirstName),
		LastName:         strings.TrimSpace(r.LastName),
		Email:            strings.TrimSpace(r.Email),
		Phone:            strings.TrimSpace(r.Phone),
		BirthDate:        r.BirthDate,
		Address:          strings.TrimSpace(r.Address),
		Gender:           r.Gender,
		EmergencyContact: strings.TrimSpace(r.EmergencyContact),
		StudentID:        r.StudentID,
		CourseTypeID:     r.CourseTypeID,
		SectionID:        r.SectionID,
		ScheduleSlot:     strings.TrimSpace(r.ScheduleSlot),
		AmountCents:      r.AmountCents,
		PaymentMethod:    r.PaymentMethod,
		ProofReference:   strings.TrimSpace(r.ProofReference),
		Bank:             r.Bank,
		TransferDate:     r.TransferDate,
		ReceivedBy:       r.ReceivedBy,
		ProofURL:         r.ProofURL,
		IDDocumentURL:    r.IDDocumentURL,
		CertificateURL:   r.CertificateURL,
		PromotionID:      r.PromotionID,
	}
}

type DecideRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approved rejected observations"`
	Notes    *string `json:"notes,omitempty"`
}

type ChangePromotionRequest struct {
	PromotionID *uuid.UUID `json:"promotion_id"`
}
