//go:build unit || e2e

package builder

import (
	"time"

	domrequest "academy-api/internal/domain/request"
	"academy-api/internal/domain/section"
	reqdto "academy-api/internal/handler/dto/request"

	"github.com/google/uuid"
)

type RequestBuilder struct {
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

	CourseTypeID uuid.UUID
	SectionID    uuid.UUID
	ScheduleSlot string

	AmountCents    int64
	PaymentMethod  string
	ProofReference string
	Bank           *string
	TransferDate   *time.Time
	ReceivedBy     *string

	ProofURL       *string
	IDDocumentURL  *string
	CertificateURL *string

	PromotionID *uuid.UUID
	CreatedAt   time.Time
}

func NewRequestBuilder() *RequestBuilder {
	now := time.Now()
	bank := "Banco Pichincha"
	transferDate := now.AddDate(0, 0, -1)
	proofURL := "https://files.example.com/proofs/trx-001.pdf"
	return &RequestBuilder{
		NationalID:     "0912345678",
		FirstName:      "Maria",
		LastName:       "Lopez",
		Email:          "maria.lopez@example.com",
		Phone:          "0991234567",
		CourseTypeID:   uuid.New(),
		SectionID:      uuid.New(),
		ScheduleSlot:   "mon-wed-18h",
		AmountCents:    9000,
		PaymentMethod:  "transfer",
		ProofReference: "TRX-001",
		Bank:           &bank,
		TransferDate:   &transferDate,
		ProofURL:       &proofURL,
		CreatedAt:      now,
	}
}

func (b *RequestBuilder) With(mutate func(*RequestBuilder)) *RequestBuilder {
	mutate(b)
	return b
}

func (b *RequestBuilder) BuildPayload() domrequest.Payload {
	return domrequest.Payload{
		NationalID:       b.NationalID,
		FirstName:        b.FirstName,
		LastName:         b.LastName,
		Email:            b.Email,
		Phone:            b.Phone,
		BirthDate:        b.BirthDate,
		Address:          b.Address,
		Gender:           b.Gender,
		EmergencyContact: b.EmergencyContact,
		StudentID:        b.StudentID,
		CourseTypeID:     b.CourseTypeID,
		SectionID:        b.SectionID,
		ScheduleSlot:     b.ScheduleSlot,
		AmountCents:      b.AmountCents,
		PaymentMethod:    b.PaymentMethod,
		ProofReference:   b.ProofReference,
		Bank:             b.Bank,
		TransferDate:     b.TransferDate,
		ReceivedBy:       b.ReceivedBy,
		ProofURL:         b.ProofURL,
		IDDocumentURL:    b.IDDocumentURL,
		CertificateURL:   b.CertificateURL,
		PromotionID:      b.PromotionID,
	}
}

func (b *RequestBuilder) BuildDomain() *domrequest.EnrollmentRequest {
	method, _ := domrequest.ParsePaymentMethod(b.PaymentMethod)
	return domrequest.NewEnrollmentRequest(
		domrequest.Applicant{
			NationalID:       b.NationalID,
			FirstName:        b.FirstName,
			LastName:         b.LastName,
			Email:            b.Email,
			Phone:            b.Phone,
			BirthDate:        b.BirthDate,
			Address:          b.Address,
			Gender:           b.Gender,
			EmergencyContact: b.EmergencyContact,
			StudentID:        b.StudentID,
		},
		b.CourseTypeID,
		b.SectionID,
		b.ScheduleSlot,
		domrequest.Payment{
			AmountCents:    b.AmountCents,
			Method:         method,
			ProofReference: domrequest.NewProofReference(b.ProofReference),
			Bank:           b.Bank,
			TransferDate:   b.TransferDate,
			ReceivedBy:     b.ReceivedBy,
		},
		domrequest.Attachments{
			ProofURL:       b.ProofURL,
			IDDocumentURL:  b.IDDocumentURL,
			CertificateURL: b.CertificateURL,
		},
		b.PromotionID,
		b.CreatedAt,
	)
}

func (b *RequestBuilder) BuildCreateRequestDTO() reqdto.CreateEnrollmentRequest {
	// zero section id means the engine resolves the best match
	var sectionID *uuid.UUID
	if b.SectionID != uuid.Nil {
		id := b.SectionID
		sectionID = &id
	}
	return reqdto.CreateEnrollmentRequest{
		NationalID:       b.NationalID,
		FirstName:        b.FirstName,
		LastName:         b.LastName,
		Email:            b.Email,
		Phone:            b.Phone,
		BirthDate:        b.BirthDate,
		Address:          b.Address,
		Gender:           b.Gender,
		EmergencyContact: b.EmergencyContact,
		StudentID:        b.StudentID,
		CourseTypeID:     b.CourseTypeID,
		SectionID:        sectionID,
		ScheduleSlot:     b.ScheduleSlot,
		AmountCents:      b.AmountCents,
		PaymentMethod:    b.PaymentMethod,
		ProofReference:   b.ProofReference,
		Bank:             b.Bank,
		TransferDate:     b.TransferDate,
		ReceivedBy:       b.ReceivedBy,
		ProofURL:         b.ProofURL,
		IDDocumentURL:    b.IDDocumentURL,
		CertificateURL:   b.CertificateURL,
		PromotionID:      b.PromotionID,
	}
}

// MonthlyPricing is the standard monthly course type used across tests.
func MonthlyPricing() section.Pricing {
	return section.Pricing{
		Modality:         section.ModalityMonthly,
		MonthlyRateCents: 9000,
	}
}

// PerSessionPricing is a per-session course: 12 sessions, enrollment fee
// covers the first one.
func PerSessionPricing() section.Pricing {
	return section.Pricing{
		Modality:           section.ModalityPerSession,
		SessionCount:       12,
		SessionRateCents:   2500,
		EnrollmentFeeCents: 5000,
	}
}
