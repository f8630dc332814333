package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"academy-api/internal/domain/section"
)

// amountToleranceCents absorbs rounding on bank transfer amounts.
const amountToleranceCents = 1

// Payload is the raw intake submission. Section resolution happens
// before validation, so SectionID here is the resolved target.
type Payload struct {
	NationalID       string     `validate:"required,min=6,max=20"`
	FirstName        string     `validate:"required,max=80"`
	LastName         string     `validate:"required,max=80"`
	Email            string     `validate:"required,email"`
	Phone            string     `validate:"required,max=20"`
	BirthDate        *time.Time `validate:"-"`
	Address          string     `validate:"max=200"`
	Gender           string     `validate:"omitempty,oneof=male female other"`
	EmergencyContact string     `validate:"max=120"`
	StudentID        *uuid.UUID `validate:"-"`

	CourseTypeID uuid.UUID `validate:"required"`
	SectionID    uuid.UUID `validate:"required"`
	ScheduleSlot string    `validate:"required,max=40"`

	AmountCents    int64      `validate:"required,gt=0"`
	PaymentMethod  string     `validate:"required"`
	ProofReference string     `validate:"required,max=60"`
	Bank           *string    `validate:"-"`
	TransferDate   *time.Time `validate:"-"`
	ReceivedBy     *string    `validate:"-"`

	ProofURL       *string `validate:"omitempty,url"`
	IDDocumentURL  *string `validate:"omitempty,url"`
	CertificateURL *string `validate:"omitempty,url"`

	PromotionID *uuid.UUID `validate:"-"`
}

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every violation found in one pass so the
// caller can report them all at once.
type ValidationErrors []Violation

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, viol := range v {
		msgs[i] = viol.Field + ": " + viol.Message
	}
	return "intake validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Has() bool { return len(v) > 0 }

var shapeValidator = validator.New(validator.WithRequiredStructEnabled())

// Validator checks an intake payload against shape and payment rules.
// It never touches storage; the caller resolves proofInUse beforehand.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate returns every violation in the payload. A nil return means
// the payload is acceptable.
func (iv *Validator) Validate(p Payload, pricing section.Pricing, proofInUse bool) ValidationErrors {
	var out ValidationErrors

	if err := shapeValidator.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errs, ok := err.(validator.ValidationErrors); ok {
			fieldErrs = errs
		}
		for _, fe := range fieldErrs {
			out = append(out, Violation{Field: fe.Field(), Message: shapeMessage(fe)})
		}
	}

	method, err := ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		out = append(out, Violation{Field: "PaymentMethod", Message: "must be transfer or cash"})
	} else {
		out = append(out, iv.methodViolations(p, method)...)
	}

	out = append(out, iv.amountViolations(p.AmountCents, pricing)...)

	if strings.TrimSpace(p.ProofReference) != "" && proofInUse {
		out = append(out, Violation{Field: "ProofReference", Message: "payment proof reference is already registered"})
	}

	if p.ProofURL == nil || strings.TrimSpace(*p.ProofURL) == "" {
		out = append(out, Violation{Field: "ProofURL", Message: "payment proof attachment is required"})
	}

	return out
}

func (iv *Validator) methodViolations(p Payload, method PaymentMethod) ValidationErrors {
	var out ValidationErrors
	switch method {
	case PaymentTransfer:
		if p.Bank == nil || strings.TrimSpace(*p.Bank) == "" {
			out = append(out, Violation{Field: "Bank", Message: "bank is required for transfer payments"})
		}
		if p.TransferDate == nil {
			out = append(out, Violation{Field: "TransferDate", Message: "transfer date is required for transfer payments"})
		}
	case PaymentCash:
		if p.ReceivedBy == nil || strings.TrimSpace(*p.ReceivedBy) == "" {
			out = append(out, Violation{Field: "ReceivedBy", Message: "receiver is required for cash payments"})
		}
	}
	return out
}

func (iv *Validator) amountViolations(amountCents int64, pricing section.Pricing) ValidationErrors {
	switch pricing.Modality {
	case section.ModalityMonthly:
		if pricing.MonthlyRateCents <= 0 {
			return ValidationErrors{{
				Field:   "AmountCents",
				Message: "monthly rate is not configured for this course type",
			}}
		}
		if amountCents <= 0 || amountCents%pricing.MonthlyRateCents != 0 {
			return ValidationErrors{{
				Field:   "AmountCents",
				Message: fmt.Sprintf("amount must be a positive multiple of %d cents for monthly courses", pricing.MonthlyRateCents),
			}}
		}
	case section.ModalityPerSession:
		if withinTolerance(amountCents, pricing.EnrollmentFeeCents) {
			return nil
		}
		if withinTolerance(amountCents, pricing.FullPriceCents()) {
			return nil
		}
		return ValidationErrors{{
			Field: "AmountCents",
			Message: fmt.Sprintf("amount must equal the enrollment fee (%d cents) or the full price (%d cents)",
				pricing.EnrollmentFeeCents, pricing.FullPriceCents()),
		}}
	}
	return nil
}

func withinTolerance(got, want int64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= amountToleranceCents
}

func shapeMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
