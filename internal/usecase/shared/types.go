package shared

import (
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/section"
)

type SectionSnapshot struct {
	ID             uuid.UUID
	CourseTypeID   uuid.UUID
	Code           string
	Name           string
	ScheduleSlot   string
	StartDate      time.Time
	Capacity       int32
	SeatsAvailable int32
	State          string
	Pricing        section.Pricing
}

type PromotionSnapshot struct {
	ID                   uuid.UUID
	Name                 string
	PrincipalSectionID   uuid.UUID
	PromotionalSectionID uuid.UUID
	QuotaLimit           *int32
	QuotaUsed            int32
	Active               bool
	ValidFrom            *time.Time
	ValidTo              *time.Time
}

// RequestSnapshot is the minimal view decision commands need; full
// request hydration goes through the read stores.
type RequestSnapshot struct {
	ID          uuid.UUID
	Code        string
	SectionID   uuid.UUID
	StudentID   *uuid.UUID
	PromotionID *uuid.UUID
	Status      string
	NationalID  string
	Email       string
}

type EnrollmentSnapshot struct {
	ID        uuid.UUID
	Code      string
	SectionID uuid.UUID
	RequestID uuid.UUID
	State     string
}
