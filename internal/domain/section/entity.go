package section

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCapacity = errors.New("capacity cannot be negative")
	ErrInvalidSeats    = errors.New("seats available out of range")
	ErrInactiveSection = errors.New("section is not active")
	ErrNoSeats         = errors.New("section has no seats available")
)

type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// PaymentModality describes how a course type charges enrollment.
type PaymentModality string

const (
	ModalityMonthly    PaymentModality = "monthly"
	ModalityPerSession PaymentModality = "per_session"
)

// Pricing is the course-type pricing snapshot the intake validator
// checks payment amounts against.
type Pricing struct {
	Modality           PaymentModality
	MonthlyRateCents   int64
	SessionCount       int32
	SessionRateCents   int64
	EnrollmentFeeCents int64
}

// FullPriceCents is the total for a per-session course: the enrollment
// fee covers the first session, the rest are charged at the session rate.
func (p Pricing) FullPriceCents() int64 {
	remaining := int64(p.SessionCount) - 1
	if remaining < 0 {
		remaining = 0
	}
	return p.EnrollmentFeeCents + remaining*p.SessionRateCents
}

type Section struct {
	id             uuid.UUID
	courseTypeID   uuid.UUID
	code           string
	name           string
	scheduleSlot   string
	startDate      time.Time
	capacity       int32
	seatsAvailable int32
	state          State
}

func NewSection(
	id, courseTypeID uuid.UUID,
	code, name, scheduleSlot string,
	startDate time.Time,
	capacity, seatsAvailable int32,
	state State,
) (*Section, error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if seatsAvailable < 0 || seatsAvailable > capacity {
		return nil, ErrInvalidSeats
	}
	return &Section{
		id:             id,
		courseTypeID:   courseTypeID,
		code:           code,
		name:           name,
		scheduleSlot:   scheduleSlot,
		startDate:      startDate,
		capacity:       capacity,
		seatsAvailable: seatsAvailable,
		state:          state,
	}, nil
}

func (s *Section) IsActive() bool {
	return s.state == StateActive
}

func (s *Section) HasSeats() bool {
	return s.seatsAvailable > 0
}

// Reservable reports why a section cannot take a new hold, if it cannot.
func (s *Section) Reservable() error {
	if !s.IsActive() {
		return ErrInactiveSection
	}
	if !s.HasSeats() {
		return ErrNoSeats
	}
	return nil
}

func (s *Section) ID() uuid.UUID           { return s.id }
func (s *Section) CourseTypeID() uuid.UUID { return s.courseTypeID }
func (s *Section) Code() string            { return s.code }
func (s *Section) Name() string            { return s.name }
func (s *Section) ScheduleSlot() string    { return s.scheduleSlot }
func (s *Section) StartDate() time.Time    { return s.startDate }
func (s *Section) Capacity() int32         { return s.capacity }
func (s *Section) SeatsAvailable() int32   { return s.seatsAvailable }
func (s *Section) State() State            { return s.state }
