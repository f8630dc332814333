package enrollment

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateActive    State = "active"
	StateSuspended State = "suspended"
	StateCompleted State = "completed"
	StateCanceled  State = "canceled"
)

// Enrollment is a realized occupancy of a section, created only through
// request approval.
type Enrollment struct {
	id         uuid.UUID
	code       string
	studentID  *uuid.UUID
	sectionID  uuid.UUID
	requestID  uuid.UUID
	state      State
	enrolledAt time.Time
}

func NewEnrollment(code string, studentID *uuid.UUID, sectionID, requestID uuid.UUID, enrolledAt time.Time) *Enrollment {
	return &Enrollment{
		id:         uuid.New(),
		code:       code,
		studentID:  studentID,
		sectionID:  sectionID,
		requestID:  requestID,
		state:      StateActive,
		enrolledAt: enrolledAt,
	}
}

func Reconstruct(id uuid.UUID, code string, studentID *uuid.UUID, sectionID, requestID uuid.UUID, state State, enrolledAt time.Time) *Enrollment {
	return &Enrollment{
		id:         id,
		code:       code,
		studentID:  studentID,
		sectionID:  sectionID,
		requestID:  requestID,
		state:      state,
		enrolledAt: enrolledAt,
	}
}

func (e *Enrollment) IsActive() bool {
	return e.state == StateActive
}

func (e *Enrollment) ID() uuid.UUID         { return e.id }
func (e *Enrollment) Code() string          { return e.code }
func (e *Enrollment) StudentID() *uuid.UUID { return e.studentID }
func (e *Enrollment) SectionID() uuid.UUID  { return e.sectionID }
func (e *Enrollment) RequestID() uuid.UUID  { return e.requestID }
func (e *Enrollment) State() State          { return e.state }
func (e *Enrollment) EnrolledAt() time.Time { return e.enrolledAt }
