package shared

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/enrollment"
	"academy-api/internal/domain/request"
	"academy-api/internal/infra/db"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error
	// CommandReads: direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Requests() RequestRepository
	Sections() SectionRepository
	Promotions() PromotionRepository
	Enrollments() EnrollmentRepository
	Audit() AuditRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	SectionByID(ctx context.Context, id uuid.UUID) (*SectionSnapshot, error)
	// SectionBestMatch resolves an open section for a course type and
	// schedule slot: earliest start date wins, lowest id breaks ties.
	SectionBestMatch(ctx context.Context, courseTypeID uuid.UUID, scheduleSlot string) (*SectionSnapshot, error)
	PromotionByID(ctx context.Context, id uuid.UUID) (*PromotionSnapshot, error)
	RequestByID(ctx context.Context, id uuid.UUID) (*RequestSnapshot, error)
	ProofReferenceInUse(ctx context.Context, ref string) (bool, error)
	// ActiveEnrollmentExists guards repeat intake: true when the
	// applicant already holds an active enrollment in any section of
	// the course type.
	ActiveEnrollmentExists(ctx context.Context, nationalID string, courseTypeID uuid.UUID) (bool, error)
	// ActiveEnrollmentInSection answers the promotion-linker check: is
	// the applicant already occupying the promotional section.
	ActiveEnrollmentInSection(ctx context.Context, nationalID string, sectionID uuid.UUID) (bool, error)
}

type RequestRepository interface {
	Create(ctx context.Context, q db.DBTX, req *request.EnrollmentRequest) (uuid.UUID, error)
	UpdateDecision(ctx context.Context, q db.DBTX, req *request.EnrollmentRequest) error
	UpdatePromotion(ctx context.Context, q db.DBTX, requestID uuid.UUID, promotionID *uuid.UUID, updatedAt time.Time) error
}

type SectionRepository interface {
	// ReserveSeat decrements seats_available iff one is free; zero rows
	// affected means the last seat was taken concurrently.
	ReserveSeat(ctx context.Context, q db.DBTX, sectionID uuid.UUID) error
	ReleaseSeat(ctx context.Context, q db.DBTX, sectionID uuid.UUID) error
	// RecomputeSeats rebuilds the ledger from pending holds and active
	// enrollments and returns the resulting seats_available.
	RecomputeSeats(ctx context.Context, q db.DBTX, sectionID uuid.UUID) (int32, error)
}

type PromotionRepository interface {
	// IncrementQuotaUsed counts one consumed slot iff quota remains.
	IncrementQuotaUsed(ctx context.Context, q db.DBTX, promotionID uuid.UUID) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, q db.DBTX, enr *enrollment.Enrollment) (uuid.UUID, error)
	FindByRequestID(ctx context.Context, q db.DBTX, requestID uuid.UUID) (*EnrollmentSnapshot, error)
}

type AuditRepository interface {
	Append(ctx context.Context, q db.DBTX, entry AuditEntry) error
}

type AuditEntry struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Before     []byte
	After      []byte
	OccurredAt time.Time
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, q db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
