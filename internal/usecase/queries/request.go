package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/infra/db"
	"academy-api/internal/usecase/shared"
)

const defaultListLimit = 50

// Read models (DTO for read side)
type RequestView struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	NationalID       string     `json:"national_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Address          string     `json:"address,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	StudentID        *uuid.UUID `json:"student_id,omitempty"`
	CourseTypeID     uuid.UUID  `json:"course_type_id"`
	SectionID        uuid.UUID  `json:"section_id"`
	SectionCode      string     `json:"section_code"`
	SectionName      string     `json:"section_name"`
	ScheduleSlot     string     `json:"schedule_slot"`
	AmountCents      int64      `json:"amount_cents"`
	PaymentMethod    string     `json:"payment_method"`
	ProofReference   string     `json:"proof_reference"`
	ProofBank        *string    `json:"proof_bank,omitempty"`
	TransferDate     *time.Time `json:"transfer_date,omitempty"`
	ReceivedBy       *string    `json:"received_by,omitempty"`
	ProofURL         *string    `json:"proof_url,omitempty"`
	IDDocumentURL    *string    `json:"id_document_url,omitempty"`
	CertificateURL   *string    `json:"certificate_url,omitempty"`
	PromotionID      *uuid.UUID `json:"promotion_id,omitempty"`
	PromotionName    *string    `json:"promotion_name,omitempty"`
	State            string     `json:"state"`
	ReviewerID       *uuid.UUID `json:"reviewer_id,omitempty"`
	ReviewerNotes    *string    `json:"reviewer_notes,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type RequestListItem struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	SectionCode   string    `json:"section_code"`
	SectionName   string    `json:"section_name"`
	AmountCents   int64     `json:"amount_cents"`
	PaymentMethod string    `json:"payment_method"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
}

// RequestFilter narrows listings; nil fields mean no constraint.
type RequestFilter struct {
	State        *string
	CourseTypeID *uuid.UUID
	Limit        int32
	Offset       int32
}

type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

type RequestQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RequestView, error)
	List(ctx context.Context, filter RequestFilter) ([]*RequestListItem, int64, error)
	CountByState(ctx context.Context) ([]StateCount, error)
}

type RequestViewRepo interface {
	FindByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*RequestView, error)
	FindFiltered(ctx context.Context, q db.DBTX, filter RequestFilter) ([]*RequestListItem, error)
	CountFiltered(ctx context.Context, q db.DBTX, filter RequestFilter) (int64, error)
	CountGroupedByState(ctx context.Context, q db.DBTX) ([]StateCount, error)
}

type requestQueriesImpl struct {
	uow  shared.UnitOfWork
	repo RequestViewRepo
}

func NewRequestQueries(uow shared.UnitOfWork, repo RequestViewRepo) RequestQueries {
	return &requestQueriesImpl{uow: uow, repo: repo}
}

func (q *requestQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	var view *RequestView
	err := q.uow.WithDB(ctx, func(ctx context.Context, qdb db.DBTX) error {
		var err error
		view, err = q.repo.FindByID(ctx, qdb, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// List serves the page and its total from one read-only transaction so
// the X-Total-Count header cannot drift from the rows it describes.
func (q *requestQueriesImpl) List(ctx context.Context, filter RequestFilter) ([]*RequestListItem, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var (
		rows  []*RequestListItem
		total int64
	)
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, qdb db.DBTX) error {
		var err error
		if total, err = q.repo.CountFiltered(ctx, qdb, filter); err != nil {
			return err
		}
		rows, err = q.repo.FindFiltered(ctx, qdb, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (q *requestQueriesImpl) CountByState(ctx context.Context) ([]StateCount, error) {
	var counts []StateCount
	err := q.uow.WithDB(ctx, func(ctx context.Context, qdb db.DBTX) error {
		var err error
		counts, err = q.repo.CountGroupedByState(ctx, qdb)
		return err
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
