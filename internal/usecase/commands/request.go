package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/promotion"
	"academy-api/internal/domain/request"
	"academy-api/internal/domain/section"
	"academy-api/internal/infra"
	"academy-api/internal/pkg/clock"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

// CreateRequestInput is the transport-agnostic intake payload. SectionID
// set means the caller picked a section explicitly; otherwise the engine
// resolves the best match for the course type and schedule.
type CreateRequestInput struct {
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
	SectionID    *uuid.UUID
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
}

type CreateRequestResult struct {
	RequestID uuid.UUID
	Code      string
	Section   *shared.SectionSnapshot
}

type RequestCommands interface {
	Create(ctx context.Context, input CreateRequestInput) (*CreateRequestResult, error)
	Decide(ctx context.Context, input DecideInput) (*queries.RequestView, error)
	ChangePromotion(ctx context.Context, requestID uuid.UUID, newPromotionID *uuid.UUID, actorID uuid.UUID) (*queries.RequestView, error)
}

type requestUseCaseImpl struct {
	uow            shared.UnitOfWork
	requestQueries queries.RequestQueries
	validator      *request.Validator
	sideEffects    *SideEffects
	clock          clock.Clock
}

func NewRequestUseCase(
	uow shared.UnitOfWork,
	requestQueries queries.RequestQueries,
	sideEffects *SideEffects,
	clk clock.Clock,
) RequestCommands {
	return &requestUseCaseImpl{
		uow:            uow,
		requestQueries: requestQueries,
		validator:      request.NewValidator(),
		sideEffects:    sideEffects,
		clock:          clk,
	}
}

func (uc *requestUseCaseImpl) Create(ctx context.Context, input CreateRequestInput) (*CreateRequestResult, error) {
	reads := uc.uow.CommandReads()

	sectionSnap, err := uc.resolveSection(ctx, reads, input)
	if err != nil {
		return nil, err
	}

	if err := uc.validateIntake(ctx, reads, input, sectionSnap); err != nil {
		return nil, err
	}

	var promoCtx *promotion.Context
	if input.PromotionID != nil {
		promoCtx, err = uc.linkPromotion(ctx, reads, *input.PromotionID, input.NationalID)
		if err != nil {
			return nil, err
		}
	}

	req := uc.buildRequest(input, sectionSnap)

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, cerr := tx.Requests().Create(ctx, tx.DB(), req); cerr != nil {
			if infra.IsKind(cerr, infra.KindDuplicateKey) {
				return errs.Mark(cerr, errs.ErrDuplicateProofReference)
			}
			return errs.Mark(cerr, errs.ErrPersistence)
		}

		if cerr := uc.reserve(ctx, tx, sectionSnap.ID); cerr != nil {
			return cerr
		}
		if promoCtx != nil {
			if cerr := uc.reserve(ctx, tx, promoCtx.PromotionalSectionID); cerr != nil {
				return cerr
			}
			if _, cerr := tx.Sections().RecomputeSeats(ctx, tx.DB(), promoCtx.PromotionalSectionID); cerr != nil {
				return errs.Mark(cerr, errs.ErrPersistence)
			}
		}
		if _, cerr := tx.Sections().RecomputeSeats(ctx, tx.DB(), sectionSnap.ID); cerr != nil {
			return errs.Mark(cerr, errs.ErrPersistence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sideEffects.RequestCreated(ctx, req.ID(), requestAuditView(req))

	return &CreateRequestResult{
		RequestID: req.ID(),
		Code:      req.Code(),
		Section:   sectionSnap,
	}, nil
}

// resolveSection applies the explicit-or-best-match rule: an explicit id
// must name an active section with a free seat; otherwise the open
// section with the earliest start date (lowest id on ties) wins.
func (uc *requestUseCaseImpl) resolveSection(ctx context.Context, reads shared.CommandReads, input CreateRequestInput) (*shared.SectionSnapshot, error) {
	if input.SectionID != nil {
		snap, err := reads.SectionByID(ctx, *input.SectionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, errs.ErrSectionNotFound)
			}
			return nil, errs.Mark(err, errs.ErrPersistence)
		}
		if snap.State != string(section.StateActive) {
			return nil, errs.ErrSectionNotFound
		}
		if snap.SeatsAvailable <= 0 {
			return nil, errs.ErrSeatConflict
		}
		return snap, nil
	}

	snap, err := reads.SectionBestMatch(ctx, input.CourseTypeID, input.ScheduleSlot)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrSectionNotFound)
		}
		return nil, errs.Mark(err, errs.ErrPersistence)
	}
	return snap, nil
}

func (uc *requestUseCaseImpl) validateIntake(ctx context.Context, reads shared.CommandReads, input CreateRequestInput, snap *shared.SectionSnapshot) error {
	proofInUse := false
	if input.ProofReference != "" {
		inUse, err := reads.ProofReferenceInUse(ctx, input.ProofReference)
		if err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
		proofInUse = inUse
	}

	violations := uc.validator.Validate(intakePayload(input, snap), snap.Pricing, proofInUse)

	if input.StudentID != nil {
		enrolled, err := reads.ActiveEnrollmentExists(ctx, input.NationalID, snap.CourseTypeID)
		if err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
		if enrolled {
			violations = append(violations, request.Violation{
				Field:   "StudentID",
				Message: "student already holds an active enrollment in this course type",
			})
		}
	}

	if violations.Has() {
		return errs.Mark(violations, errs.ErrValidation)
	}
	return nil
}

// linkPromotion runs the ordered checks: existence and activity, the
// validity window, the promotional section's own availability, quota,
// and finally the applicant's existing occupancy of that section.
func (uc *requestUseCaseImpl) linkPromotion(ctx context.Context, reads shared.CommandReads, promotionID uuid.UUID, nationalID string) (*promotion.Context, error) {
	promoSnap, err := reads.PromotionByID(ctx, promotionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrPromotionNotFound)
		}
		return nil, errs.Mark(err, errs.ErrPersistence)
	}

	promo := promotion.NewPromotion(
		promoSnap.ID,
		promoSnap.Name,
		promoSnap.PrincipalSectionID,
		promoSnap.PromotionalSectionID,
		promoSnap.QuotaLimit,
		promoSnap.QuotaUsed,
		promoSnap.Active,
		promoSnap.ValidFrom,
		promoSnap.ValidTo,
	)

	if verr := promo.ValidateUsage(uc.clock.Now()); verr != nil {
		switch verr {
		case promotion.ErrInactive:
			return nil, errs.Mark(verr, errs.ErrPromotionInactive)
		default:
			return nil, errs.Mark(verr, errs.ErrPromotionExpired)
		}
	}

	promoSection, err := reads.SectionByID(ctx, promoSnap.PromotionalSectionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrSectionNotFound)
		}
		return nil, errs.Mark(err, errs.ErrPersistence)
	}
	if promoSection.State != string(section.StateActive) {
		return nil, errs.ErrSectionNotFound
	}
	if promoSection.SeatsAvailable <= 0 {
		return nil, errs.ErrSeatConflict
	}

	if !promo.HasQuota() {
		return nil, errs.ErrQuotaExceeded
	}

	enrolled, err := reads.ActiveEnrollmentInSection(ctx, nationalID, promoSnap.PromotionalSectionID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrPersistence)
	}
	if enrolled {
		return nil, errs.ErrAlreadyEnrolled
	}

	promoCtx := promo.Snapshot()
	return &promoCtx, nil
}

func (uc *requestUseCaseImpl) reserve(ctx context.Context, tx shared.Tx, sectionID uuid.UUID) error {
	if err := tx.Sections().ReserveSeat(ctx, tx.DB(), sectionID); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, errs.ErrSeatConflict)
		}
		return errs.Mark(err, errs.ErrPersistence)
	}
	return nil
}

func (uc *requestUseCaseImpl) buildRequest(input CreateRequestInput, snap *shared.SectionSnapshot) *request.EnrollmentRequest {
	method, _ := request.ParsePaymentMethod(input.PaymentMethod)
	return request.NewEnrollmentRequest(
		request.Applicant{
			NationalID:       input.NationalID,
			FirstName:        input.FirstName,
			LastName:         input.LastName,
			Email:            input.Email,
			Phone:            input.Phone,
			BirthDate:        input.BirthDate,
			Address:          input.Address,
			Gender:           input.Gender,
			EmergencyContact: input.EmergencyContact,
			StudentID:        input.StudentID,
		},
		snap.CourseTypeID,
		snap.ID,
		snap.ScheduleSlot,
		request.Payment{
			AmountCents:    input.AmountCents,
			Method:         method,
			ProofReference: request.NewProofReference(input.ProofReference),
			Bank:           input.Bank,
			TransferDate:   input.TransferDate,
			ReceivedBy:     input.ReceivedBy,
		},
		request.Attachments{
			ProofURL:       input.ProofURL,
			IDDocumentURL:  input.IDDocumentURL,
			CertificateURL: input.CertificateURL,
		},
		input.PromotionID,
		uc.clock.Now(),
	)
}

// intakePayload fills the resolved section and schedule in so an
// explicit-section submission validates without repeating them.
func intakePayload(input CreateRequestInput, snap *shared.SectionSnapshot) request.Payload {
	scheduleSlot := input.ScheduleSlot
	if scheduleSlot == "" {
		scheduleSlot = snap.ScheduleSlot
	}
	return request.Payload{
		NationalID:       input.NationalID,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		Phone:            input.Phone,
		BirthDate:        input.BirthDate,
		Address:          input.Address,
		Gender:           input.Gender,
		EmergencyContact: input.EmergencyContact,
		StudentID:        input.StudentID,
		CourseTypeID:     snap.CourseTypeID,
		SectionID:        snap.ID,
		ScheduleSlot:     scheduleSlot,
		AmountCents:      input.AmountCents,
		PaymentMethod:    input.PaymentMethod,
		ProofReference:   input.ProofReference,
		Bank:             input.Bank,
		TransferDate:     input.TransferDate,
		ReceivedBy:       input.ReceivedBy,
		ProofURL:         input.ProofURL,
		IDDocumentURL:    input.IDDocumentURL,
		CertificateURL:   input.CertificateURL,
		PromotionID:      input.PromotionID,
	}
}

func requestAuditView(req *request.EnrollmentRequest) map[string]any {
	return map[string]any{
		"id":           req.ID(),
		"code":         req.Code(),
		"section_id":   req.SectionID(),
		"promotion_id": req.PromotionID(),
		"state":        req.Status().String(),
		"updated_at":   req.UpdatedAt(),
	}
}
