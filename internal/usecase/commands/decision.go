package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/enrollment"
	"academy-api/internal/domain/request"
	"academy-api/internal/infra"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

// DecideInput carries a reviewer's verdict. Decision is one of
// approved, rejected, observations.
type DecideInput struct {
	RequestID  uuid.UUID
	Decision   string
	ReviewerID uuid.UUID
	Notes      *string
}

func (uc *requestUseCaseImpl) Decide(ctx context.Context, input DecideInput) (*queries.RequestView, error) {
	target, err := request.ParseStatus(input.Decision)
	if err != nil || target == request.StatusPending {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	var beforeState string
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, terr := uc.loadRequest(ctx, tx, input.RequestID)
		if terr != nil {
			return terr
		}
		beforeState = snap.Status

		req, terr := thinRequest(snap)
		if terr != nil {
			return errs.Mark(terr, errs.ErrPersistence)
		}

		switch target {
		case request.StatusObservations:
			terr = req.MarkObservations(input.ReviewerID, input.Notes, uc.clock.Now())
		case request.StatusApproved:
			terr = req.Approve(input.ReviewerID, input.Notes, uc.clock.Now())
		case request.StatusRejected:
			terr = req.Reject(input.ReviewerID, input.Notes, uc.clock.Now())
		}
		if terr != nil {
			return errs.Mark(terr, errs.ErrInvalidStateTransition)
		}

		if terr := tx.Requests().UpdateDecision(ctx, tx.DB(), req); terr != nil {
			if infra.IsKind(terr, infra.KindConflict) {
				return errs.Mark(terr, errs.ErrInvalidStateTransition)
			}
			return errs.Mark(terr, errs.ErrPersistence)
		}

		switch target {
		case request.StatusApproved:
			return uc.settleApproval(ctx, tx, snap)
		case request.StatusRejected:
			return uc.settleRejection(ctx, tx, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sideEffects.RequestDecided(ctx, input.RequestID, input.ReviewerID, input.Decision,
		map[string]any{"state": beforeState},
		map[string]any{"state": input.Decision},
	)

	return uc.requestQueries.GetByID(ctx, input.RequestID)
}

// settleApproval converts the promotional hold into a real enrollment.
// The principal seat was committed at creation and stays untouched.
func (uc *requestUseCaseImpl) settleApproval(ctx context.Context, tx shared.Tx, snap *shared.RequestSnapshot) error {
	if snap.PromotionID == nil {
		return nil
	}

	promoSnap, err := tx.Reads().PromotionByID(ctx, *snap.PromotionID)
	if err != nil {
		// The promotion row vanished between creation and decision.
		return errs.Mark(err, errs.ErrPersistence)
	}

	if err := tx.Promotions().IncrementQuotaUsed(ctx, tx.DB(), promoSnap.ID); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, errs.ErrQuotaExceeded)
		}
		return errs.Mark(err, errs.ErrPersistence)
	}

	enrolled, err := uc.alreadyEnrolled(ctx, tx, snap, promoSnap.PromotionalSectionID)
	if err != nil {
		return err
	}
	if !enrolled {
		enr := enrollment.NewEnrollment(
			request.NewEnrollmentCode(uc.clock.Now()),
			snap.StudentID,
			promoSnap.PromotionalSectionID,
			snap.ID,
			uc.clock.Now(),
		)
		if _, err := tx.Enrollments().Create(ctx, tx.DB(), enr); err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
	}

	if _, err := tx.Sections().RecomputeSeats(ctx, tx.DB(), promoSnap.PromotionalSectionID); err != nil {
		return errs.Mark(err, errs.ErrPersistence)
	}
	return nil
}

// alreadyEnrolled guards the enrollment write twice: a replayed
// settlement finds the row it created by request id, and an applicant
// already occupying the promotional section must not be booked again.
func (uc *requestUseCaseImpl) alreadyEnrolled(ctx context.Context, tx shared.Tx, snap *shared.RequestSnapshot, sectionID uuid.UUID) (bool, error) {
	if _, err := tx.Enrollments().FindByRequestID(ctx, tx.DB(), snap.ID); err == nil {
		return true, nil
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return false, errs.Mark(err, errs.ErrPersistence)
	}

	occupied, err := tx.Reads().ActiveEnrollmentInSection(ctx, snap.NationalID, sectionID)
	if err != nil {
		return false, errs.Mark(err, errs.ErrPersistence)
	}
	return occupied, nil
}

// settleRejection hands every held seat back.
func (uc *requestUseCaseImpl) settleRejection(ctx context.Context, tx shared.Tx, snap *shared.RequestSnapshot) error {
	if err := tx.Sections().ReleaseSeat(ctx, tx.DB(), snap.SectionID); err != nil {
		return errs.Mark(err, errs.ErrPersistence)
	}

	if snap.PromotionID != nil {
		promoSnap, err := tx.Reads().PromotionByID(ctx, *snap.PromotionID)
		if err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
		if err := tx.Sections().ReleaseSeat(ctx, tx.DB(), promoSnap.PromotionalSectionID); err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
		if _, err := tx.Sections().RecomputeSeats(ctx, tx.DB(), promoSnap.PromotionalSectionID); err != nil {
			return errs.Mark(err, errs.ErrPersistence)
		}
	}

	if _, err := tx.Sections().RecomputeSeats(ctx, tx.DB(), snap.SectionID); err != nil {
		return errs.Mark(err, errs.ErrPersistence)
	}
	return nil
}

func (uc *requestUseCaseImpl) ChangePromotion(ctx context.Context, requestID uuid.UUID, newPromotionID *uuid.UUID, actorID uuid.UUID) (*queries.RequestView, error) {
	var before, after *uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, terr := uc.loadRequest(ctx, tx, requestID)
		if terr != nil {
			return terr
		}

		status, terr := request.ParseStatus(snap.Status)
		if terr != nil {
			return errs.Mark(terr, errs.ErrPersistence)
		}
		if !status.HoldsReservation() {
			return errs.ErrInvalidStateTransition
		}
		before = snap.PromotionID
		after = newPromotionID

		// Release first so swapping within the same promotional section
		// cannot deadlock against itself; the transaction makes the
		// release-then-reserve pair atomic.
		var oldSectionID, newSectionID *uuid.UUID
		if snap.PromotionID != nil {
			oldPromo, perr := tx.Reads().PromotionByID(ctx, *snap.PromotionID)
			if perr != nil {
				return errs.Mark(perr, errs.ErrPersistence)
			}
			if perr := tx.Sections().ReleaseSeat(ctx, tx.DB(), oldPromo.PromotionalSectionID); perr != nil {
				return errs.Mark(perr, errs.ErrPersistence)
			}
			oldSectionID = &oldPromo.PromotionalSectionID
		}

		if newPromotionID != nil {
			promoCtx, perr := uc.linkPromotion(ctx, tx.Reads(), *newPromotionID, snap.NationalID)
			if perr != nil {
				return perr
			}
			if perr := uc.reserve(ctx, tx, promoCtx.PromotionalSectionID); perr != nil {
				return perr
			}
			newSectionID = &promoCtx.PromotionalSectionID
		}

		// The selection must be written before the ledgers are rebuilt,
		// or the recompute still sees the old promotion on the request.
		if terr := uc.updateSelection(ctx, tx, requestID, newPromotionID); terr != nil {
			return terr
		}

		for _, sectionID := range []*uuid.UUID{oldSectionID, newSectionID} {
			if sectionID == nil {
				continue
			}
			if _, perr := tx.Sections().RecomputeSeats(ctx, tx.DB(), *sectionID); perr != nil {
				return errs.Mark(perr, errs.ErrPersistence)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sideEffects.PromotionChanged(ctx, requestID, actorID,
		map[string]any{"promotion_id": before},
		map[string]any{"promotion_id": after},
	)

	return uc.requestQueries.GetByID(ctx, requestID)
}

func (uc *requestUseCaseImpl) updateSelection(ctx context.Context, tx shared.Tx, requestID uuid.UUID, promotionID *uuid.UUID) error {
	if err := tx.Requests().UpdatePromotion(ctx, tx.DB(), requestID, promotionID, uc.clock.Now()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, errs.ErrInvalidStateTransition)
		}
		return errs.Mark(err, errs.ErrPersistence)
	}
	return nil
}

func (uc *requestUseCaseImpl) loadRequest(ctx context.Context, tx shared.Tx, requestID uuid.UUID) (*shared.RequestSnapshot, error) {
	snap, err := tx.Reads().RequestByID(ctx, requestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrRequestNotFound)
		}
		return nil, errs.Mark(err, errs.ErrPersistence)
	}
	return snap, nil
}

// thinRequest rebuilds just enough of the aggregate for a state
// transition; only decision columns are written back.
func thinRequest(snap *shared.RequestSnapshot) (*request.EnrollmentRequest, error) {
	status, err := request.ParseStatus(snap.Status)
	if err != nil {
		return nil, err
	}
	return request.Reconstruct(
		snap.ID,
		snap.Code,
		request.Applicant{NationalID: snap.NationalID, Email: snap.Email, StudentID: snap.StudentID},
		uuid.Nil,
		snap.SectionID,
		"",
		request.Payment{},
		request.Attachments{},
		snap.PromotionID,
		status,
		nil,
		nil,
		nil,
		time.Time{},
		time.Time{},
	), nil
}
