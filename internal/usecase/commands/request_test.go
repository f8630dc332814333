//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy-api/internal/pkg/clock"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/commands"
	"academy-api/internal/usecase/shared"
)

type harness struct {
	store *fakeStore
	cache *fakeSectionCache
	clock *clock.MockClock
	cmds  commands.RequestCommands
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newFakeStore()
	uow := &fakeUoW{store: store}
	cache := &fakeSectionCache{}
	clk := clock.NewMockClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	sideEffects := commands.NewSideEffects(uow, cache, clk,
		&fakeNotificationRepo{store}, &fakeAuditRepo{store})
	cmds := commands.NewRequestUseCase(uow, &fakeRequestQueries{store}, sideEffects, clk)

	return &harness{store: store, cache: cache, clock: clk, cmds: cmds}
}

func (h *harness) addSection(capacity, seats int32) uuid.UUID {
	return h.addSectionForCourse(uuid.New(), "mon-wed-18h", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), capacity, seats)
}

func (h *harness) addSectionForCourse(courseTypeID uuid.UUID, slot string, start time.Time, capacity, seats int32) uuid.UUID {
	id := uuid.New()
	h.store.sections[id] = &shared.SectionSnapshot{
		ID:             id,
		CourseTypeID:   courseTypeID,
		Code:           "SEC-" + id.String()[:8],
		Name:           "Test Section",
		ScheduleSlot:   slot,
		StartDate:      start,
		Capacity:       capacity,
		SeatsAvailable: seats,
		State:          "active",
		Pricing:        monthlyPricing(),
	}
	return id
}

func (h *harness) addPromotion(principalID, promotionalID uuid.UUID, quotaLimit *int32, quotaUsed int32) uuid.UUID {
	id := uuid.New()
	h.store.promotions[id] = &shared.PromotionSnapshot{
		ID:                   id,
		Name:                 "bring-a-friend",
		PrincipalSectionID:   principalID,
		PromotionalSectionID: promotionalID,
		QuotaLimit:           quotaLimit,
		QuotaUsed:            quotaUsed,
		Active:               true,
	}
	return id
}

func (h *harness) seats(sectionID uuid.UUID) int32 {
	return h.store.sections[sectionID].SeatsAvailable
}

func validInput(sectionID uuid.UUID) commands.CreateRequestInput {
	bank := "Banco Pichincha"
	transferDate := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	proofURL := "https://files.example.com/proofs/trx-001.pdf"
	return commands.CreateRequestInput{
		NationalID:     "0912345678",
		FirstName:      "Maria",
		LastName:       "Lopez",
		Email:          "maria.lopez@example.com",
		Phone:          "0991234567",
		SectionID:      &sectionID,
		AmountCents:    9000,
		PaymentMethod:  "transfer",
		ProofReference: "TRX-001",
		Bank:           &bank,
		TransferDate:   &transferDate,
		ProofURL:       &proofURL,
	}
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit section reserves a seat", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 20)

		result, err := h.cmds.Create(ctx, validInput(sectionID))
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotEqual(t, uuid.Nil, result.RequestID)
		assert.NotEmpty(t, result.Code)
		assert.Equal(t, sectionID, result.Section.ID)
		assert.Equal(t, int32(19), h.seats(sectionID))

		stored := h.store.requests[result.RequestID]
		require.NotNil(t, stored)
		assert.Equal(t, "pending", stored.Status)
	})

	t.Run("unknown section", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.cmds.Create(ctx, validInput(uuid.New()))
		assert.ErrorIs(t, err, errs.ErrSectionNotFound)
	})

	t.Run("inactive section", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 20)
		h.store.sections[sectionID].State = "inactive"

		_, err := h.cmds.Create(ctx, validInput(sectionID))
		assert.ErrorIs(t, err, errs.ErrSectionNotFound)
	})

	t.Run("full section", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 0)

		_, err := h.cmds.Create(ctx, validInput(sectionID))
		assert.ErrorIs(t, err, errs.ErrSeatConflict)
	})

	t.Run("best match picks earliest start date", func(t *testing.T) {
		h := newHarness(t)
		courseTypeID := uuid.New()
		later := h.addSectionForCourse(courseTypeID, "mon-wed-18h", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), 20, 20)
		earlier := h.addSectionForCourse(courseTypeID, "mon-wed-18h", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 20, 20)

		input := validInput(uuid.Nil)
		input.SectionID = nil
		input.CourseTypeID = courseTypeID
		input.ScheduleSlot = "mon-wed-18h"

		result, err := h.cmds.Create(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, earlier, result.Section.ID)
		assert.Equal(t, int32(19), h.seats(earlier))
		assert.Equal(t, int32(20), h.seats(later))
	})

	t.Run("no best match", func(t *testing.T) {
		h := newHarness(t)
		input := validInput(uuid.Nil)
		input.SectionID = nil
		input.CourseTypeID = uuid.New()
		input.ScheduleSlot = "mon-wed-18h"

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrSectionNotFound)
	})

	t.Run("validation failures abort before any write", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 20)

		input := validInput(sectionID)
		input.Email = "not-an-email"
		input.AmountCents = 1234

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, int32(20), h.seats(sectionID))
		assert.Empty(t, h.store.requests)
	})

	t.Run("duplicate proof reference differs only by case", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 20)

		_, err := h.cmds.Create(ctx, validInput(sectionID))
		require.NoError(t, err)

		second := validInput(sectionID)
		second.ProofReference = "trx-001"

		_, err = h.cmds.Create(ctx, second)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, int32(19), h.seats(sectionID))
	})

	t.Run("last seat goes to exactly one of two requests", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(1, 1)

		first := validInput(sectionID)
		_, err := h.cmds.Create(ctx, first)
		require.NoError(t, err)

		second := validInput(sectionID)
		second.NationalID = "0998765432"
		second.ProofReference = "TRX-002"

		_, err = h.cmds.Create(ctx, second)
		assert.ErrorIs(t, err, errs.ErrSeatConflict)
		assert.Equal(t, int32(0), h.seats(sectionID))
		assert.Len(t, h.store.requests, 1)
	})

	t.Run("side effects after create", func(t *testing.T) {
		h := newHarness(t)
		sectionID := h.addSection(20, 20)

		_, err := h.cmds.Create(ctx, validInput(sectionID))
		require.NoError(t, err)

		assert.Equal(t, 1, h.cache.invalidations)
		require.Len(t, h.store.jobs, 1)
		assert.Equal(t, "request_created", h.store.jobs[0].Topic)
		require.Len(t, h.store.auditEntries, 1)
		assert.Equal(t, "create", h.store.auditEntries[0].Action)
	})
}

func TestCreateRequestWithPromotion(t *testing.T) {
	ctx := context.Background()
	limit := func(n int32) *int32 { return &n }

	t.Run("reserves both sections", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 10)
		promoID := h.addPromotion(principal, promotional, limit(5), 0)

		input := validInput(principal)
		input.PromotionID = &promoID

		result, err := h.cmds.Create(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, int32(19), h.seats(principal))
		assert.Equal(t, int32(9), h.seats(promotional))
	})

	t.Run("unknown promotion", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promoID := uuid.New()

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrPromotionNotFound)
		assert.Equal(t, int32(20), h.seats(principal))
	})

	t.Run("inactive promotion", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 10)
		promoID := h.addPromotion(principal, promotional, nil, 0)
		h.store.promotions[promoID].Active = false

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrPromotionInactive)
	})

	t.Run("expired promotion", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 10)
		promoID := h.addPromotion(principal, promotional, nil, 0)
		past := h.clock.Now().AddDate(0, -1, 0)
		h.store.promotions[promoID].ValidTo = &past

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrPromotionExpired)
	})

	t.Run("exhausted quota", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 10)
		promoID := h.addPromotion(principal, promotional, limit(5), 5)

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrQuotaExceeded)
	})

	t.Run("full promotional section", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 0)
		promoID := h.addPromotion(principal, promotional, nil, 0)

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrSeatConflict)
		assert.Equal(t, int32(20), h.seats(principal))
	})

	t.Run("applicant already enrolled in promotional section", func(t *testing.T) {
		h := newHarness(t)
		principal := h.addSection(20, 20)
		promotional := h.addSection(10, 10)
		promoID := h.addPromotion(principal, promotional, nil, 0)
		h.store.enrollments = append(h.store.enrollments, &storedEnrollment{
			ID:         uuid.New(),
			NationalID: "0912345678",
			SectionID:  promotional,
			State:      "active",
		})

		input := validInput(principal)
		input.PromotionID = &promoID

		_, err := h.cmds.Create(ctx, input)
		assert.ErrorIs(t, err, errs.ErrAlreadyEnrolled)
	})
}

func TestCreateRequestDuplicateStudentGuard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	courseTypeID := uuid.New()
	sectionID := h.addSectionForCourse(courseTypeID, "mon-wed-18h", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 20, 20)
	otherSection := h.addSectionForCourse(courseTypeID, "tue-thu-18h", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 20, 20)

	studentID := uuid.New()
	h.store.enrollments = append(h.store.enrollments, &storedEnrollment{
		ID:         uuid.New(),
		NationalID: "0912345678",
		SectionID:  otherSection,
		State:      "active",
	})

	input := validInput(sectionID)
	input.StudentID = &studentID

	_, err := h.cmds.Create(ctx, input)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, int32(20), h.seats(sectionID))
}
