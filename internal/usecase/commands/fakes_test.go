//go:build unit

package commands_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/domain/enrollment"
	"academy-api/internal/domain/request"
	"academy-api/internal/domain/section"
	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

// fakeStore is an in-memory stand-in for postgres that keeps the same
// conditional-update semantics the SQL layer has: seat decrements fail
// on zero seats, quota increments fail at the limit, proof references
// collide case-insensitively.
type fakeStore struct {
	sections    map[uuid.UUID]*shared.SectionSnapshot
	promotions  map[uuid.UUID]*shared.PromotionSnapshot
	requests    map[uuid.UUID]*storedRequest
	enrollments []*storedEnrollment
	proofRefs   map[string]bool

	auditEntries []shared.AuditEntry
	jobs         []storedJob

	// requestReadOverride, when set, substitutes the snapshot served
	// by RequestByID. Tests use it to replay a read taken before a
	// concurrent writer committed.
	requestReadOverride func(id uuid.UUID) *shared.RequestSnapshot
}

type storedRequest struct {
	shared.RequestSnapshot
	CourseTypeID uuid.UUID
}

type storedEnrollment struct {
	ID         uuid.UUID
	Code       string
	NationalID string
	SectionID  uuid.UUID
	RequestID  uuid.UUID
	State      string
}

type storedJob struct {
	Kind  string
	Topic string
}

func monthlyPricing() section.Pricing {
	return section.Pricing{Modality: section.ModalityMonthly, MonthlyRateCents: 9000}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sections:   map[uuid.UUID]*shared.SectionSnapshot{},
		promotions: map[uuid.UUID]*shared.PromotionSnapshot{},
		requests:   map[uuid.UUID]*storedRequest{},
		proofRefs:  map[string]bool{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, sec := range s.sections {
		cp := *sec
		c.sections[id] = &cp
	}
	for id, p := range s.promotions {
		cp := *p
		c.promotions[id] = &cp
	}
	for id, r := range s.requests {
		cp := *r
		c.requests[id] = &cp
	}
	for _, e := range s.enrollments {
		cp := *e
		c.enrollments = append(c.enrollments, &cp)
	}
	for ref := range s.proofRefs {
		c.proofRefs[ref] = true
	}
	c.auditEntries = append(c.auditEntries, s.auditEntries...)
	c.jobs = append(c.jobs, s.jobs...)
	c.requestReadOverride = s.requestReadOverride
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.sections = from.sections
	s.promotions = from.promotions
	s.requests = from.requests
	s.enrollments = from.enrollments
	s.proofRefs = from.proofRefs
	s.auditEntries = from.auditEntries
	s.jobs = from.jobs
	s.requestReadOverride = from.requestReadOverride
}

func (s *fakeStore) recomputeSeats(sectionID uuid.UUID) (int32, error) {
	sec, ok := s.sections[sectionID]
	if !ok {
		return 0, infra.WrapRepoErr("section not found", nil, infra.KindNotFound)
	}

	var held int32
	for _, r := range s.requests {
		if !request.Status(r.Status).HoldsReservation() {
			continue
		}
		if r.SectionID == sectionID {
			held++
		}
		if r.PromotionID != nil {
			if promo, ok := s.promotions[*r.PromotionID]; ok && promo.PromotionalSectionID == sectionID {
				held++
			}
		}
	}
	var active int32
	for _, e := range s.enrollments {
		if e.SectionID == sectionID && e.State == "active" {
			active++
		}
	}

	seats := sec.Capacity - held - active
	if seats < 0 {
		seats = 0
	}
	sec.SeatsAvailable = seats
	return seats, nil
}

// ---- unit of work ----

type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	before := u.store.clone()
	if err := fn(ctx, &fakeTx{store: u.store}); err != nil {
		u.store.restore(before)
		return err
	}
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{store: u.store}
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Requests() shared.RequestRepository         { return &fakeRequestRepo{t.store} }
func (t *fakeTx) Sections() shared.SectionRepository         { return &fakeSectionRepo{t.store} }
func (t *fakeTx) Promotions() shared.PromotionRepository     { return &fakePromotionRepo{t.store} }
func (t *fakeTx) Enrollments() shared.EnrollmentRepository   { return &fakeEnrollmentRepo{t.store} }
func (t *fakeTx) Audit() shared.AuditRepository              { return &fakeAuditRepo{t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository {
	return &fakeNotificationRepo{t.store}
}
func (t *fakeTx) Reads() shared.CommandReads { return &fakeReads{store: t.store} }
func (t *fakeTx) DB() db.DBTX                { return nil }

// ---- reads ----

type fakeReads struct {
	store *fakeStore
}

func (r *fakeReads) SectionByID(_ context.Context, id uuid.UUID) (*shared.SectionSnapshot, error) {
	sec, ok := r.store.sections[id]
	if !ok {
		return nil, infra.WrapRepoErr("section not found", nil, infra.KindNotFound)
	}
	cp := *sec
	return &cp, nil
}

func (r *fakeReads) SectionBestMatch(_ context.Context, courseTypeID uuid.UUID, scheduleSlot string) (*shared.SectionSnapshot, error) {
	var candidates []*shared.SectionSnapshot
	for _, sec := range r.store.sections {
		if sec.CourseTypeID == courseTypeID && sec.ScheduleSlot == scheduleSlot &&
			sec.State == "active" && sec.SeatsAvailable > 0 {
			candidates = append(candidates, sec)
		}
	}
	if len(candidates) == 0 {
		return nil, infra.WrapRepoErr("no open section", nil, infra.KindNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].StartDate.Equal(candidates[j].StartDate) {
			return candidates[i].StartDate.Before(candidates[j].StartDate)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	cp := *candidates[0]
	return &cp, nil
}

func (r *fakeReads) PromotionByID(_ context.Context, id uuid.UUID) (*shared.PromotionSnapshot, error) {
	promo, ok := r.store.promotions[id]
	if !ok {
		return nil, infra.WrapRepoErr("promotion not found", nil, infra.KindNotFound)
	}
	cp := *promo
	return &cp, nil
}

func (r *fakeReads) RequestByID(_ context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	if r.store.requestReadOverride != nil {
		if snap := r.store.requestReadOverride(id); snap != nil {
			cp := *snap
			return &cp, nil
		}
	}
	req, ok := r.store.requests[id]
	if !ok {
		return nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	cp := req.RequestSnapshot
	return &cp, nil
}

func (r *fakeReads) ProofReferenceInUse(_ context.Context, ref string) (bool, error) {
	return r.store.proofRefs[strings.ToUpper(strings.TrimSpace(ref))], nil
}

func (r *fakeReads) ActiveEnrollmentExists(_ context.Context, nationalID string, courseTypeID uuid.UUID) (bool, error) {
	for _, e := range r.store.enrollments {
		if e.State != "active" || e.NationalID != nationalID {
			continue
		}
		if sec, ok := r.store.sections[e.SectionID]; ok && sec.CourseTypeID == courseTypeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReads) ActiveEnrollmentInSection(_ context.Context, nationalID string, sectionID uuid.UUID) (bool, error) {
	for _, e := range r.store.enrollments {
		if e.State == "active" && e.NationalID == nationalID && e.SectionID == sectionID {
			return true, nil
		}
	}
	return false, nil
}

// ---- write repositories ----

type fakeRequestRepo struct {
	store *fakeStore
}

func (r *fakeRequestRepo) Create(_ context.Context, _ db.DBTX, req *request.EnrollmentRequest) (uuid.UUID, error) {
	ref := req.Payment().ProofReference.String()
	if r.store.proofRefs[ref] {
		return uuid.Nil, infra.WrapRepoErr("duplicate proof reference", nil, infra.KindDuplicateKey)
	}
	r.store.proofRefs[ref] = true
	r.store.requests[req.ID()] = &storedRequest{
		RequestSnapshot: shared.RequestSnapshot{
			ID:          req.ID(),
			Code:        req.Code(),
			SectionID:   req.SectionID(),
			StudentID:   req.Applicant().StudentID,
			PromotionID: req.PromotionID(),
			Status:      req.Status().String(),
			NationalID:  req.Applicant().NationalID,
			Email:       req.Applicant().Email,
		},
		CourseTypeID: req.CourseTypeID(),
	}
	return req.ID(), nil
}

func (r *fakeRequestRepo) UpdateDecision(_ context.Context, _ db.DBTX, req *request.EnrollmentRequest) error {
	stored, ok := r.store.requests[req.ID()]
	if !ok {
		return infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	if !request.Status(stored.Status).HoldsReservation() {
		return infra.WrapRepoErr("request not decidable", nil, infra.KindConflict)
	}
	stored.Status = req.Status().String()
	return nil
}

func (r *fakeRequestRepo) UpdatePromotion(_ context.Context, _ db.DBTX, requestID uuid.UUID, promotionID *uuid.UUID, _ time.Time) error {
	stored, ok := r.store.requests[requestID]
	if !ok {
		return infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	if !request.Status(stored.Status).HoldsReservation() {
		return infra.WrapRepoErr("request not modifiable", nil, infra.KindConflict)
	}
	stored.PromotionID = promotionID
	return nil
}

type fakeSectionRepo struct {
	store *fakeStore
}

func (r *fakeSectionRepo) ReserveSeat(_ context.Context, _ db.DBTX, sectionID uuid.UUID) error {
	sec, ok := r.store.sections[sectionID]
	if !ok || sec.SeatsAvailable <= 0 {
		return infra.WrapRepoErr("no seat available", nil, infra.KindConflict)
	}
	sec.SeatsAvailable--
	return nil
}

func (r *fakeSectionRepo) ReleaseSeat(_ context.Context, _ db.DBTX, sectionID uuid.UUID) error {
	sec, ok := r.store.sections[sectionID]
	if !ok {
		return infra.WrapRepoErr("section not found", nil, infra.KindNotFound)
	}
	if sec.SeatsAvailable < sec.Capacity {
		sec.SeatsAvailable++
	}
	return nil
}

func (r *fakeSectionRepo) RecomputeSeats(_ context.Context, _ db.DBTX, sectionID uuid.UUID) (int32, error) {
	return r.store.recomputeSeats(sectionID)
}

type fakePromotionRepo struct {
	store *fakeStore
}

func (r *fakePromotionRepo) IncrementQuotaUsed(_ context.Context, _ db.DBTX, promotionID uuid.UUID) error {
	promo, ok := r.store.promotions[promotionID]
	if !ok {
		return infra.WrapRepoErr("promotion not found", nil, infra.KindNotFound)
	}
	if promo.QuotaLimit != nil && promo.QuotaUsed >= *promo.QuotaLimit {
		return infra.WrapRepoErr("promotion quota exhausted", nil, infra.KindConflict)
	}
	promo.QuotaUsed++
	return nil
}

type fakeEnrollmentRepo struct {
	store *fakeStore
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, _ db.DBTX, enr *enrollment.Enrollment) (uuid.UUID, error) {
	nationalID := ""
	if req, ok := r.store.requests[enr.RequestID()]; ok {
		nationalID = req.NationalID
	}
	r.store.enrollments = append(r.store.enrollments, &storedEnrollment{
		ID:         enr.ID(),
		Code:       enr.Code(),
		NationalID: nationalID,
		SectionID:  enr.SectionID(),
		RequestID:  enr.RequestID(),
		State:      string(enr.State()),
	})
	return enr.ID(), nil
}

func (r *fakeEnrollmentRepo) FindByRequestID(_ context.Context, _ db.DBTX, requestID uuid.UUID) (*shared.EnrollmentSnapshot, error) {
	for _, e := range r.store.enrollments {
		if e.RequestID == requestID {
			return &shared.EnrollmentSnapshot{
				ID: e.ID, Code: e.Code, SectionID: e.SectionID, RequestID: e.RequestID, State: e.State,
			}, nil
		}
	}
	return nil, infra.WrapRepoErr("enrollment not found", nil, infra.KindNotFound)
}

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) Append(_ context.Context, _ db.DBTX, entry shared.AuditEntry) error {
	r.store.auditEntries = append(r.store.auditEntries, entry)
	return nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, _ []byte, _ time.Time) error {
	r.store.jobs = append(r.store.jobs, storedJob{Kind: kind, Topic: topic})
	return nil
}

// ---- query side ----

type fakeRequestQueries struct {
	store *fakeStore
}

func (q *fakeRequestQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.RequestView, error) {
	req, ok := q.store.requests[id]
	if !ok {
		return nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	return &queries.RequestView{
		ID:          req.ID,
		Code:        req.Code,
		NationalID:  req.NationalID,
		Email:       req.Email,
		SectionID:   req.SectionID,
		PromotionID: req.PromotionID,
		State:       req.Status,
	}, nil
}

func (q *fakeRequestQueries) List(_ context.Context, _ queries.RequestFilter) ([]*queries.RequestListItem, int64, error) {
	return nil, 0, nil
}

func (q *fakeRequestQueries) CountByState(_ context.Context) ([]queries.StateCount, error) {
	return nil, nil
}

type fakeSectionCache struct {
	invalidations int
}

func (c *fakeSectionCache) GetAvailable(_ context.Context) ([]*queries.SectionView, bool, error) {
	return nil, false, nil
}

func (c *fakeSectionCache) SetAvailable(_ context.Context, _ []*queries.SectionView) error {
	return nil
}

func (c *fakeSectionCache) Invalidate(_ context.Context) error {
	c.invalidations++
	return nil
}
