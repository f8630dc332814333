package promotion

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInactive      = errors.New("promotion is not active")
	ErrNotYetValid   = errors.New("promotion is not yet valid")
	ErrExpired       = errors.New("promotion has expired")
	ErrQuotaExceeded = errors.New("promotion quota exceeded")
)

type Promotion struct {
	id                   uuid.UUID
	name                 string
	principalSectionID   uuid.UUID
	promotionalSectionID uuid.UUID
	quotaLimit           *int32 // nil = unlimited
	quotaUsed            int32
	active               bool
	validFrom            *time.Time
	validTo              *time.Time
}

func NewPromotion(
	id uuid.UUID,
	name string,
	principalSectionID, promotionalSectionID uuid.UUID,
	quotaLimit *int32,
	quotaUsed int32,
	active bool,
	validFrom, validTo *time.Time,
) *Promotion {
	return &Promotion{
		id:                   id,
		name:                 name,
		principalSectionID:   principalSectionID,
		promotionalSectionID: promotionalSectionID,
		quotaLimit:           quotaLimit,
		quotaUsed:            quotaUsed,
		active:               active,
		validFrom:            validFrom,
		validTo:              validTo,
	}
}

func (p *Promotion) IsValidAt(t time.Time) bool {
	if p.validFrom != nil && t.Before(*p.validFrom) {
		return false
	}
	if p.validTo != nil && t.After(*p.validTo) {
		return false
	}
	return true
}

// ValidateUsage checks activity and the validity window, in that order.
func (p *Promotion) ValidateUsage(t time.Time) error {
	if !p.active {
		return ErrInactive
	}
	if !p.IsValidAt(t) {
		if p.validFrom != nil && t.Before(*p.validFrom) {
			return ErrNotYetValid
		}
		return ErrExpired
	}
	return nil
}

// HasQuota reports whether one more approval fits under the quota limit.
// A nil limit means unlimited.
func (p *Promotion) HasQuota() bool {
	if p.quotaLimit == nil {
		return true
	}
	return p.quotaUsed < *p.quotaLimit
}

func (p *Promotion) ID() uuid.UUID                   { return p.id }
func (p *Promotion) Name() string                    { return p.name }
func (p *Promotion) PrincipalSectionID() uuid.UUID   { return p.principalSectionID }
func (p *Promotion) PromotionalSectionID() uuid.UUID { return p.promotionalSectionID }
func (p *Promotion) QuotaLimit() *int32              { return p.quotaLimit }
func (p *Promotion) QuotaUsed() int32                { return p.quotaUsed }
func (p *Promotion) Active() bool                    { return p.active }
func (p *Promotion) ValidFrom() *time.Time           { return p.validFrom }
func (p *Promotion) ValidTo() *time.Time             { return p.validTo }

// Context is the immutable result of linking a promotion to a request.
// The reservation engine only needs the promotional section and the
// quota state observed at validation time.
type Context struct {
	PromotionID          uuid.UUID
	PromotionalSectionID uuid.UUID
	QuotaLimit           *int32
	QuotaUsed            int32
}

func (p *Promotion) Snapshot() Context {
	return Context{
		PromotionID:          p.id,
		PromotionalSectionID: p.promotionalSectionID,
		QuotaLimit:           p.quotaLimit,
		QuotaUsed:            p.quotaUsed,
	}
}
