//go:build unit

package promotion_test

import (
	"testing"
	"time"

	"academy-api/internal/domain/promotion"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromotion(mutate func(*promoParams)) *promotion.Promotion {
	p := &promoParams{
		active: true,
	}
	if mutate != nil {
		mutate(p)
	}
	return promotion.NewPromotion(
		uuid.New(), "summer-intensive",
		uuid.New(), uuid.New(),
		p.quotaLimit, p.quotaUsed, p.active, p.validFrom, p.validTo,
	)
}

type promoParams struct {
	quotaLimit *int32
	quotaUsed  int32
	active     bool
	validFrom  *time.Time
	validTo    *time.Time
}

func TestValidateUsage(t *testing.T) {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	t.Run("active with open window", func(t *testing.T) {
		p := newPromotion(func(pp *promoParams) {
			pp.validFrom = &yesterday
			pp.validTo = &tomorrow
		})
		require.NoError(t, p.ValidateUsage(now))
	})

	t.Run("no window means always valid", func(t *testing.T) {
		require.NoError(t, newPromotion(nil).ValidateUsage(now))
	})

	t.Run("inactive wins over window checks", func(t *testing.T) {
		p := newPromotion(func(pp *promoParams) {
			pp.active = false
			pp.validFrom = &tomorrow
		})
		assert.ErrorIs(t, p.ValidateUsage(now), promotion.ErrInactive)
	})

	t.Run("not yet valid", func(t *testing.T) {
		p := newPromotion(func(pp *promoParams) { pp.validFrom = &tomorrow })
		assert.ErrorIs(t, p.ValidateUsage(now), promotion.ErrNotYetValid)
	})

	t.Run("expired", func(t *testing.T) {
		p := newPromotion(func(pp *promoParams) { pp.validTo = &yesterday })
		assert.ErrorIs(t, p.ValidateUsage(now), promotion.ErrExpired)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		p := newPromotion(func(pp *promoParams) {
			pp.validFrom = &now
			pp.validTo = &now
		})
		require.NoError(t, p.ValidateUsage(now))
	})
}

func TestHasQuota(t *testing.T) {
	limit := func(n int32) *int32 { return &n }

	cases := []struct {
		name       string
		quotaLimit *int32
		quotaUsed  int32
		want       bool
	}{
		{"nil limit is unlimited", nil, 1000, true},
		{"under the limit", limit(5), 4, true},
		{"at the limit", limit(5), 5, false},
		{"over the limit", limit(5), 6, false},
		{"zero limit", limit(0), 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newPromotion(func(pp *promoParams) {
				pp.quotaLimit = c.quotaLimit
				pp.quotaUsed = c.quotaUsed
			})
			assert.Equal(t, c.want, p.HasQuota())
		})
	}
}

func TestSnapshot(t *testing.T) {
	limit := int32(10)
	p := newPromotion(func(pp *promoParams) {
		pp.quotaLimit = &limit
		pp.quotaUsed = 3
	})

	ctx := p.Snapshot()
	assert.Equal(t, p.ID(), ctx.PromotionID)
	assert.Equal(t, p.PromotionalSectionID(), ctx.PromotionalSectionID)
	require.NotNil(t, ctx.QuotaLimit)
	assert.Equal(t, limit, *ctx.QuotaLimit)
	assert.Equal(t, int32(3), ctx.QuotaUsed)
}
