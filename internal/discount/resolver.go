package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

// tierPercent is the fixed membership table. Unknown tiers contribute nothing.
var tierPercent = map[domain.MembershipTier]int{
	domain.TierNone:   0,
	domain.TierBasic:  5,
	domain.TierSilver: 10,
	domain.TierGold:   15,
}

// CouponSource looks up a coupon by code. repository.ErrNotFound means the
// code is unknown.
type CouponSource interface {
	GetCoupon(ctx context.Context, code string) (*domain.Discount, error)
}

type Resolver struct {
	coupons CouponSource
	now     func() time.Time
}

func New(coupons CouponSource) *Resolver {
	return &Resolver{
		coupons: coupons,
		now:     time.Now,
	}
}

// NewWithClock is the test constructor.
func NewWithClock(coupons CouponSource, now func() time.Time) *Resolver {
	return &Resolver{coupons: coupons, now: now}
}

// Resolve combines the tier percentage with an additive coupon percentage and
// clamps the sum to [0, 100]. Unknown, expired or tier-mismatched coupons
// contribute zero and never fail the call: checkout must not be blocked by a
// bad code.
func (r *Resolver) Resolve(ctx context.Context, tier domain.MembershipTier, couponCode string) (int, error) {
	const op = "discount.Resolver.Resolve"

	pct := tierPercent[tier]

	if couponCode != "" {
		d, err := r.coupons.GetCoupon(ctx, couponCode)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// soft-fail: unknown code contributes nothing
		case err != nil:
			return 0, fmt.Errorf("%s:%w", op, err)
		case d.Applicable(r.now(), tier):
			pct += d.Percent
		}
	}

	if pct < 0 {
		pct = 0
	}

	if pct > 100 {
		pct = 100
	}

	return pct, nil
}

// TierPercent exposes the bare tier component for the catalog surface.
func TierPercent(tier domain.MembershipTier) int {
	return tierPercent[tier]
}
