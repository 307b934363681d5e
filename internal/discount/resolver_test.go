package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

type fakeCoupons struct {
	coupons map[string]domain.Discount
	err     error
}

func (f *fakeCoupons) GetCoupon(_ context.Context, code string) (*domain.Discount, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.coupons[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func TestResolve_TierOnly(t *testing.T) {
	r := New(&fakeCoupons{})

	tests := []struct {
		tier domain.MembershipTier
		want int
	}{
		{domain.TierNone, 0},
		{domain.TierBasic, 5},
		{domain.TierSilver, 10},
		{domain.TierGold, 15},
		{domain.MembershipTier("platinum"), 0}, // unknown tier contributes nothing
	}
	for _, tt := range tests {
		got, err := r.Resolve(context.Background(), tt.tier, "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "tier %s", tt.tier)
	}
}

func TestResolve_CouponAddsToTier(t *testing.T) {
	src := &fakeCoupons{coupons: map[string]domain.Discount{
		"SAVE10": {Code: "SAVE10", Percent: 10},
	}}
	r := New(src)

	got, err := r.Resolve(context.Background(), domain.TierBasic, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 15, got)
}

func TestResolve_ClampsToHundred(t *testing.T) {
	src := &fakeCoupons{coupons: map[string]domain.Discount{
		"FREE": {Code: "FREE", Percent: 95},
	}}
	r := New(src)

	got, err := r.Resolve(context.Background(), domain.TierGold, "FREE")
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

func TestResolve_UnknownCouponContributesNothing(t *testing.T) {
	r := New(&fakeCoupons{})

	got, err := r.Resolve(context.Background(), domain.TierSilver, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestResolve_ExpiredCouponContributesNothing(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeCoupons{coupons: map[string]domain.Discount{
		"OLD": {Code: "OLD", Percent: 20, ValidTo: now.Add(-time.Hour)},
		"FUT": {Code: "FUT", Percent: 20, ValidFrom: now.Add(time.Hour)},
	}}
	r := NewWithClock(src, func() time.Time { return now })

	for _, code := range []string{"OLD", "FUT"} {
		got, err := r.Resolve(context.Background(), domain.TierNone, code)
		require.NoError(t, err)
		assert.Zero(t, got, "coupon %s", code)
	}
}

func TestResolve_TierRestrictedCoupon(t *testing.T) {
	src := &fakeCoupons{coupons: map[string]domain.Discount{
		"GOLDONLY": {Code: "GOLDONLY", Percent: 25, TierOnly: domain.TierGold},
	}}
	r := New(src)

	got, err := r.Resolve(context.Background(), domain.TierBasic, "GOLDONLY")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = r.Resolve(context.Background(), domain.TierGold, "GOLDONLY")
	require.NoError(t, err)
	assert.Equal(t, 40, got)
}

func TestResolve_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("redis down")
	r := New(&fakeCoupons{err: boom})

	_, err := r.Resolve(context.Background(), domain.TierGold, "ANY")
	require.ErrorIs(t, err, boom)
}
