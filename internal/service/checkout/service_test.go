package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/gateway"
	"github.com/yurkevych/seatstore/internal/service/settlement"
)

type fakeLedger struct {
	unavailable map[int64]bool
	calls       []int64
}

func (f *fakeLedger) IsSeatAvailable(_ context.Context, seatID int64) (bool, error) {
	f.calls = append(f.calls, seatID)
	return !f.unavailable[seatID], nil
}

type fakeOrderStore struct {
	orders       []*domain.Order
	items        []domain.OrderItem
	reservations []*domain.Reservation
	payments     []*domain.Payment
	externalRefs map[uuid.UUID]string
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{externalRefs: make(map[uuid.UUID]string)}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o *domain.Order) error {
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderStore) AddOrderItems(_ context.Context, items []domain.OrderItem) error {
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeOrderStore) AddReservation(_ context.Context, r *domain.Reservation) error {
	f.reservations = append(f.reservations, r)
	return nil
}

func (f *fakeOrderStore) CreatePayment(_ context.Context, p *domain.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeOrderStore) SetExternalRef(_ context.Context, orderID uuid.UUID, ref string) error {
	f.externalRefs[orderID] = ref
	return nil
}

type fakeBuyers struct {
	tier domain.MembershipTier
}

func (f *fakeBuyers) MembershipTier(_ context.Context, _ int64) (domain.MembershipTier, error) {
	if f.tier == "" {
		return domain.TierNone, nil
	}
	return f.tier, nil
}

type fakeResolver struct {
	pct        int
	gotTier    domain.MembershipTier
	gotCoupon  string
	resolveErr error
}

func (f *fakeResolver) Resolve(_ context.Context, tier domain.MembershipTier, coupon string) (int, error) {
	f.gotTier = tier
	f.gotCoupon = coupon
	return f.pct, f.resolveErr
}

type fakeSettler struct {
	calls  []uuid.UUID
	result *settlement.Result
	err    error
}

func (f *fakeSettler) Settle(_ context.Context, orderID uuid.UUID) (*settlement.Result, error) {
	f.calls = append(f.calls, orderID)
	if f.result != nil {
		r := *f.result
		r.OrderID = orderID
		return &r, f.err
	}
	return &settlement.Result{OrderID: orderID, Status: domain.OrderCompleted}, f.err
}

type fakeGateway struct {
	calls  []gateway.IntentRequest
	intent *gateway.Intent
	err    error
}

func (f *fakeGateway) CreateIntent(_ context.Context, req gateway.IntentRequest) (*gateway.Intent, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type env struct {
	ledger   *fakeLedger
	store    *fakeOrderStore
	buyers   *fakeBuyers
	resolver *fakeResolver
	settler  *fakeSettler
	gw       *fakeGateway
	svc      *Service
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()

	e := &env{
		ledger:   &fakeLedger{unavailable: make(map[int64]bool)},
		store:    newFakeOrderStore(),
		buyers:   &fakeBuyers{},
		resolver: &fakeResolver{},
		settler:  &fakeSettler{},
		gw: &fakeGateway{intent: &gateway.Intent{
			IntentID:    "pi_123",
			RedirectURL: "https://pay.example/pi_123",
		}},
	}
	e.svc = New(e.ledger, e.store, e.buyers, e.resolver, e.settler, e.gw, nil, cfg, nil)
	return e
}

func productLine(id int64, qty, unitCents int) domain.CartLine {
	return domain.CartLine{Kind: domain.LineProduct, ProductID: id, Quantity: qty, UnitCents: unitCents}
}

func seatLine(seatID, eventID int64, unitCents int) domain.CartLine {
	return domain.CartLine{Kind: domain.LineSeat, SeatID: seatID, EventID: eventID, UnitCents: unitCents}
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t, Config{})

	_, err := e.svc.Checkout(context.Background(), Input{BuyerID: 1}, "")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, e.store.orders)
}

func TestCheckout_SeatUnavailable_NothingPersisted(t *testing.T) {
	e := newEnv(t, Config{})
	e.ledger.unavailable[7] = true

	_, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 1,
		Lines: []domain.CartLine{
			productLine(1, 2, 1000),
			seatLine(7, 3, 5000),
		},
	}, "")

	require.ErrorIs(t, err, ErrSeatUnavailable)
	var seatErr *SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, int64(7), seatErr.SeatID)

	assert.Empty(t, e.store.orders)
	assert.Empty(t, e.store.items)
	assert.Empty(t, e.store.reservations)
	assert.Empty(t, e.gw.calls)
}

func TestCheckout_DiscountedTotal(t *testing.T) {
	// $42.00 at 10 percent comes out to $37.80
	e := newEnv(t, Config{})
	e.resolver.pct = 10
	e.buyers.tier = domain.TierSilver

	res, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 5,
		Lines:   []domain.CartLine{productLine(1, 3, 1400)},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 3780, res.TotalCents)
	assert.False(t, res.ZeroCost)
	assert.Equal(t, "https://pay.example/pi_123", res.RedirectURL)

	require.Len(t, e.store.orders, 1)
	assert.Equal(t, 3780, e.store.orders[0].TotalCents)
	assert.Equal(t, domain.OrderPending, e.store.orders[0].Status)
	assert.Equal(t, domain.OrderProductsOnly, e.store.orders[0].Type)
	assert.Equal(t, domain.TierSilver, e.resolver.gotTier)

	require.Len(t, e.gw.calls, 1)
	assert.Equal(t, 3780, e.gw.calls[0].AmountCents)
	assert.Equal(t, res.OrderID.String(), e.gw.calls[0].Reference)

	assert.Equal(t, "pi_123", e.store.externalRefs[res.OrderID])
	require.Len(t, e.store.payments, 1)
	assert.Equal(t, domain.PaymentPending, e.store.payments[0].Status)
	assert.Equal(t, 3780, e.store.payments[0].AmountCents)
}

func TestCheckout_TotalForEachDiscountStep(t *testing.T) {
	tests := []struct {
		pct  int
		want int
	}{
		{0, 4200},
		{5, 3990},
		{10, 3780},
		{15, 3570},
		{100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalCents(4200, tt.pct), "pct %d", tt.pct)
	}
}

func TestTotalCents_RoundsHalfUp(t *testing.T) {
	// 999 * 0.95 = 949.05 -> 949; 990 * 0.85 = 841.5 -> 842
	assert.Equal(t, 949, TotalCents(999, 5))
	assert.Equal(t, 842, TotalCents(990, 15))
	assert.Equal(t, 0, TotalCents(0, 50))
}

func TestCheckout_ZeroTotalSettlesSynchronously(t *testing.T) {
	e := newEnv(t, Config{})
	e.resolver.pct = 100

	res, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 2,
		Lines:   []domain.CartLine{productLine(1, 1, 2500)},
	}, "")
	require.NoError(t, err)

	assert.True(t, res.ZeroCost)
	assert.Zero(t, res.TotalCents)
	assert.Empty(t, res.RedirectURL)
	require.NotNil(t, res.Settlement)
	assert.Equal(t, domain.OrderCompleted, res.Settlement.Status)

	// the gateway is never contacted on the zero-cost path
	assert.Empty(t, e.gw.calls)
	require.Len(t, e.settler.calls, 1)
	assert.Equal(t, res.OrderID, e.settler.calls[0])
}

func TestCheckout_GatewayErrorLeavesPendingOrder(t *testing.T) {
	e := newEnv(t, Config{})
	e.gw.err = gateway.ErrGateway

	_, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 3,
		Lines:   []domain.CartLine{productLine(1, 1, 1000)},
	}, "")

	require.ErrorIs(t, err, gateway.ErrGateway)
	// the order survives for a retry, but no payment row exists
	require.Len(t, e.store.orders, 1)
	assert.Equal(t, domain.OrderPending, e.store.orders[0].Status)
	assert.Empty(t, e.store.payments)
	assert.Empty(t, e.store.externalRefs)
}

func TestCheckout_SeatLinesBecomeReservations(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	e := newEnv(t, Config{HoldTTL: 10 * time.Minute, Now: func() time.Time { return now }})

	expiry := now.Add(3 * time.Minute)
	withExpiry := seatLine(11, 4, 8000)
	withExpiry.ExpiresAt = expiry

	res, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 9,
		Lines: []domain.CartLine{
			withExpiry,
			seatLine(12, 4, 8000),
		},
	}, "")
	require.NoError(t, err)

	require.Len(t, e.store.orders, 1)
	assert.Equal(t, domain.OrderWithSeats, e.store.orders[0].Type)

	require.Len(t, e.store.reservations, 2)
	for _, r := range e.store.reservations {
		assert.Equal(t, res.OrderID, r.OrderID)
		assert.Equal(t, domain.ReservationPending, r.Status)
	}
	// cart expiry is carried over; a missing one falls back to HoldTTL
	assert.Equal(t, expiry, e.store.reservations[0].ExpiresAt)
	assert.Equal(t, now.Add(10*time.Minute), e.store.reservations[1].ExpiresAt)
}

func TestCheckout_MixedCartSubtotal(t *testing.T) {
	e := newEnv(t, Config{})

	res, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 1,
		Lines: []domain.CartLine{
			productLine(1, 2, 1500),
			seatLine(20, 6, 12000),
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 2*1500+12000, res.TotalCents)
	assert.Equal(t, domain.OrderWithSeats, e.store.orders[0].Type)
	require.Len(t, e.store.items, 1)
	assert.Equal(t, 1500, e.store.items[0].UnitCents)
}

func TestCheckout_ResolverErrorAborts(t *testing.T) {
	e := newEnv(t, Config{})
	boom := errors.New("coupon backend down")
	e.resolver.resolveErr = boom

	_, err := e.svc.Checkout(context.Background(), Input{
		BuyerID: 1,
		Lines:   []domain.CartLine{productLine(1, 1, 100)},
	}, "")

	require.ErrorIs(t, err, boom)
	assert.Empty(t, e.store.orders)
}
