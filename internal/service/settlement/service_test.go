package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

type fakeStore struct {
	orders map[uuid.UUID]*domain.OrderWithLines
	byRef  map[string]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[uuid.UUID]*domain.OrderWithLines),
		byRef:  make(map[string]uuid.UUID),
	}
}

func (f *fakeStore) OrderWithLines(_ context.Context, orderID uuid.UUID) (*domain.OrderWithLines, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) OrderIDByExternalRef(_ context.Context, ref string) (uuid.UUID, error) {
	id, ok := f.byRef[ref]
	if !ok {
		return uuid.Nil, repository.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) FailOrder(_ context.Context, orderID uuid.UUID, reason string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Order.Status != domain.OrderPending {
		return repository.ErrNotSettleable
	}
	o.Order.Status = domain.OrderFailed
	return nil
}

// fakeLedger mirrors the all-or-nothing transactional ledger: every guard is
// checked before any mutation, so a failed settlement leaves stock and seats
// untouched.
type fakeLedger struct {
	store     *fakeStore
	stock     map[int64]int
	seatOwner map[int64]uuid.UUID
	swept     map[int64]bool
	err       error
}

func newFakeLedger(store *fakeStore) *fakeLedger {
	return &fakeLedger{
		store:     store,
		stock:     make(map[int64]int),
		seatOwner: make(map[int64]uuid.UUID),
		swept:     make(map[int64]bool),
	}
}

func (f *fakeLedger) ApplySettlement(_ context.Context, ord *domain.OrderWithLines) error {
	if f.err != nil {
		return f.err
	}

	stored := f.store.orders[ord.Order.ID]
	if stored.Order.Status == domain.OrderCompleted {
		return repository.ErrAlreadySettled
	}
	if stored.Order.Status != domain.OrderPending {
		return repository.ErrNotSettleable
	}

	for _, it := range ord.Items {
		if f.stock[it.ProductID] < it.Quantity {
			return &repository.StockError{ProductID: it.ProductID}
		}
	}
	for _, r := range ord.Reservations {
		if f.swept[r.SeatID] {
			return &repository.HoldExpiredError{SeatID: r.SeatID}
		}
		owner, taken := f.seatOwner[r.SeatID]
		if taken && owner != ord.Order.ID {
			return &repository.SeatConflictError{SeatID: r.SeatID}
		}
	}

	for _, it := range ord.Items {
		f.stock[it.ProductID] -= it.Quantity
	}
	for _, r := range ord.Reservations {
		f.seatOwner[r.SeatID] = ord.Order.ID
	}
	stored.Order.Status = domain.OrderCompleted
	return nil
}

type fakeNotifier struct {
	settled []uuid.UUID
	failed  []uuid.UUID
}

func (f *fakeNotifier) OrderSettled(_ context.Context, ord *domain.OrderWithLines) {
	f.settled = append(f.settled, ord.Order.ID)
}

func (f *fakeNotifier) OrderFailed(_ context.Context, orderID uuid.UUID, _ string) {
	f.failed = append(f.failed, orderID)
}

type env struct {
	store    *fakeStore
	ledger   *fakeLedger
	notifier *fakeNotifier
	svc      *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := newFakeStore()
	ledger := newFakeLedger(store)
	notifier := &fakeNotifier{}
	return &env{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		svc:      New(store, ledger, notifier, nil),
	}
}

func (e *env) addOrder(total int, items []domain.OrderItem, reservations []domain.Reservation) uuid.UUID {
	id := uuid.New()
	for i := range items {
		items[i].OrderID = id
	}
	for i := range reservations {
		reservations[i].OrderID = id
		reservations[i].Status = domain.ReservationPending
	}
	e.store.orders[id] = &domain.OrderWithLines{
		Order: domain.Order{
			ID:         id,
			UserID:     1,
			Status:     domain.OrderPending,
			TotalCents: total,
		},
		Items:        items,
		Reservations: reservations,
	}
	return id
}

func TestSettle_CompletesOrderOnce(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 5
	orderID := e.addOrder(3000, []domain.OrderItem{
		{ProductID: 1, Quantity: 2, UnitCents: 1500},
	}, nil)

	res, err := e.svc.Settle(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, res.Status)
	assert.Equal(t, 3000, res.AmountCents)
	assert.False(t, res.AlreadySettled)

	assert.Equal(t, 3, e.ledger.stock[1])
	assert.Equal(t, []uuid.UUID{orderID}, e.notifier.settled)
}

func TestSettle_DuplicateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 5
	orderID := e.addOrder(1500, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, UnitCents: 1500},
	}, nil)

	first, err := e.svc.Settle(context.Background(), orderID)
	require.NoError(t, err)
	require.False(t, first.AlreadySettled)

	second, err := e.svc.Settle(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, second.AlreadySettled)
	assert.Equal(t, domain.OrderCompleted, second.Status)
	assert.Equal(t, first.AmountCents, second.AmountCents)

	// stock decremented exactly once, notifier fired exactly once
	assert.Equal(t, 4, e.ledger.stock[1])
	assert.Len(t, e.notifier.settled, 1)
}

func TestSettle_ConcurrentDuplicateLosesFlip(t *testing.T) {
	// The snapshot read saw a pending order, but another settlement won the
	// pending->completed flip in between.
	e := newEnv(t)
	orderID := e.addOrder(1000, nil, nil)
	e.ledger.err = repository.ErrAlreadySettled

	res, err := e.svc.Settle(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, res.AlreadySettled)
	assert.Empty(t, e.notifier.settled)
}

func TestSettle_InsufficientStockFailsOrder(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 5
	e.ledger.stock[2] = 1
	orderID := e.addOrder(4000, []domain.OrderItem{
		{ProductID: 1, Quantity: 2, UnitCents: 1000},
		{ProductID: 2, Quantity: 2, UnitCents: 1000},
	}, nil)

	_, err := e.svc.Settle(context.Background(), orderID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)

	// no partial decrement and stock never goes negative
	assert.Equal(t, 5, e.ledger.stock[1])
	assert.Equal(t, 1, e.ledger.stock[2])
	assert.Equal(t, domain.OrderFailed, e.store.orders[orderID].Order.Status)
	assert.Equal(t, []uuid.UUID{orderID}, e.notifier.failed)
}

func TestSettle_SeatConflictFailsLoser(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 10

	winner := e.addOrder(5000, nil, []domain.Reservation{{SeatID: 7, EventID: 1, UserID: 1}})
	loser := e.addOrder(6000, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, UnitCents: 1000},
	}, []domain.Reservation{{SeatID: 7, EventID: 1, UserID: 2}})

	_, err := e.svc.Settle(context.Background(), winner)
	require.NoError(t, err)

	_, err = e.svc.Settle(context.Background(), loser)
	require.ErrorIs(t, err, ErrSeatConflict)
	var seatErr *SeatConflictError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, int64(7), seatErr.SeatID)

	// losing order's product decrement was rolled back with the transaction
	assert.Equal(t, 10, e.ledger.stock[1])
	assert.Equal(t, domain.OrderFailed, e.store.orders[loser].Order.Status)
	assert.Equal(t, winner, e.ledger.seatOwner[7])
}

func TestSettle_SweptHoldFailsAsExpiredNotConflict(t *testing.T) {
	// The sweep released the hold before the payment landed. Nobody else owns
	// the seat, so the failure must not read as a lost race.
	e := newEnv(t)
	e.ledger.stock[1] = 5
	e.ledger.swept[7] = true
	orderID := e.addOrder(4000, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, UnitCents: 1000},
	}, []domain.Reservation{{SeatID: 7, EventID: 1, UserID: 1}})

	_, err := e.svc.Settle(context.Background(), orderID)
	require.ErrorIs(t, err, ErrHoldExpired)
	require.NotErrorIs(t, err, ErrSeatConflict)
	var expiredErr *HoldExpiredError
	require.ErrorAs(t, err, &expiredErr)
	assert.Equal(t, int64(7), expiredErr.SeatID)

	assert.Equal(t, 5, e.ledger.stock[1])
	assert.Equal(t, domain.OrderFailed, e.store.orders[orderID].Order.Status)
	assert.Equal(t, []uuid.UUID{orderID}, e.notifier.failed)
}

func TestSettle_TerminalStatesAreNotSettleable(t *testing.T) {
	e := newEnv(t)
	orderID := e.addOrder(1000, nil, nil)
	e.store.orders[orderID].Order.Status = domain.OrderFailed

	_, err := e.svc.Settle(context.Background(), orderID)
	require.ErrorIs(t, err, ErrNotSettleable)
}

func TestSettle_UnknownOrder(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Settle(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHandleGatewayCallback_SucceededSettles(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 3
	orderID := e.addOrder(2000, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, UnitCents: 2000},
	}, nil)
	e.store.byRef["pi_abc"] = orderID

	res, err := e.svc.HandleGatewayCallback(context.Background(), "pi_abc", "succeeded")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, res.Status)
	assert.Equal(t, orderID, res.OrderID)
}

func TestHandleGatewayCallback_DuplicateCallbacks(t *testing.T) {
	e := newEnv(t)
	e.ledger.stock[1] = 3
	orderID := e.addOrder(2000, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, UnitCents: 2000},
	}, nil)
	e.store.byRef["pi_abc"] = orderID

	first, err := e.svc.HandleGatewayCallback(context.Background(), "pi_abc", "paid")
	require.NoError(t, err)
	require.False(t, first.AlreadySettled)

	second, err := e.svc.HandleGatewayCallback(context.Background(), "pi_abc", "paid")
	require.NoError(t, err)
	assert.True(t, second.AlreadySettled)
	assert.Equal(t, 2, e.ledger.stock[1])
}

func TestHandleGatewayCallback_FailureStatusFailsOrder(t *testing.T) {
	e := newEnv(t)
	orderID := e.addOrder(2000, nil, nil)
	e.store.byRef["pi_x"] = orderID

	res, err := e.svc.HandleGatewayCallback(context.Background(), "pi_x", "declined")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderFailed, res.Status)
	assert.Equal(t, domain.OrderFailed, e.store.orders[orderID].Order.Status)
	assert.Equal(t, []uuid.UUID{orderID}, e.notifier.failed)
}

func TestHandleGatewayCallback_UnknownReference(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.HandleGatewayCallback(context.Background(), "pi_missing", "succeeded")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
