package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurkevych/seatstore/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAddProduct_MergesAndClamps(t *testing.T) {
	c := New(Config{MaxQuantityPerLine: 10})
	p := &domain.Product{ID: 1, Name: "mug", UnitCents: 1200, Stock: 6}

	require.NoError(t, c.AddProduct(p, 4))
	require.NoError(t, c.AddProduct(p, 4))

	live, _ := c.Lines()
	require.Len(t, live, 1)
	// 4+4 clamped to stock 6
	assert.Equal(t, 6, live[0].Quantity)
	assert.Equal(t, 1200, live[0].UnitCents)

	require.ErrorIs(t, c.AddProduct(p, 0), ErrInvalidQuantity)
	require.ErrorIs(t, c.AddProduct(p, -3), ErrInvalidQuantity)
}

func TestAddProduct_ClampsToPerLineCap(t *testing.T) {
	c := New(Config{MaxQuantityPerLine: 5})
	p := &domain.Product{ID: 7, UnitCents: 100, Stock: 100}

	require.NoError(t, c.AddProduct(p, 50))

	live, _ := c.Lines()
	require.Len(t, live, 1)
	assert.Equal(t, 5, live[0].Quantity)
}

func TestAddProduct_OutOfStockLeavesNoLine(t *testing.T) {
	c := New(Config{MaxQuantityPerLine: 10})
	sold := &domain.Product{ID: 4, Name: "poster", UnitCents: 900, Stock: 0}

	require.NoError(t, c.AddProduct(sold, 5))

	live, _ := c.Lines()
	assert.Empty(t, live)
	assert.Equal(t, 0, c.TotalItems())

	// a line added while stocked is dropped once a restated add sees zero stock
	p := &domain.Product{ID: 5, UnitCents: 900, Stock: 3}
	require.NoError(t, c.AddProduct(p, 2))
	p.Stock = 0
	require.NoError(t, c.AddProduct(p, 1))
	live, _ = c.Lines()
	assert.Empty(t, live)
}

func TestUpdateProductQuantity(t *testing.T) {
	c := New(Config{})
	p := &domain.Product{ID: 3, UnitCents: 500, Stock: 10}
	require.NoError(t, c.AddProduct(p, 2))

	require.NoError(t, c.UpdateProductQuantity(3, 5, 10))
	live, _ := c.Lines()
	assert.Equal(t, 5, live[0].Quantity)

	// zero removes the line
	require.NoError(t, c.UpdateProductQuantity(3, 0, 10))
	live, _ = c.Lines()
	assert.Empty(t, live)

	require.ErrorIs(t, c.UpdateProductQuantity(3, 1, 10), ErrLineNotFound)
}

func TestUpdateProductQuantity_ClampsToStock(t *testing.T) {
	c := New(Config{MaxQuantityPerLine: 10})
	p := &domain.Product{ID: 3, UnitCents: 500, Stock: 10}
	require.NoError(t, c.AddProduct(p, 2))

	require.NoError(t, c.UpdateProductQuantity(3, 8, 4))
	live, _ := c.Lines()
	require.Len(t, live, 1)
	assert.Equal(t, 4, live[0].Quantity)

	// stock drained since the line was added: the line goes away
	require.NoError(t, c.UpdateProductQuantity(3, 2, 0))
	live, _ = c.Lines()
	assert.Empty(t, live)
}

func TestAddSeatHold_RejectsDuplicate(t *testing.T) {
	c := New(Config{})
	seat := &domain.Seat{ID: 42, EventID: 9, Tier: "vip"}

	require.NoError(t, c.AddSeatHold(seat, 5000, time.Minute))
	err := c.AddSeatHold(seat, 5000, time.Minute)
	require.ErrorIs(t, err, ErrSeatAlreadyHeld)

	live, _ := c.Lines()
	require.Len(t, live, 1)
	assert.Equal(t, domain.LineSeat, live[0].Kind)
	assert.Equal(t, int64(42), live[0].SeatID)
	assert.Equal(t, int64(9), live[0].EventID)
}

func TestAddSeatHold_ClampsTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(Config{
		MinHoldTTL: 15 * time.Second,
		MaxHoldTTL: 15 * time.Minute,
		Now:        fixedClock(now),
	})

	require.NoError(t, c.AddSeatHold(&domain.Seat{ID: 1}, 100, time.Second))
	require.NoError(t, c.AddSeatHold(&domain.Seat{ID: 2}, 100, time.Hour))

	live, _ := c.Lines()
	require.Len(t, live, 2)
	assert.Equal(t, now.Add(15*time.Second), live[0].ExpiresAt)
	assert.Equal(t, now.Add(15*time.Minute), live[1].ExpiresAt)
}

func TestLines_PrunesExpiredSeatHolds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	c := New(Config{Now: func() time.Time { return clock }})

	require.NoError(t, c.AddProduct(&domain.Product{ID: 1, UnitCents: 100, Stock: 5}, 1))
	require.NoError(t, c.AddSeatHold(&domain.Seat{ID: 10, EventID: 2}, 3000, time.Minute))

	live, expired := c.Lines()
	assert.Len(t, live, 2)
	assert.Empty(t, expired)

	clock = now.Add(2 * time.Minute)

	live, expired = c.Lines()
	require.Len(t, live, 1)
	assert.Equal(t, domain.LineProduct, live[0].Kind)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(10), expired[0].SeatID)

	// expired lines are reported once, then gone
	_, expired = c.Lines()
	assert.Empty(t, expired)
}

func TestSubtotalAndTotalItems(t *testing.T) {
	c := New(Config{})
	require.NoError(t, c.AddProduct(&domain.Product{ID: 1, UnitCents: 1500, Stock: 10}, 2))
	require.NoError(t, c.AddProduct(&domain.Product{ID: 2, UnitCents: 700, Stock: 10}, 1))
	require.NoError(t, c.AddSeatHold(&domain.Seat{ID: 5, EventID: 1}, 120000, time.Minute))

	assert.Equal(t, 2*1500+700+120000, c.SubtotalCents())
	assert.Equal(t, 4, c.TotalItems())
}

func TestRemoveLine(t *testing.T) {
	c := New(Config{})
	require.NoError(t, c.AddProduct(&domain.Product{ID: 1, UnitCents: 100, Stock: 5}, 1))
	require.NoError(t, c.AddSeatHold(&domain.Seat{ID: 1, EventID: 2}, 100, time.Minute))

	// kinds keep product 1 and seat 1 apart
	require.NoError(t, c.RemoveLine(domain.LineSeat, 1))
	live, _ := c.Lines()
	require.Len(t, live, 1)
	assert.Equal(t, domain.LineProduct, live[0].Kind)

	require.ErrorIs(t, c.RemoveLine(domain.LineSeat, 1), ErrLineNotFound)
}

func TestRegistry_PerBuyerIsolationAndDrop(t *testing.T) {
	r := NewRegistry(Config{})

	a := r.Cart(1)
	b := r.Cart(2)
	require.NotSame(t, a, b)
	require.Same(t, a, r.Cart(1))

	require.NoError(t, a.AddProduct(&domain.Product{ID: 1, UnitCents: 100, Stock: 5}, 1))
	r.Drop(1)

	fresh := r.Cart(1)
	require.NotSame(t, a, fresh)
	live, _ := fresh.Lines()
	assert.Empty(t, live)
}
