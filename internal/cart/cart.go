package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yurkevych/seatstore/internal/domain"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrSeatAlreadyHeld = errors.New("seat already held in cart")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type Config struct {
	// MaxQuantityPerLine caps a single product line. Quantities above it are
	// clamped, not rejected.
	MaxQuantityPerLine int
	// MinHoldTTL and MaxHoldTTL bound the seat-hold window a client may ask for.
	MinHoldTTL time.Duration
	MaxHoldTTL time.Duration
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

func (c *Config) withDefaults() {
	if c.MaxQuantityPerLine <= 0 {
		c.MaxQuantityPerLine = 10
	}

	if c.MinHoldTTL <= 0 {
		c.MinHoldTTL = 15 * time.Second
	}

	if c.MaxHoldTTL <= 0 || c.MaxHoldTTL < c.MinHoldTTL {
		c.MaxHoldTTL = 15 * time.Minute
	}

	if c.Now == nil {
		c.Now = time.Now
	}
}

// Cart holds one buyer's in-progress selection before order creation. It is
// the buyer's intent only: availability and totals are re-validated
// server-side at checkout, and expiry pruning here never frees server-side
// inventory by itself.
type Cart struct {
	mu    sync.Mutex
	cfg   Config
	lines []domain.CartLine
}

func New(cfg Config) *Cart {
	cfg.withDefaults()
	return &Cart{cfg: cfg}
}

// AddProduct adds a product line or raises the quantity of an existing one,
// clamped to the per-line cap and to known stock.
func (c *Cart) AddProduct(p *domain.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	for i, l := range c.lines {
		if l.Kind == domain.LineProduct && l.ProductID == p.ID {
			clamped := c.clampQty(l.Quantity+qty, p.Stock)
			if clamped == 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return nil
			}
			c.lines[i].Quantity = clamped
			return nil
		}
	}

	clamped := c.clampQty(qty, p.Stock)
	if clamped == 0 {
		// Out of stock: nothing to carry.
		return nil
	}

	c.lines = append(c.lines, domain.CartLine{
		Kind:      domain.LineProduct,
		ProductID: p.ID,
		Quantity:  clamped,
		UnitCents: p.UnitCents,
	})

	return nil
}

// UpdateProductQuantity sets the quantity of an existing product line. Zero or
// negative removes the line, as does clamping against zero stock. A negative
// stock means the caller has no stock figure and only the per-line cap applies.
func (c *Cart) UpdateProductQuantity(productID int64, qty, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	for i, l := range c.lines {
		if l.Kind == domain.LineProduct && l.ProductID == productID {
			if qty > 0 {
				qty = c.clampQty(qty, stock)
			}
			if qty <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return nil
			}
			c.lines[i].Quantity = qty
			return nil
		}
	}

	return fmt.Errorf("%w: product %d", ErrLineNotFound, productID)
}

// AddSeatHold places a time-limited claim on a seat. The expiry stamped here
// is advisory to the client; the authoritative release is the ledger sweep.
func (c *Cart) AddSeatHold(seat *domain.Seat, unitCents int, ttl time.Duration) error {
	ttl = c.clampTTL(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	for _, l := range c.lines {
		if l.Kind == domain.LineSeat && l.SeatID == seat.ID {
			return fmt.Errorf("%w: seat %d", ErrSeatAlreadyHeld, seat.ID)
		}
	}

	c.lines = append(c.lines, domain.CartLine{
		Kind:      domain.LineSeat,
		EventID:   seat.EventID,
		SeatID:    seat.ID,
		Tier:      seat.Tier,
		UnitCents: unitCents,
		ExpiresAt: c.cfg.Now().Add(ttl),
	})

	return nil
}

// RemoveLine drops the line identified by its kind and id (product id for
// product lines, seat id for seat lines).
func (c *Cart) RemoveLine(kind domain.LineKind, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	for i, l := range c.lines {
		var match bool
		switch l.Kind {
		case domain.LineProduct:
			match = kind == domain.LineProduct && l.ProductID == id
		case domain.LineSeat:
			match = kind == domain.LineSeat && l.SeatID == id
		}
		if match {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}

	return ErrLineNotFound
}

// Lines returns the live lines plus any seat lines that expired since the
// last access, so the caller can tell the buyer what was dropped.
func (c *Cart) Lines() (live []domain.CartLine, expired []domain.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired = c.pruneLocked()
	live = make([]domain.CartLine, len(c.lines))
	copy(live, c.lines)

	return live, expired
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	var n int
	for _, l := range c.lines {
		switch l.Kind {
		case domain.LineProduct:
			n += l.Quantity
		case domain.LineSeat:
			n++
		}
	}

	return n
}

func (c *Cart) SubtotalCents() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	var sum int
	for _, l := range c.lines {
		switch l.Kind {
		case domain.LineProduct:
			sum += l.UnitCents * l.Quantity
		case domain.LineSeat:
			sum += l.UnitCents
		}
	}

	return sum
}

// pruneLocked drops seat lines past their hold window and returns them.
// Caller must hold c.mu.
func (c *Cart) pruneLocked() []domain.CartLine {
	now := c.cfg.Now()

	var expired []domain.CartLine
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.Expired(now) {
			expired = append(expired, l)
			continue
		}
		kept = append(kept, l)
	}
	c.lines = kept

	return expired
}

// clampQty bounds qty by the per-line cap and by stock. A negative stock means
// "unknown" and leaves only the cap in force.
func (c *Cart) clampQty(qty, stock int) int {
	if qty > c.cfg.MaxQuantityPerLine {
		qty = c.cfg.MaxQuantityPerLine
	}

	if stock >= 0 && qty > stock {
		qty = stock
	}

	return qty
}

func (c *Cart) clampTTL(ttl time.Duration) time.Duration {
	if ttl < c.cfg.MinHoldTTL {
		return c.cfg.MinHoldTTL
	}

	if ttl > c.cfg.MaxHoldTTL {
		return c.cfg.MaxHoldTTL
	}

	return ttl
}

// Registry hands out per-buyer carts. Carts are never shared between buyers;
// the registry lock only guards the map itself.
type Registry struct {
	mu    sync.Mutex
	cfg   Config
	carts map[int64]*Cart
}

func NewRegistry(cfg Config) *Registry {
	cfg.withDefaults()
	return &Registry{
		cfg:   cfg,
		carts: make(map[int64]*Cart),
	}
}

func (r *Registry) Cart(buyerID int64) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[buyerID]
	if !ok {
		c = New(r.cfg)
		r.carts[buyerID] = c
	}

	return c
}

// Drop discards a buyer's cart, typically after a successful checkout.
func (r *Registry) Drop(buyerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, buyerID)
}
