package domain

import (
	"time"

	"github.com/google/uuid"
)

type MembershipTier string

const (
	TierNone   MembershipTier = "none"
	TierBasic  MembershipTier = "basic"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderProductsOnly OrderType = "products"
	OrderWithSeats    OrderType = "seats"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Product struct {
	ID        int64
	Name      string
	UnitCents int
	Stock     int
}

type Event struct {
	ID     int64
	Title  string
	Starts time.Time
	Ends   time.Time
}

type Seat struct {
	ID         int64
	EventID    int64
	Tier       string
	IsReserved bool
}

type Reservation struct {
	ID        uuid.UUID
	UserID    int64
	EventID   int64
	SeatID    int64
	OrderID   uuid.UUID
	Status    ReservationStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LineKind discriminates the cart-line union. Every consumer switches
// exhaustively on it, so adding a third kind is a compile-visible change
// at each site.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineSeat    LineKind = "seat"
)

// CartLine is a tagged union: product fields are set for LineProduct,
// seat fields for LineSeat. UnitCents is always set.
type CartLine struct {
	Kind      LineKind  `json:"kind"`
	UnitCents int       `json:"unit_cents"`
	ProductID int64     `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	EventID   int64     `json:"event_id,omitempty"`
	SeatID    int64     `json:"seat_id,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether a seat line's hold window has lapsed. Product
// lines never expire.
func (l CartLine) Expired(now time.Time) bool {
	return l.Kind == LineSeat && !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt)
}

type Order struct {
	ID          uuid.UUID
	UserID      int64
	Status      OrderStatus
	Type        OrderType
	TotalCents  int
	ExternalRef string
	CreatedAt   time.Time
}

type OrderItem struct {
	OrderID   uuid.UUID
	ProductID int64
	Quantity  int
	UnitCents int // price snapshot frozen at checkout time
}

type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	AmountCents int
	Status      PaymentStatus
	Provider    string
	ProviderRef string
	CreatedAt   time.Time
}

type Discount struct {
	Code      string
	Percent   int
	ValidFrom time.Time
	ValidTo   time.Time
	TierOnly  MembershipTier // empty means no tier restriction
}

// Applicable reports whether the coupon may contribute at the given instant
// for the given membership tier.
func (d Discount) Applicable(now time.Time, tier MembershipTier) bool {
	if !d.ValidFrom.IsZero() && now.Before(d.ValidFrom) {
		return false
	}
	if !d.ValidTo.IsZero() && now.After(d.ValidTo) {
		return false
	}
	if d.TierOnly != "" && d.TierOnly != tier {
		return false
	}
	return true
}

// OrderWithLines is the settlement view of an order: its product items plus
// the seat reservations linked to it.
type OrderWithLines struct {
	Order        Order
	Items        []OrderItem
	Reservations []Reservation
}
