package httpgin

import (
	"time"

	"github.com/yurkevych/seatstore/internal/domain"
)

type AddProductLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type AddSeatLineRequest struct {
	SeatID    int64 `json:"seat_id" binding:"required"`
	UnitCents int   `json:"unit_cents" binding:"required,gt=0"`
	TTLSec    int   `json:"ttl_sec"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	BuyerID       int64             `json:"buyer_id"`
	Lines         []domain.CartLine `json:"lines"`
	ExpiredLines  []domain.CartLine `json:"expired_lines,omitempty"`
	SubtotalCents int               `json:"subtotal_cents"`
}

type CheckoutRequest struct {
	CouponCode string `json:"coupon_code"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	TotalCents  int    `json:"total_cents"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type GatewayCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

type GatewayCallbackResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type SeatAvailabilityResponse struct {
	SeatID    int64 `json:"seat_id"`
	Available bool  `json:"available"`
}

type CreateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitCents int    `json:"unit_cents" binding:"required,gt=0"`
	Stock     int    `json:"stock" binding:"gte=0"`
}

type CreateProductResponse struct {
	ProductID int64 `json:"product_id"`
}

type CreateEventRequest struct {
	Title    string      `json:"title" binding:"required"`
	StartsAt string      `json:"starts_at" binding:"required"`
	EndsAt   string      `json:"ends_at" binding:"required"`
	Seats    []SeatInput `json:"seats" binding:"required,min=1,dive"`
}

type AddEventSeatsRequest struct {
	Seats []SeatInput `json:"seats" binding:"required,min=1,dive"`
}

type SeatInput struct {
	Tier  string `json:"tier" binding:"required"`
	Count int    `json:"count" binding:"required,gt=0"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

type CreateCouponRequest struct {
	Code      string `json:"code" binding:"required"`
	Percent   int    `json:"percent" binding:"required,gt=0,lte=100"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
	TierOnly  string `json:"tier_only"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
