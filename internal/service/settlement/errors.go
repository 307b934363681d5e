package settlement

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotSettleable     = errors.New("order can no longer be settled")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSeatConflict      = errors.New("seat lost to a concurrent order")
	ErrHoldExpired       = errors.New("seat hold expired before payment completed")
)

type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type SeatConflictError struct {
	SeatID int64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %d was confirmed for a concurrent order", e.SeatID)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }

// HoldExpiredError distinguishes a lapsed hold from a lost race: the seat was
// free, but the buyer's reservation had already been swept when payment landed.
type HoldExpiredError struct {
	SeatID int64
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold on seat %d expired before payment completed", e.SeatID)
}

func (e *HoldExpiredError) Unwrap() error { return ErrHoldExpired }
