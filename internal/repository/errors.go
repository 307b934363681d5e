package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSeatConflict      = errors.New("seat confirmed under another order")
	ErrHoldExpired       = errors.New("seat hold expired before settlement")
	ErrAlreadySettled    = errors.New("order already settled")
	ErrNotSettleable     = errors.New("order is not in a settleable state")
)

// StockError reports which product ran out during settlement. It unwraps to
// ErrInsufficientStock so callers can match the class with errors.Is.
type StockError struct {
	ProductID int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// SeatConflictError reports which seat was already confirmed under another
// order. It unwraps to ErrSeatConflict.
type SeatConflictError struct {
	SeatID int64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %d already confirmed under another order", e.SeatID)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }

// HoldExpiredError reports a reservation the sweep released before settlement
// arrived. No other order holds the seat; the buyer simply paid too late. It
// unwraps to ErrHoldExpired.
type HoldExpiredError struct {
	SeatID int64
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold on seat %d expired before settlement", e.SeatID)
}

func (e *HoldExpiredError) Unwrap() error { return ErrHoldExpired }
