package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart       = errors.New("cart has no lines")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrBuyerNotFound   = errors.New("buyer not found")
	ErrRateLimited     = errors.New("too many checkout attempts")
)

// SeatUnavailableError is returned from the pre-persistence availability
// check; nothing has been written when the caller sees it.
type SeatUnavailableError struct {
	SeatID int64
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %d is unavailable", e.SeatID)
}

func (e *SeatUnavailableError) Unwrap() error { return ErrSeatUnavailable }
