package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrCouponConflict  = errors.New("coupon already exists")
	ErrSeatsConflict   = errors.New("some seats already exist")
)
