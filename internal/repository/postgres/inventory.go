package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

// InventoryRepo is the single source of truth for product stock and seat
// reservation state. Settlement is the only writer of either.
type InventoryRepo struct {
	pool  *pgxpool.Pool
	store *Store
	db    DB
}

func (r *InventoryRepo) With(db DB) *InventoryRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *InventoryRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// IsSeatAvailable reports whether a seat can still be claimed: its persisted
// is_reserved flag is false and no unexpired pending or confirmed reservation
// references it. This is the fail-fast pre-check; the authoritative guard is
// the commit-time flip in confirmSeatCore.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - seatID: unique identifier of the seat.
//
// Returns:
//   - bool: true when the seat is free.
//   - error: repository.ErrNotFound if the seat does not exist.
func (r *InventoryRepo) IsSeatAvailable(ctx context.Context, seatID int64) (bool, error) {
	const op = "postgres.InventoryRepo.IsSeatAvailable"

	db := r.handle()

	var reserved bool
	var active int64
	err := db.QueryRow(ctx,
		`SELECT s.is_reserved,
            COUNT(r.id) FILTER (
              WHERE r.status = 'confirmed'
                 OR (r.status = 'pending' AND r.expires_at > now())
            )
       FROM seats s
       LEFT JOIN reservations r ON r.seat_id = s.id
      WHERE s.id = $1
      GROUP BY s.is_reserved`,
		seatID,
	).Scan(&reserved, &active)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return !reserved && active == 0, nil
}

// ReleaseExpiredHold marks a single pending reservation as expired. The seat's
// is_reserved flag is untouched because it was never set for a pending hold.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - reservationID: unique identifier of the reservation to release.
//
// Returns:
//   - error: repository.ErrNotFound if no pending reservation matches.
func (r *InventoryRepo) ReleaseExpiredHold(ctx context.Context, reservationID uuid.UUID) error {
	const op = "postgres.InventoryRepo.ReleaseExpiredHold"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE reservations
        SET status = 'expired'
      WHERE id = $1 AND status = 'pending'`,
		reservationID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// ExpireHolds is the periodic sweep: every pending reservation whose parent
// order is still pending past the hold window flips to expired, freeing its
// seat for subsequent availability checks.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//
// Returns:
//   - int64: the number of released holds.
//   - error: if the sweep query fails.
func (r *InventoryRepo) ExpireHolds(ctx context.Context) (int64, error) {
	const op = "postgres.InventoryRepo.ExpireHolds"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE reservations r
        SET status = 'expired'
       FROM orders o
      WHERE o.id = r.order_id
        AND r.status = 'pending'
        AND o.status = 'pending'
        AND r.expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

// ApplySettlement finalizes an order's effect on inventory inside one
// Serializable transaction: the pending->completed status flip is the
// idempotency guard, then every product item is decremented and every linked
// reservation confirmed. Any failure rolls the whole set back, so no partial
// decrement can survive a lost seat race.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - ord: the order with its items and reservations, loaded beforehand.
//
// Returns:
//   - error: repository.ErrAlreadySettled if the order is already completed.
//   - error: repository.ErrNotSettleable if the order is failed or cancelled.
//   - error: *repository.StockError if a decrement would go negative.
//   - error: *repository.SeatConflictError if a seat was confirmed under
//     another order first.
//   - error: *repository.HoldExpiredError if the sweep released a hold before
//     settlement reached it.
func (r *InventoryRepo) ApplySettlement(ctx context.Context, ord *domain.OrderWithLines) error {
	const op = "postgres.InventoryRepo.ApplySettlement"

	if r.db != nil {
		if err := r.applySettlementCore(ctx, r.db, ord); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		return nil
	}

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		return r.applySettlementCore(ctx, tx, ord)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *InventoryRepo) applySettlementCore(ctx context.Context, db DB, ord *domain.OrderWithLines) error {
	if err := r.completeOrderCore(ctx, db, ord.Order.ID); err != nil {
		return err
	}

	for _, item := range ord.Items {
		if err := r.decrementStockCore(ctx, db, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	for _, res := range ord.Reservations {
		if err := r.confirmSeatCore(ctx, db, res.SeatID, res.ID); err != nil {
			return err
		}
	}

	if ord.Order.TotalCents == 0 {
		if _, err := db.Exec(ctx,
			`INSERT INTO payments(id, order_id, amount_cents, status, provider)
           VALUES ($1, $2, 0, 'completed', 'none')
           ON CONFLICT (order_id) DO NOTHING`,
			uuid.New(), ord.Order.ID,
		); err != nil {
			return translateDBErr(err)
		}
		return nil
	}

	if _, err := db.Exec(ctx,
		`UPDATE payments
        SET status = 'completed', amount_cents = $2
      WHERE order_id = $1 AND status = 'pending'`,
		ord.Order.ID, ord.Order.TotalCents,
	); err != nil {
		return translateDBErr(err)
	}

	return nil
}

// completeOrderCore is the idempotency guard: only a pending order may flip to
// completed, and only one concurrent settler can win the flip.
func (r *InventoryRepo) completeOrderCore(ctx context.Context, db DB, orderID uuid.UUID) error {
	tag, err := db.Exec(ctx,
		`UPDATE orders SET status = 'completed' WHERE id = $1 AND status = 'pending'`,
		orderID,
	)
	if err != nil {
		return translateDBErr(err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var status string
	if err := db.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1`, orderID,
	).Scan(&status); err != nil {
		return translateDBErr(err)
	}

	if domain.OrderStatus(status) == domain.OrderCompleted {
		return repository.ErrAlreadySettled
	}

	return repository.ErrNotSettleable
}

func (r *InventoryRepo) decrementStockCore(ctx context.Context, db DB, productID int64, qty int) error {
	tag, err := db.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		productID, qty,
	)
	if err != nil {
		if errors.Is(translateDBErr(err), repository.ErrInsufficientStock) {
			return &repository.StockError{ProductID: productID}
		}
		return translateDBErr(err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.StockError{ProductID: productID}
	}

	return nil
}

func (r *InventoryRepo) confirmSeatCore(ctx context.Context, db DB, seatID int64, reservationID uuid.UUID) error {
	var status string
	if err := db.QueryRow(ctx,
		`SELECT status FROM reservations WHERE id = $1`, reservationID,
	).Scan(&status); err != nil {
		return translateDBErr(err)
	}

	// Already confirmed for this very reservation: the earlier settlement
	// attempt won, nothing to do.
	if domain.ReservationStatus(status) == domain.ReservationConfirmed {
		return nil
	}

	// The sweep got here first: the hold lapsed, nobody else owns the seat.
	if domain.ReservationStatus(status) == domain.ReservationExpired {
		return &repository.HoldExpiredError{SeatID: seatID}
	}

	if domain.ReservationStatus(status) != domain.ReservationPending {
		return &repository.SeatConflictError{SeatID: seatID}
	}

	tag, err := db.Exec(ctx,
		`UPDATE seats SET is_reserved = TRUE WHERE id = $1 AND is_reserved = FALSE`,
		seatID,
	)
	if err != nil {
		return translateDBErr(err)
	}

	// Zero rows means the flag is already set: a concurrent checkout for the
	// same seat committed first.
	if tag.RowsAffected() == 0 {
		return &repository.SeatConflictError{SeatID: seatID}
	}

	if _, err := db.Exec(ctx,
		`UPDATE reservations SET status = 'confirmed' WHERE id = $1 AND status = 'pending'`,
		reservationID,
	); err != nil {
		return translateDBErr(err)
	}

	return nil
}

// IncrementStock compensates a decrement. Settlement normally runs all
// mutations inside one transaction, so this is only reachable from manual
// reconciliation paths.
func (r *InventoryRepo) IncrementStock(ctx context.Context, productID int64, qty int) error {
	const op = "postgres.InventoryRepo.IncrementStock"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
