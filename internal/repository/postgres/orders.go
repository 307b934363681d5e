package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

type OrderRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *OrderRepo) With(db DB) *OrderRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *OrderRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateOrder persists a new pending order. The row is visible as soon as this
// returns; later checkout steps failing must not delete it.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	const op = "postgres.OrderRepo.CreateOrder"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO orders(id, user_id, status, type, total_cents)
       VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.UserID, o.Status, o.Type, o.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// AddOrderItems batch-inserts the product lines of an order. Unit prices are
// snapshots taken at checkout time.
func (r *OrderRepo) AddOrderItems(ctx context.Context, items []domain.OrderItem) error {
	const op = "postgres.OrderRepo.AddOrderItems"

	if len(items) == 0 {
		return nil
	}

	db := r.handle()

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(
			`INSERT INTO order_items(order_id, product_id, quantity, unit_cents)
         VALUES ($1, $2, $3, $4)`,
			it.OrderID, it.ProductID, it.Quantity, it.UnitCents,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// AddReservation inserts a pending reservation linked to an order.
//
// Returns:
//   - error: repository.ErrConflict when the seat already carries an active
//     reservation (unique index on confirmed reservations per seat).
func (r *OrderRepo) AddReservation(ctx context.Context, res *domain.Reservation) error {
	const op = "postgres.OrderRepo.AddReservation"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO reservations(id, user_id, event_id, seat_id, order_id, status, expires_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.UserID, res.EventID, res.SeatID, res.OrderID, res.Status, res.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *OrderRepo) CreatePayment(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.OrderRepo.CreatePayment"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO payments(id, order_id, amount_cents, status, provider, provider_ref)
       VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OrderID, p.AmountCents, p.Status, p.Provider, p.ProviderRef,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// SetExternalRef records the payment-intent id the gateway issued for the order.
func (r *OrderRepo) SetExternalRef(ctx context.Context, orderID uuid.UUID, ref string) error {
	const op = "postgres.OrderRepo.SetExternalRef"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE orders SET external_ref = $2 WHERE id = $1`,
		orderID, ref,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "postgres.OrderRepo.Get"

	db := r.handle()

	var o domain.Order
	err := db.QueryRow(ctx,
		`SELECT id, user_id, status, type, total_cents, COALESCE(external_ref, ''), created_at
       FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.Type, &o.TotalCents, &o.ExternalRef, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &o, nil
}

// OrderWithLines loads an order together with its product items and seat
// reservations, the unit settlement works on.
//
// Returns:
//   - *domain.OrderWithLines: the order view when found.
//   - error: repository.ErrNotFound if the order does not exist.
func (r *OrderRepo) OrderWithLines(ctx context.Context, orderID uuid.UUID) (*domain.OrderWithLines, error) {
	const op = "postgres.OrderRepo.OrderWithLines"

	db := r.handle()

	o, err := r.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	out := &domain.OrderWithLines{Order: *o}

	rows, err := db.Query(ctx,
		`SELECT order_id, product_id, quantity, unit_cents
       FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Quantity, &it.UnitCents); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out.Items = append(out.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	resRows, err := db.Query(ctx,
		`SELECT id, user_id, event_id, seat_id, order_id, status, expires_at, created_at
       FROM reservations WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer resRows.Close()

	for resRows.Next() {
		var res domain.Reservation
		if err := resRows.Scan(
			&res.ID, &res.UserID, &res.EventID, &res.SeatID,
			&res.OrderID, &res.Status, &res.ExpiresAt, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out.Reservations = append(out.Reservations, res)
	}
	if err := resRows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// OrderIDByExternalRef resolves a gateway callback reference to an order.
func (r *OrderRepo) OrderIDByExternalRef(ctx context.Context, ref string) (uuid.UUID, error) {
	const op = "postgres.OrderRepo.OrderIDByExternalRef"

	db := r.handle()

	var id uuid.UUID
	err := db.QueryRow(ctx,
		`SELECT id FROM orders WHERE external_ref = $1`,
		ref,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// FailOrder moves a pending order (and its pending payment, if any) to failed.
// The transition is terminal; completed and failed orders are left untouched.
func (r *OrderRepo) FailOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	const op = "postgres.OrderRepo.FailOrder"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE orders SET status = 'failed', failure_reason = $2
      WHERE id = $1 AND status = 'pending'`,
		orderID, reason,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotSettleable)
	}

	if _, err := db.Exec(ctx,
		`UPDATE payments SET status = 'failed' WHERE order_id = $1 AND status = 'pending'`,
		orderID,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
