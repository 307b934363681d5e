package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yurkevych/seatstore/internal/domain"
)

// CatalogRepo serves the read-only lookups checkout and discount resolution
// depend on, plus the admin creates that seed them.
type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetProduct retrieves a product by its ID.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the product to retrieve.
//
// Returns:
//   - *domain.Product: the product when found.
//   - error: repository.ErrNotFound if the product is not found.
func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "postgres.CatalogRepo.GetProduct"

	db := r.handle()

	var p domain.Product
	err := db.QueryRow(ctx,
		`SELECT id, name, unit_cents, stock
       FROM products WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.UnitCents, &p.Stock)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &p, nil
}

// GetEvent retrieves an event by its ID.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the event to retrieve.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *CatalogRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.CatalogRepo.GetEvent"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, title, starts_at, ends_at
       FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Starts, &e.Ends)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// GetSeat retrieves a seat by its ID.
func (r *CatalogRepo) GetSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgres.CatalogRepo.GetSeat"

	db := r.handle()

	var s domain.Seat
	err := db.QueryRow(ctx,
		`SELECT id, event_id, tier, is_reserved
       FROM seats WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.EventID, &s.Tier, &s.IsReserved)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &s, nil
}

// ListEventSeats lists seats for an event.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - eventID: unique identifier of the event.
//   - onlyAvailable: when true, exclude reserved seats and seats with an
//     unexpired active reservation.
//   - limit, offset: pagination parameters.
func (r *CatalogRepo) ListEventSeats(
	ctx context.Context,
	eventID int64,
	onlyAvailable bool,
	limit, offset int,
) ([]domain.Seat, error) {
	const op = "postgres.CatalogRepo.ListEventSeats"

	db := r.handle()

	var rows pgx.Rows
	var err error

	if onlyAvailable {
		rows, err = db.Query(ctx,
			`SELECT s.id, s.event_id, s.tier, s.is_reserved
         FROM seats s
        WHERE s.event_id = $1
          AND s.is_reserved = FALSE
          AND NOT EXISTS (
                SELECT 1 FROM reservations r
                 WHERE r.seat_id = s.id
                   AND (r.status = 'confirmed'
                        OR (r.status = 'pending' AND r.expires_at > now()))
              )
        ORDER BY s.id
        LIMIT $2 OFFSET $3`,
			eventID, limit, offset,
		)
	} else {
		rows, err = db.Query(ctx,
			`SELECT s.id, s.event_id, s.tier, s.is_reserved
         FROM seats s
        WHERE s.event_id = $1
        ORDER BY s.id
        LIMIT $2 OFFSET $3`,
			eventID, limit, offset,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.EventID, &s.Tier, &s.IsReserved); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// GetCoupon retrieves a discount coupon by code.
//
// Returns:
//   - *domain.Discount: the coupon when found.
//   - error: repository.ErrNotFound for unknown codes. The resolver treats
//     that as a zero contribution, never as a checkout failure.
func (r *CatalogRepo) GetCoupon(ctx context.Context, code string) (*domain.Discount, error) {
	const op = "postgres.CatalogRepo.GetCoupon"

	db := r.handle()

	var d domain.Discount
	var tierOnly string
	err := db.QueryRow(ctx,
		`SELECT code, percent, valid_from, valid_to, COALESCE(tier_only, '')
       FROM coupons WHERE code = $1`,
		code,
	).Scan(&d.Code, &d.Percent, &d.ValidFrom, &d.ValidTo, &tierOnly)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	d.TierOnly = domain.MembershipTier(tierOnly)

	return &d, nil
}

// MembershipTier returns the buyer's tier, defaulting to none for users
// without a membership row.
func (r *CatalogRepo) MembershipTier(ctx context.Context, userID int64) (domain.MembershipTier, error) {
	const op = "postgres.CatalogRepo.MembershipTier"

	db := r.handle()

	var tier string
	err := db.QueryRow(ctx,
		`SELECT COALESCE(
        (SELECT tier FROM memberships WHERE user_id = $1), 'none')`,
		userID,
	).Scan(&tier)
	if err != nil {
		return domain.TierNone, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return domain.MembershipTier(tier), nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	const op = "postgres.CatalogRepo.CreateProduct"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO products(name, unit_cents, stock)
       VALUES ($1, $2, $3)
     RETURNING id`,
		p.Name, p.UnitCents, p.Stock,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

func (r *CatalogRepo) CreateEvent(ctx context.Context, e *domain.Event) (int64, error) {
	const op = "postgres.CatalogRepo.CreateEvent"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO events(title, starts_at, ends_at)
       VALUES ($1, $2, $3)
     RETURNING id`,
		e.Title, e.Starts, e.Ends,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// BatchCreateSeats seeds seats for an event in one round trip.
func (r *CatalogRepo) BatchCreateSeats(ctx context.Context, eventID int64, seats []domain.Seat) error {
	const op = "postgres.CatalogRepo.BatchCreateSeats"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(
			`INSERT INTO seats(event_id, tier, is_reserved)
         VALUES ($1, $2, FALSE)`,
			eventID, s.Tier,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *CatalogRepo) CreateCoupon(ctx context.Context, d *domain.Discount) error {
	const op = "postgres.CatalogRepo.CreateCoupon"

	db := r.handle()

	var tierOnly any
	if d.TierOnly != "" {
		tierOnly = string(d.TierOnly)
	}

	_, err := db.Exec(ctx,
		`INSERT INTO coupons(code, percent, valid_from, valid_to, tier_only)
       VALUES ($1, $2, $3, $4, $5)`,
		d.Code, d.Percent, d.ValidFrom, d.ValidTo, tierOnly,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
