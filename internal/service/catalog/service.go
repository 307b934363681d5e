package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
	postgresrepo "github.com/yurkevych/seatstore/internal/repository/postgres"
	redisrepo "github.com/yurkevych/seatstore/internal/repository/redis"
	"github.com/yurkevych/seatstore/internal/uow"
)

type Config struct {
	ProductTTL       time.Duration
	EventSummaryTTL  time.Duration
	CouponTTL        time.Duration
	DefaultSeatsPage int
	MaxSeatsPage     int
}

// Service is the catalog collaborator: the read-only lookups checkout and
// discount resolution consume, plus the admin creates that seed them.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ProductTTL <= 0 {
		cfg.ProductTTL = 60 * time.Second
	}

	if cfg.EventSummaryTTL <= 0 {
		cfg.EventSummaryTTL = 60 * time.Second
	}

	if cfg.CouponTTL <= 0 {
		cfg.CouponTTL = 30 * time.Second
	}

	if cfg.DefaultSeatsPage <= 0 {
		cfg.DefaultSeatsPage = 100
	}

	if cfg.MaxSeatsPage <= 0 {
		cfg.MaxSeatsPage = 500
	}

	return &Service{
		store: store,
		cache: cache,
		uow:   uow.NewUoW(store),
		cfg:   cfg,
	}
}

// GetProduct retrieves a product by its ID through the cache.
//
// Returns:
//   - *domain.Product: the retrieved product, or nil if not found.
//   - error: catalog.ErrProductNotFound if the product is not found.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "service.catalog.GetProduct"

	key := redisrepo.KeyProduct(id)

	product, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.ProductTTL,
		func(ctx context.Context) (domain.Product, error) {
			p, err := s.store.Catalog().GetProduct(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Product{}, ErrProductNotFound
				}

				return domain.Product{}, err
			}

			return *p, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &product, nil
}

// GetEvent retrieves an event by its ID through the cache.
//
// Returns:
//   - *domain.Event: the retrieved event, or nil if not found.
//   - error: catalog.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	key := redisrepo.KeyEventSummary(id)

	event, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventSummaryTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.Catalog().GetEvent(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Event{}, ErrEventNotFound
				}

				return domain.Event{}, err
			}

			return *e, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

// ListEventSeats lists seats for an event, clamping the page size.
func (s *Service) ListEventSeats(
	ctx context.Context,
	eventID int64,
	onlyAvailable bool,
	limit, offset int,
) ([]domain.Seat, error) {
	const op = "service.catalog.ListEventSeats"

	if limit <= 0 {
		limit = s.cfg.DefaultSeatsPage
	}

	if limit > s.cfg.MaxSeatsPage {
		limit = s.cfg.MaxSeatsPage
	}

	if offset < 0 {
		offset = 0
	}

	seats, err := s.store.Catalog().ListEventSeats(ctx, eventID, onlyAvailable, limit, offset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seats, nil
}

// GetSeat returns one seat row. Reads go straight to the database: the
// reserved flag flips at settlement and callers use it for hold decisions.
func (s *Service) GetSeat(ctx context.Context, seatID int64) (*domain.Seat, error) {
	const op = "service.catalog.GetSeat"

	seat, err := s.store.Catalog().GetSeat(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSeatNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seat, nil
}

// SeatAvailability answers the public availability probe for one seat.
func (s *Service) SeatAvailability(ctx context.Context, seatID int64) (bool, error) {
	const op = "service.catalog.SeatAvailability"

	available, err := s.store.Inventory().IsSeatAvailable(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrSeatNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return available, nil
}

// GetCoupon looks a coupon up through the cache. It satisfies the discount
// resolver's CouponSource; unknown codes surface repository.ErrNotFound and
// the resolver downgrades that to a zero contribution.
func (s *Service) GetCoupon(ctx context.Context, code string) (*domain.Discount, error) {
	const op = "service.catalog.GetCoupon"

	key := redisrepo.KeyCoupon(code)

	coupon, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.CouponTTL,
		func(ctx context.Context) (domain.Discount, error) {
			d, err := s.store.Catalog().GetCoupon(ctx, code)
			if err != nil {
				return domain.Discount{}, err
			}

			return *d, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &coupon, nil
}

// MembershipTier returns the buyer's tier. It satisfies checkout.Buyers.
func (s *Service) MembershipTier(ctx context.Context, userID int64) (domain.MembershipTier, error) {
	const op = "service.catalog.MembershipTier"

	tier, err := s.store.Catalog().MembershipTier(ctx, userID)
	if err != nil {
		return domain.TierNone, fmt.Errorf("%s: %w", op, err)
	}

	return tier, nil
}

// CreateProduct creates a product record and returns its ID.
func (s *Service) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	const op = "service.catalog.CreateProduct"

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Catalog().With(tx).CreateProduct(ctx, p)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateProduct(ctx, id)
		})
		return nil
	})

	return id, err
}

// CreateEventWithSeats creates an event and seeds its seats within a
// transactional Unit of Work.
//
// Parameters:
//   - ctx: request-scoped context.
//   - e: event to create.
//   - seats: seat templates (tier labels) to seed for the event.
//
// Returns:
//   - int64: the created event ID.
//   - error: catalog.ErrSeatsConflict if seat seeding violates a uniqueness
//     constraint.
func (s *Service) CreateEventWithSeats(ctx context.Context, e *domain.Event, seats []domain.Seat) (int64, error) {
	const op = "service.catalog.CreateEventWithSeats"

	var eventID int64

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		id, err := s.store.Catalog().With(tx).CreateEvent(ctx, e)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		eventID = id

		if len(seats) > 0 {
			if err := s.store.Catalog().With(tx).BatchCreateSeats(ctx, eventID, seats); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("%s: %w", op, ErrSeatsConflict)
				}
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
		})
		return nil
	})

	return eventID, err
}

// AddEventSeats appends seats to an existing event.
//
// Returns:
//   - error: catalog.ErrEventNotFound if the event does not exist.
//   - error: catalog.ErrSeatsConflict on a uniqueness violation.
func (s *Service) AddEventSeats(ctx context.Context, eventID int64, seats []domain.Seat) error {
	const op = "service.catalog.AddEventSeats"

	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if _, err := s.store.Catalog().With(tx).GetEvent(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.store.Catalog().With(tx).BatchCreateSeats(ctx, eventID, seats); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrSeatsConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
		})
		return nil
	})
}

// CreateCoupon creates a discount coupon.
//
// Returns:
//   - error: catalog.ErrCouponConflict if the code is already taken.
func (s *Service) CreateCoupon(ctx context.Context, d *domain.Discount) error {
	const op = "service.catalog.CreateCoupon"

	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Catalog().With(tx).CreateCoupon(ctx, d); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrCouponConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCoupon(ctx, d.Code)
		})
		return nil
	})
}
