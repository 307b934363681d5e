package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/gateway"
	redisrepo "github.com/yurkevych/seatstore/internal/repository/redis"
	"github.com/yurkevych/seatstore/internal/service/settlement"
)

// Ledger is the read side of the inventory: the fail-fast availability
// pre-check. The orchestrator never mutates inventory itself.
type Ledger interface {
	IsSeatAvailable(ctx context.Context, seatID int64) (bool, error)
}

// OrderStore persists the checkout artifacts. Steps run in order and are
// deliberately not one transaction: once the order row exists its id may
// already be visible to the client or gateway, so later failures leave it
// pending rather than rolling it back.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	AddOrderItems(ctx context.Context, items []domain.OrderItem) error
	AddReservation(ctx context.Context, res *domain.Reservation) error
	CreatePayment(ctx context.Context, p *domain.Payment) error
	SetExternalRef(ctx context.Context, orderID uuid.UUID, ref string) error
}

type Buyers interface {
	MembershipTier(ctx context.Context, userID int64) (domain.MembershipTier, error)
}

type Resolver interface {
	Resolve(ctx context.Context, tier domain.MembershipTier, couponCode string) (int, error)
}

type Settler interface {
	Settle(ctx context.Context, orderID uuid.UUID) (*settlement.Result, error)
}

type Config struct {
	// HoldTTL is the reservation hold window used when a seat line carries no
	// expiry of its own.
	HoldTTL time.Duration
	// Provider is the payment provider name recorded on Payment rows.
	Provider string
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

type Input struct {
	BuyerID    int64
	Lines      []domain.CartLine
	CouponCode string
}

type Result struct {
	OrderID     uuid.UUID
	TotalCents  int
	ZeroCost    bool
	RedirectURL string
	// Settlement is set on the zero-cost synchronous path.
	Settlement *settlement.Result
}

type Service struct {
	ledger   Ledger
	orders   OrderStore
	buyers   Buyers
	resolver Resolver
	settler  Settler
	gw       gateway.Client
	limiter  *redisrepo.SlidingWindowLimiter
	cfg      Config
	logger   *slog.Logger
}

func New(
	ledger Ledger,
	orders OrderStore,
	buyers Buyers,
	resolver Resolver,
	settler Settler,
	gw gateway.Client,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = 15 * time.Minute
	}

	if cfg.Provider == "" {
		cfg.Provider = "gateway"
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		ledger:   ledger,
		orders:   orders,
		buyers:   buyers,
		resolver: resolver,
		settler:  settler,
		gw:       gw,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}
}

// TotalCents computes the discounted order total, rounded half-up to whole
// cents. It is evaluated once at order creation and never recomputed from
// live prices.
func TotalCents(subtotalCents, discountPercent int) int {
	if discountPercent <= 0 {
		return subtotalCents
	}

	if discountPercent >= 100 {
		return 0
	}

	return (subtotalCents*(100-discountPercent) + 50) / 100
}

// Checkout converts a cart into a pending order and either settles it
// synchronously (zero-cost) or returns a gateway redirect.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: buyer, cart lines and an optional coupon code.
//   - rlKey: rate-limit key, usually the client IP; empty disables limiting.
//
// Returns:
//   - *Result: order id plus either the settlement outcome or a redirect URL.
//   - error: checkout.ErrEmptyCart if no lines were submitted.
//   - error: *checkout.SeatUnavailableError if a seat failed the pre-check;
//     nothing was persisted.
//   - error: gateway.ErrGateway if the payment intent could not be created;
//     the pending order is left in place for a retry.
func (s *Service) Checkout(ctx context.Context, in Input, rlKey string) (*Result, error) {
	const op = "service.checkout.Checkout"

	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrEmptyCart)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	// Fail fast before any persistence. This check is advisory; the
	// authoritative guard is the commit-time seat flip at settlement.
	for _, l := range in.Lines {
		switch l.Kind {
		case domain.LineProduct:
			if l.Quantity <= 0 {
				return nil, fmt.Errorf("%s: product %d: non-positive quantity", op, l.ProductID)
			}
		case domain.LineSeat:
			available, err := s.ledger.IsSeatAvailable(ctx, l.SeatID)
			if err != nil {
				return nil, fmt.Errorf("%s:%w", op, err)
			}
			if !available {
				return nil, fmt.Errorf("%s:%w", op, &SeatUnavailableError{SeatID: l.SeatID})
			}
		default:
			return nil, fmt.Errorf("%s: unknown line kind %q", op, l.Kind)
		}
	}

	tier, err := s.buyers.MembershipTier(ctx, in.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	pct, err := s.resolver.Resolve(ctx, tier, in.CouponCode)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var subtotal int
	orderType := domain.OrderProductsOnly
	for _, l := range in.Lines {
		switch l.Kind {
		case domain.LineProduct:
			subtotal += l.UnitCents * l.Quantity
		case domain.LineSeat:
			subtotal += l.UnitCents
			orderType = domain.OrderWithSeats
		}
	}

	total := TotalCents(subtotal, pct)

	order := &domain.Order{
		ID:         uuid.New(),
		UserID:     in.BuyerID,
		Status:     domain.OrderPending,
		Type:       orderType,
		TotalCents: total,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	// From here on the order id is visible; failures leave the order pending
	// for retry or cleanup, never delete it.
	var items []domain.OrderItem
	for _, l := range in.Lines {
		if l.Kind != domain.LineProduct {
			continue
		}
		items = append(items, domain.OrderItem{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCents: l.UnitCents,
		})
	}

	if err := s.orders.AddOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	now := s.cfg.Now()
	for _, l := range in.Lines {
		if l.Kind != domain.LineSeat {
			continue
		}

		expires := l.ExpiresAt
		if expires.IsZero() {
			expires = now.Add(s.cfg.HoldTTL)
		}

		res := &domain.Reservation{
			ID:        uuid.New(),
			UserID:    in.BuyerID,
			EventID:   l.EventID,
			SeatID:    l.SeatID,
			OrderID:   order.ID,
			Status:    domain.ReservationPending,
			ExpiresAt: expires,
		}
		if err := s.orders.AddReservation(ctx, res); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"buyer_id", in.BuyerID,
		"subtotal_cents", subtotal,
		"discount_pct", pct,
		"total_cents", total,
	)

	if total == 0 {
		settled, err := s.settler.Settle(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return &Result{
			OrderID:    order.ID,
			TotalCents: 0,
			ZeroCost:   true,
			Settlement: settled,
		}, nil
	}

	intent, err := s.gw.CreateIntent(ctx, gateway.IntentRequest{
		Reference:    order.ID.String(),
		AmountCents:  total,
		Descriptions: lineDescriptions(in.Lines),
	})
	if err != nil {
		// Order stays pending so a retry can reuse it.
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.orders.SetExternalRef(ctx, order.ID, intent.IntentID); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		AmountCents: total,
		Status:      domain.PaymentPending,
		Provider:    s.cfg.Provider,
		ProviderRef: intent.IntentID,
	}
	if err := s.orders.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Result{
		OrderID:     order.ID,
		TotalCents:  total,
		RedirectURL: intent.RedirectURL,
	}, nil
}

func lineDescriptions(lines []domain.CartLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		switch l.Kind {
		case domain.LineProduct:
			out = append(out, fmt.Sprintf("product %d x%d", l.ProductID, l.Quantity))
		case domain.LineSeat:
			out = append(out, fmt.Sprintf("seat %d (event %d)", l.SeatID, l.EventID))
		}
	}

	return out
}
