package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
)

// Store loads orders for settlement and records terminal failures.
type Store interface {
	OrderWithLines(ctx context.Context, orderID uuid.UUID) (*domain.OrderWithLines, error)
	OrderIDByExternalRef(ctx context.Context, ref string) (uuid.UUID, error)
	FailOrder(ctx context.Context, orderID uuid.UUID, reason string) error
}

// Ledger applies an order's stock decrements and seat confirmations as one
// all-or-nothing unit. The pending->completed flip inside it is the
// idempotency guard.
type Ledger interface {
	ApplySettlement(ctx context.Context, ord *domain.OrderWithLines) error
}

// Notifier receives after-settlement hooks. Settlement only invokes them
// after a durable state change, and never for an AlreadySettled no-op.
type Notifier interface {
	OrderSettled(ctx context.Context, ord *domain.OrderWithLines)
	OrderFailed(ctx context.Context, orderID uuid.UUID, reason string)
}

type Result struct {
	OrderID        uuid.UUID
	Status         domain.OrderStatus
	AmountCents    int
	AlreadySettled bool
}

type Service struct {
	store    Store
	ledger   Ledger
	notifier Notifier
	logger   *slog.Logger
}

func New(store Store, ledger Ledger, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// Settle finalizes a pending order: stock decremented, seats confirmed,
// payment completed, exactly once per order.
//
// Parameters:
//   - ctx: request-scoped context.
//   - orderID: ID of the order to settle.
//
// Returns:
//   - *Result: the final order state; AlreadySettled is set when a previous
//     attempt (or a concurrent duplicate) already completed the order.
//   - error: settlement.ErrOrderNotFound if the order does not exist.
//   - error: settlement.ErrNotSettleable if the order is failed or cancelled.
//   - error: *settlement.InsufficientStockError if stock ran out since
//     checkout; the order is moved to failed and nothing is decremented.
//   - error: *settlement.SeatConflictError if a seat was confirmed under a
//     concurrent order; the order is moved to failed and any decrements from
//     this attempt are rolled back.
//   - error: *settlement.HoldExpiredError if the hold sweep released the
//     buyer's reservation before payment completed; the order is failed with
//     that reason so an operator can tell it from a lost race.
func (s *Service) Settle(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	const op = "service.settlement.Settle"

	ord, err := s.store.OrderWithLines(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrOrderNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch ord.Order.Status {
	case domain.OrderCompleted:
		// Duplicate trigger: return the prior result, mutate nothing.
		return &Result{
			OrderID:        orderID,
			Status:         domain.OrderCompleted,
			AmountCents:    ord.Order.TotalCents,
			AlreadySettled: true,
		}, nil
	case domain.OrderFailed, domain.OrderCancelled:
		return nil, fmt.Errorf("%s:%w", op, ErrNotSettleable)
	}

	if err := s.ledger.ApplySettlement(ctx, ord); err != nil {
		return s.settleFailure(ctx, op, ord, err)
	}

	s.logger.Info("order settled",
		"order_id", orderID,
		"amount_cents", ord.Order.TotalCents,
		"items", len(ord.Items),
		"seats", len(ord.Reservations),
	)

	if s.notifier != nil {
		s.notifier.OrderSettled(ctx, ord)
	}

	return &Result{
		OrderID:     orderID,
		Status:      domain.OrderCompleted,
		AmountCents: ord.Order.TotalCents,
	}, nil
}

func (s *Service) settleFailure(ctx context.Context, op string, ord *domain.OrderWithLines, err error) (*Result, error) {
	orderID := ord.Order.ID

	// A concurrent duplicate won the pending->completed flip first.
	if errors.Is(err, repository.ErrAlreadySettled) {
		return &Result{
			OrderID:        orderID,
			Status:         domain.OrderCompleted,
			AmountCents:    ord.Order.TotalCents,
			AlreadySettled: true,
		}, nil
	}

	if errors.Is(err, repository.ErrNotSettleable) {
		return nil, fmt.Errorf("%s:%w", op, ErrNotSettleable)
	}

	var stockErr *repository.StockError
	if errors.As(err, &stockErr) {
		s.failOrder(ctx, orderID, stockErr.Error())
		return nil, fmt.Errorf("%s:%w", op, &InsufficientStockError{ProductID: stockErr.ProductID})
	}

	var seatErr *repository.SeatConflictError
	if errors.As(err, &seatErr) {
		s.failOrder(ctx, orderID, seatErr.Error())
		return nil, fmt.Errorf("%s:%w", op, &SeatConflictError{SeatID: seatErr.SeatID})
	}

	var expiredErr *repository.HoldExpiredError
	if errors.As(err, &expiredErr) {
		s.failOrder(ctx, orderID, expiredErr.Error())
		return nil, fmt.Errorf("%s:%w", op, &HoldExpiredError{SeatID: expiredErr.SeatID})
	}

	return nil, fmt.Errorf("%s:%w", op, err)
}

// failOrder durably records the terminal failure. On the asynchronous gateway
// path there is no caller to return to, so the row is the record an operator
// or retry job acts on (money may already be captured).
func (s *Service) failOrder(ctx context.Context, orderID uuid.UUID, reason string) {
	if err := s.store.FailOrder(ctx, orderID, reason); err != nil {
		// The order may already be terminal after a duplicate callback.
		if !errors.Is(err, repository.ErrNotSettleable) {
			s.logger.Error("failed to mark order failed", "order_id", orderID, "error", err)
		}
		return
	}

	s.logger.Warn("settlement failed", "order_id", orderID, "reason", reason)

	if s.notifier != nil {
		s.notifier.OrderFailed(ctx, orderID, reason)
	}
}

// HandleGatewayCallback is the sole consumer of the gateway's asynchronous
// confirmation. Duplicate callbacks are expected and safe: settlement
// idempotency, not mutual exclusion, is the mechanism.
//
// Parameters:
//   - ctx: request-scoped context.
//   - externalRef: the payment-intent id carried by the callback.
//   - status: gateway-reported payment status.
func (s *Service) HandleGatewayCallback(ctx context.Context, externalRef, status string) (*Result, error) {
	const op = "service.settlement.HandleGatewayCallback"

	orderID, err := s.store.OrderIDByExternalRef(ctx, externalRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrOrderNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch status {
	case "completed", "succeeded", "paid":
		return s.Settle(ctx, orderID)
	default:
		s.failOrder(ctx, orderID, "gateway reported "+status)
		return &Result{OrderID: orderID, Status: domain.OrderFailed}, nil
	}
}
