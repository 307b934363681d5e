package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/repository"
	postgresrepo "github.com/yurkevych/seatstore/internal/repository/postgres"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrderID = errors.New("invalid order id")
)

type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// GetOrderWithLines retrieves an order along with its items and reservations.
//
// Parameters:
//   - ctx: request-scoped context.
//   - orderID: ID of the order to retrieve.
//
// Returns:
//   - *domain.OrderWithLines: the retrieved order, or nil if not found.
//   - error: orders.ErrOrderNotFound if the order is not found.
func (s *Service) GetOrderWithLines(ctx context.Context, orderID string) (*domain.OrderWithLines, error) {
	const op = "service.orders.GetOrderWithLines"

	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrderID)
	}

	o, err := s.store.Orders().OrderWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}
