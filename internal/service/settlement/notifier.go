package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/yurkevych/seatstore/internal/domain"
	redisrepo "github.com/yurkevych/seatstore/internal/repository/redis"
)

// RedisNotifier invalidates cached catalog state and announces settlement
// outcomes on the orders channel. Both effects are best-effort.
type RedisNotifier struct {
	cache  *redisrepo.Cache
	pubsub *redisrepo.OrdersPubSub
}

func NewRedisNotifier(cache *redisrepo.Cache, pubsub *redisrepo.OrdersPubSub) *RedisNotifier {
	return &RedisNotifier{cache: cache, pubsub: pubsub}
}

func (n *RedisNotifier) OrderSettled(ctx context.Context, ord *domain.OrderWithLines) {
	for _, it := range ord.Items {
		_ = n.cache.InvalidateProduct(ctx, it.ProductID)
	}

	seen := make(map[int64]struct{})
	for _, res := range ord.Reservations {
		if _, ok := seen[res.EventID]; ok {
			continue
		}
		seen[res.EventID] = struct{}{}
		_ = n.cache.InvalidateEvent(ctx, res.EventID)
	}

	_ = n.pubsub.PublishOrderSettled(ctx, ord.Order.ID, string(domain.OrderCompleted))
}

func (n *RedisNotifier) OrderFailed(ctx context.Context, orderID uuid.UUID, reason string) {
	_ = n.pubsub.PublishOrderSettled(ctx, orderID, string(domain.OrderFailed))
}
