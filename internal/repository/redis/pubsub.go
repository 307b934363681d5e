package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OrdersPubSub announces settled orders so out-of-process consumers
// (notification fan-out, ops tooling) can react without polling.
type OrdersPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewOrdersPubSub(rdb *redis.Client) *OrdersPubSub {
	return &OrdersPubSub{
		rdb:     rdb,
		channel: ChannelOrdersSettled(),
	}
}

type orderSettledMsg struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *OrdersPubSub) PublishOrderSettled(ctx context.Context, orderID uuid.UUID, status string) error {
	msg := orderSettledMsg{
		Type:    "order_settled",
		OrderID: orderID.String(),
		Status:  status,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *OrdersPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, orderID uuid.UUID, status string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev orderSettledMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				continue
			}
			id, err := uuid.Parse(ev.OrderID)
			if err != nil {
				continue
			}
			handler(ctx, id, ev.Status)
		}
	}
}
