package statuscache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-commerce-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/redisx"
)

// Service keeps the Redis order-status read cache in sync with published
// order events. It never touches the database: the events carry the status.
type Service struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderEvent is wired as the consumer handler for the order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	var orderID, status string
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID, status = p.OrderID, p.Status
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID, status = p.OrderID, p.Status
	case orders.EventOrderConfirmed:
		p, err := kafkax.UnwrapPayload[orders.OrderConfirmedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID, status = p.OrderID, string(orders.StatusConfirmed)
	default:
		return nil // not ours
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]string{"status": status})
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	s.Log.Debug("status cache refreshed",
		zap.String("order_id", orderID),
		zap.String("status", status))
	return nil
}
