package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis uses Redis pub/sub. Messages published while nobody listens are lost.
type Redis struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewRedis(client redis.UniversalClient, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger.With("module", "broadcast_redis")}
}

func (r *Redis) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	data, err := json.Marshal(envelope{Event: event, Payload: body})
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe returns once Redis confirmed the subscription.
func (r *Redis) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	_, err := pubsub.Receive(ctx)
	if err != nil {
		_ = pubsub.Close()

		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Message)
	in := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}

				var env envelope

				err := json.Unmarshal([]byte(raw.Payload), &env)
				if err != nil {
					r.logger.WarnContext(ctx, "Dropping malformed broadcast message", "channel", raw.Channel, "error", err)

					continue
				}

				select {
				case out <- Message{Channel: raw.Channel, Event: env.Event, Payload: env.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
