package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/nodeflow/pkg/broadcast"
	"github.com/dukex/nodeflow/pkg/channels/gochannel"
	"github.com/dukex/nodeflow/pkg/channels/kafka"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BroadcastConfig selects and configures the status broadcast backend.
type BroadcastConfig struct {
	Provider     string
	RedisURL     string
	KafkaBrokers string
}

// NewBroadcaster builds the backend named by cfg.Provider: "redis", "kafka",
// "memory" or "none".
func NewBroadcaster(cfg BroadcastConfig, logger *slog.Logger) (broadcast.Broadcaster, error) {
	switch cfg.Provider {
	case "", "none":
		return broadcast.Discard{}, nil
	case "memory":
		pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger))

		return broadcast.NewWatermill(pub, sub), nil
	case "kafka":
		// Each process consumes in its own group so every observer sees every snapshot.
		group := "nodeflow-" + uuid.NewString()

		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), kafka.Config{
			Brokers:       splitBrokers(cfg.KafkaBrokers),
			ConsumerGroup: group,
			ClientID:      "nodeflow",
			Tracing:       true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return broadcast.NewWatermill(pub, sub), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}

		return broadcast.NewRedis(redis.NewClient(opts), logger), nil
	default:
		return nil, fmt.Errorf("unsupported broadcast provider %q", cfg.Provider)
	}
}

func splitBrokers(brokers string) []string {
	var out []string

	for broker := range strings.SplitSeq(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			out = append(out, broker)
		}
	}

	return out
}
