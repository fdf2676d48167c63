// Package kafka builds the watermill Kafka publisher/subscriber pair used to
// fan status broadcasts out across processes.
package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

var ErrNoBrokers = errors.New("no kafka brokers configured")

// Config selects the cluster and the consumer group of one observer process.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
	// Tracing propagates trace context through message headers.
	Tracing bool
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 || c.Brokers[0] == "" {
		return ErrNoBrokers
	}

	if c.ConsumerGroup == "" {
		return errors.New("kafka consumer group is required")
	}

	return nil
}

// CreateChannel connects to the brokers of cfg. Snapshots are small and only
// the newest matter, so the subscriber starts at the end of each topic and the
// publisher waits for the leader only.
func CreateChannel(logger watermill.LoggerAdapter, cfg Config) (*kafka.Publisher, *kafka.Subscriber, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	subscriberConfig := kafka.DefaultSaramaSubscriberConfig()
	subscriberConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	subscriberConfig.Consumer.Group.Session.Timeout = 10 * time.Second

	if cfg.ClientID != "" {
		subscriberConfig.ClientID = cfg.ClientID
	}

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               cfg.Brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: subscriberConfig,
			ConsumerGroup:         cfg.ConsumerGroup,
			OTELEnabled:           cfg.Tracing,
		},
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	publisherConfig := kafka.DefaultSaramaSyncPublisherConfig()
	publisherConfig.Producer.RequiredAcks = sarama.WaitForLocal

	if cfg.ClientID != "" {
		publisherConfig.ClientID = cfg.ClientID
	}

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               cfg.Brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: publisherConfig,
			OTELEnabled:           cfg.Tracing,
		},
		logger,
	)
	if err != nil {
		_ = subscriber.Close()

		return nil, nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return publisher, subscriber, nil
}
