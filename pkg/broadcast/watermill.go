package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const eventMetadataKey = "nodeflow_event"

// Watermill publishes each channel as a topic of a watermill pub/sub pair.
type Watermill struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

func NewWatermill(pub message.Publisher, sub message.Subscriber) *Watermill {
	return &Watermill{publisher: pub, subscriber: sub}
}

func (w *Watermill) Publish(_ context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	msg := message.NewMessage(watermill.NewULID(), body)
	msg.Metadata.Set(eventMetadataKey, event)

	return w.publisher.Publish(channel, msg)
}

func (w *Watermill) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	messages, err := w.subscriber.Subscribe(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Message)

	go func() {
		defer close(out)

		for msg := range messages {
			m := Message{
				Channel: channel,
				Event:   msg.Metadata.Get(eventMetadataKey),
				Payload: json.RawMessage(msg.Payload),
			}

			msg.Ack()

			select {
			case out <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (w *Watermill) Close() error {
	err := w.publisher.Close()
	if err != nil {
		return err
	}

	return w.subscriber.Close()
}
