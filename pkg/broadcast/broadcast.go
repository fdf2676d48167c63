// Package broadcast carries per-node status snapshots from running workflows
// to observers. Delivery is best effort: a lost message is never an error for
// the run that produced it.
package broadcast

import (
	"context"
	"encoding/json"
)

// NodesEvent is the event name of a node status snapshot.
const NodesEvent = "nodes"

// WorkflowChannel is the channel key observers of one workflow subscribe to.
func WorkflowChannel(workflowID string) string {
	return "workflow-" + workflowID
}

// Message is one published event as seen by a subscriber.
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

type Subscriber interface {
	// Subscribe delivers messages of channel until ctx is done, then closes the returned channel.
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
}

// Broadcaster is a backend offering both sides.
type Broadcaster interface {
	Publisher
	Subscriber
	Close() error
}

// Discard drops every publish. Subscribers never receive anything.
type Discard struct{}

func (Discard) Publish(context.Context, string, string, any) error { return nil }

func (Discard) Subscribe(ctx context.Context, _ string) (<-chan Message, error) {
	out := make(chan Message)

	go func() {
		<-ctx.Done()
		close(out)
	}()

	return out, nil
}

func (Discard) Close() error { return nil }

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}
