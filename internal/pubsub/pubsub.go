package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "ws.html.broadcast").
	Topic string
	// Source names the component that published the message (e.g., "board").
	Source string
	// Payload contains the raw message data (HTML fragment, JSON).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., region).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe starts delivering messages for topic to handler in the
	// background until ctx is canceled. It returns once the subscription is active.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Broadcast topics consumed by the websocket bridge.
const (
	// TopicHTMLBroadcast carries rendered HTML fragments for every HTML client.
	TopicHTMLBroadcast = "ws.html.broadcast"
	// TopicDataBroadcast carries JSON view models for every data client.
	TopicDataBroadcast = "ws.data.broadcast"
)
