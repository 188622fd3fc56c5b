// Package relay is a topic based publish/subscribe transport over websocket.
// It carries consensus-topic messages and wallet pairing traffic.
package relay

import (
	"context"
	"io"
)

type Message struct {
	Topic     string `json:"topic"`
	Tag       int    `json:"tag"`
	Data      []byte `json:"data"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type MessageSink func(ctx context.Context, msg Message) error
type ClientConnectionStatusCallback func(ctx context.Context, client RelayClient, status bool)

type RelayClient interface {
	io.Closer

	// Publish sends a message to every subscriber of the topic and waits for the relay ack.
	Publish(ctx context.Context, topic string, tag int, data []byte) error

	// Subscribe routes messages of the topic to sink until Unsubscribe or Close.
	// Sinks run on the read loop and must not wait on the client.
	Subscribe(ctx context.Context, topic string, sink MessageSink) error
	Unsubscribe(ctx context.Context, topic string) error
}
