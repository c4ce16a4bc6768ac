package bus

import (
	"context"
	"log/slog"
)

const inboundBuffer = 256

// MessageBus decouples the transport's receive loop from the bridge
// core: channels publish inbound events, the orchestrator consumes them
// in receipt order.
type MessageBus struct {
	inbound chan InboundMessage
}

// New creates a message bus with a bounded inbound queue.
func New() *MessageBus {
	return &MessageBus{inbound: make(chan InboundMessage, inboundBuffer)}
}

// PublishInbound enqueues a message event. Never blocks the transport's
// poll loop: when the queue is full the event is dropped with a warning.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
		slog.Warn("inbound queue full, event dropped",
			"channel", msg.Channel,
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
		)
	}
}

// ConsumeInbound blocks for the next message event. Returns false when
// ctx is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case <-ctx.Done():
		return InboundMessage{}, false
	case msg := <-b.inbound:
		return msg, true
	}
}
