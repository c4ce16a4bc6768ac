// Package channels provides the channel abstraction layer between the
// bridge core and the chat platforms (Telegram, Discord). The core only
// ever sees the Channel interface and bus message types; SDK types stay
// inside the implementations.
package channels

import (
	"context"
	"strings"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
)

// Channel defines the interface that all transport implementations must
// satisfy.
type Channel interface {
	// Name returns the transport identifier ("telegram", "discord").
	Name() string

	// Start begins listening for messages. Non-blocking after setup;
	// received messages are published to the bus.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the transport.
	Stop(ctx context.Context) error

	// Send delivers msg and returns the message id the platform
	// assigned, which becomes the correlation key for threaded replies.
	Send(ctx context.Context, msg bus.OutboundMessage) (string, error)

	// IsRunning reports whether the transport is actively processing.
	IsRunning() bool
}

// ChatResolver is implemented by transports whose chats may be
// referenced by handle (e.g. Telegram "@group") and need resolving to
// the canonical id that inbound events carry.
type ChatResolver interface {
	ResolveChat(ctx context.Context, ref string) (string, error)
}

// BaseChannel provides shared functionality for transport
// implementations; embed it.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	running   bool
	allowFrom []string
}

// NewBaseChannel creates a BaseChannel with the given parameters.
func NewBaseChannel(name string, msgBus *bus.MessageBus, allowFrom []string) *BaseChannel {
	return &BaseChannel{name: name, bus: msgBus, allowFrom: allowFrom}
}

// Name returns the transport name.
func (c *BaseChannel) Name() string { return c.name }

// Bus returns the message bus reference.
func (c *BaseChannel) Bus() *bus.MessageBus { return c.bus }

// IsRunning reports whether the transport is running.
func (c *BaseChannel) IsRunning() bool { return c.running }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running = running }

// IsAllowed checks a sender against the allowlist. An empty allowlist
// means all senders are allowed. Leading "@" on allowlist entries is
// ignored so usernames match either way.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	for _, allowed := range c.allowFrom {
		if senderID == allowed || senderID == strings.TrimPrefix(allowed, "@") {
			return true
		}
	}
	return false
}

// Publish forwards a received message to the bus after the allowlist
// gate. The standard path for transports to hand events to the core.
func (c *BaseChannel) Publish(msg bus.InboundMessage) {
	if !c.IsAllowed(msg.SenderID) {
		return
	}
	c.bus.PublishInbound(msg)
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
