package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
)

// Sender is the outbound capability the bridge needs from a transport:
// deliver a message and report the id the platform assigned to it.
type Sender interface {
	Send(ctx context.Context, msg bus.OutboundMessage) (string, error)
}

// Dispatcher relays a recognized command to the lookup channel and
// registers the pending request that correlates the eventual reply.
type Dispatcher struct {
	sender     Sender
	tracker    *Tracker
	targetChat string
	prefix     string
}

// NewDispatcher wires a dispatcher to its transport and correlation table.
func NewDispatcher(sender Sender, tracker *Tracker, targetChat, prefix string) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		tracker:    tracker,
		targetChat: targetChat,
		prefix:     prefix,
	}
}

// Dispatch sends cmd to the lookup channel and registers a pending
// request under the message id the send produced. The entry is in the
// tracker before the request is returned, so the reply router and the
// sweeper can observe it as soon as the caller starts waiting. A send
// failure registers nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command, originChat, originMsgID string) (*PendingRequest, error) {
	text := strings.TrimSpace(d.prefix + cmd.Keyword + " " + cmd.Arg)

	dispatchID, err := d.sender.Send(ctx, bus.OutboundMessage{
		ChatID:  d.targetChat,
		Content: text,
	})
	if err != nil {
		return nil, fmt.Errorf("relay %s%s: %w", d.prefix, cmd.Keyword, err)
	}

	req := &PendingRequest{
		DispatchID:  dispatchID,
		OriginChat:  originChat,
		OriginMsgID: originMsgID,
		RequestID:   uuid.NewString(),
		Cell:        NewResultCell(),
	}
	d.tracker.Register(req)
	return req, nil
}
