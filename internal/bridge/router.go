package bridge

import (
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
)

// Router consumes messages from the lookup channel and resolves the
// matching pending request when a terminal answer arrives. Every drop
// path leaves the correlation table untouched.
type Router struct {
	tracker    *Tracker
	classifier *Classifier
}

// NewRouter wires a reply router to its correlation table and classifier.
func NewRouter(tracker *Tracker, classifier *Classifier) *Router {
	return &Router{tracker: tracker, classifier: classifier}
}

// HandleUpstream processes one message event from the lookup channel.
// Unthreaded messages, replies to unknown or already-removed ids, empty
// text, and status chatter are all ignored; a terminal answer resolves
// the pending request at most once. Losing the race with expiry is a
// no-op, never an error.
func (r *Router) HandleUpstream(msg bus.InboundMessage) {
	if msg.ReplyToID == "" {
		return
	}

	if !r.tracker.Contains(msg.ReplyToID) {
		slog.Debug("upstream reply ignored: no pending request", "reply_to", msg.ReplyToID)
		return
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return
	}

	if !r.classifier.IsFinalReply(text) {
		slog.Debug("upstream status message ignored",
			"reply_to", msg.ReplyToID,
			"preview", truncate(text, 60),
		)
		return
	}

	if r.tracker.Resolve(msg.ReplyToID, text) {
		slog.Info("pending request resolved", "dispatch_id", msg.ReplyToID)
	}
}

// truncate shortens a string for log previews.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
