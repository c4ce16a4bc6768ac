package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
)

// DefaultFailureNotice is sent to the requester when no terminal answer
// arrives within the wait budget.
const DefaultFailureNotice = "❌ No final response received from the lookup network."

// Options configures an Orchestrator. Bus, Sender, SourceChat and
// TargetChat are required; nil Registry, Classifier and Tracker fall
// back to defaults, nil Limiter disables rate limiting.
type Options struct {
	Bus           *bus.MessageBus
	Sender        Sender
	Registry      *Registry
	Classifier    *Classifier
	Tracker       *Tracker
	Limiter       *SenderLimiter
	SourceChat    string
	TargetChat    string
	Prefix        string
	WaitBudget    time.Duration
	FailureNotice string
}

// Orchestrator runs the per-request state machine: a recognized command
// from the source chat is dispatched to the lookup chat, the caller's
// goroutine waits on the pending request's cell, and either the terminal
// answer or a failure notice goes back to the requester, threaded to the
// original command message.
type Orchestrator struct {
	bus        *bus.MessageBus
	sender     Sender
	tracker    *Tracker
	dispatcher *Dispatcher
	router     *Router
	limiter    *SenderLimiter
	sourceChat string
	targetChat string
	tracer     trace.Tracer

	mu            sync.RWMutex // guards the reloadable settings below
	registry      *Registry
	prefix        string
	waitBudget    time.Duration
	failureNotice string

	wg sync.WaitGroup
}

// NewOrchestrator wires the bridge core from opts.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	if opts.Tracker == nil {
		opts.Tracker = NewTracker()
	}
	if opts.Prefix == "" {
		opts.Prefix = "/"
	}
	if opts.WaitBudget <= 0 {
		opts.WaitBudget = 15 * time.Second
	}
	if opts.FailureNotice == "" {
		opts.FailureNotice = DefaultFailureNotice
	}

	return &Orchestrator{
		bus:           opts.Bus,
		sender:        opts.Sender,
		tracker:       opts.Tracker,
		dispatcher:    NewDispatcher(opts.Sender, opts.Tracker, opts.TargetChat, opts.Prefix),
		router:        NewRouter(opts.Tracker, opts.Classifier),
		limiter:       opts.Limiter,
		sourceChat:    opts.SourceChat,
		targetChat:    opts.TargetChat,
		tracer:        otel.Tracer("relayclaw/bridge"),
		registry:      opts.Registry,
		prefix:        opts.Prefix,
		waitBudget:    opts.WaitBudget,
		failureNotice: opts.FailureNotice,
	}
}

// Tracker exposes the correlation table (keepalive reports its size).
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Reconfigure swaps the reloadable settings at runtime. Requests already
// in flight keep the budget they started with.
func (o *Orchestrator) Reconfigure(registry *Registry, waitBudget time.Duration, failureNotice string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if registry != nil {
		o.registry = registry
	}
	if waitBudget > 0 {
		o.waitBudget = waitBudget
	}
	if failureNotice != "" {
		o.failureNotice = failureNotice
	}
}

func (o *Orchestrator) settings() (*Registry, string, time.Duration, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.registry, o.prefix, o.waitBudget, o.failureNotice
}

// Run consumes inbound events until ctx is cancelled: lookup-chat
// messages go to the reply router inline, source-chat commands each get
// their own goroutine so slow lookups never block one another. Waits for
// in-flight requests to finish before returning.
func (o *Orchestrator) Run(ctx context.Context) error {
	slog.Info("bridge orchestrator started",
		"source_chat", o.sourceChat,
		"target_chat", o.targetChat,
	)

	for {
		msg, ok := o.bus.ConsumeInbound(ctx)
		if !ok {
			o.wg.Wait()
			slog.Info("bridge orchestrator stopped")
			return nil
		}

		switch msg.ChatID {
		case o.targetChat:
			o.router.HandleUpstream(msg)
		case o.sourceChat:
			o.wg.Add(1)
			go func(m bus.InboundMessage) {
				defer o.wg.Done()
				o.handleCommand(ctx, m)
			}(msg)
		default:
			slog.Debug("message from unwatched chat ignored", "chat_id", msg.ChatID)
		}
	}
}

// handleCommand drives one request through Received → Dispatched →
// {Resolved | TimedOut}. Unrecognized text is dropped silently; a send
// failure abandons the single request without touching the event loop.
func (o *Orchestrator) handleCommand(ctx context.Context, msg bus.InboundMessage) {
	registry, prefix, waitBudget, failureNotice := o.settings()

	cmd, err := registry.Parse(prefix, msg.Content)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			slog.Debug("unrecognized command dropped",
				"sender", msg.SenderID,
				"preview", truncate(msg.Content, 40),
			)
		}
		return
	}

	if o.limiter != nil && !o.limiter.Allow(msg.SenderID) {
		slog.Warn("command rate limited", "sender", msg.SenderID, "command", cmd.Keyword)
		return
	}

	label, _ := registry.Label(cmd.Keyword)
	ctx, span := o.tracer.Start(ctx, "bridge.request", trace.WithAttributes(
		attribute.String("command", cmd.Keyword),
		attribute.String("label", label),
		attribute.String("origin_chat", msg.ChatID),
	))
	defer span.End()

	req, err := o.dispatcher.Dispatch(ctx, cmd, msg.ChatID, msg.MessageID)
	if err != nil {
		slog.Error("dispatch failed", "command", cmd.Keyword, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		return
	}

	span.SetAttributes(attribute.String("dispatch_id", req.DispatchID))
	slog.Info("command dispatched",
		"command", cmd.Keyword,
		"label", label,
		"dispatch_id", req.DispatchID,
		"request_id", req.RequestID,
	)

	text, resolved := req.Cell.Wait(ctx, waitBudget)
	if !resolved {
		// The sweeper may have evicted the entry already; Remove is a no-op then.
		o.tracker.Remove(req.DispatchID)
		if ctx.Err() != nil {
			return // shutting down, no failure notice
		}
		span.SetStatus(codes.Error, "timed out")
		slog.Warn("request timed out",
			"command", cmd.Keyword,
			"dispatch_id", req.DispatchID,
			"request_id", req.RequestID,
			"budget", waitBudget,
		)
		o.reply(ctx, msg, failureNotice)
		return
	}

	span.SetStatus(codes.Ok, "")
	slog.Info("final answer relayed",
		"command", cmd.Keyword,
		"dispatch_id", req.DispatchID,
		"request_id", req.RequestID,
	)
	o.reply(ctx, msg, text)
}

// reply sends text back to the origin chat, threaded to the command
// message. Delivery failure is logged and the request abandoned.
func (o *Orchestrator) reply(ctx context.Context, origin bus.InboundMessage, text string) {
	_, err := o.sender.Send(ctx, bus.OutboundMessage{
		ChatID:    origin.ChatID,
		Content:   text,
		ReplyToID: origin.MessageID,
	})
	if err != nil {
		slog.Error("reply delivery failed",
			"chat_id", origin.ChatID,
			"reply_to", origin.MessageID,
			"error", err,
		)
	}
}
