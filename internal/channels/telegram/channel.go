// Package telegram implements the Telegram transport for the bridge
// using the Bot API with long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
	"github.com/nextlevelbuilder/relayclaw/internal/channels"
	"github.com/nextlevelbuilder/relayclaw/internal/config"
)

// Channel connects to Telegram via the Bot API using long polling.
type Channel struct {
	*channels.BaseChannel
	bot        *telego.Bot
	config     config.TelegramConfig
	pollCancel context.CancelFunc // cancels the long polling context
	pollDone   chan struct{}      // closed when polling goroutine exits
}

// New creates a Telegram channel from config.
func New(cfg config.TelegramConfig, msgBus *bus.MessageBus) (*Channel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Channel{
		BaseChannel: channels.NewBaseChannel("telegram", msgBus, nil),
		bot:         bot,
		config:      cfg,
	}, nil
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	c.SetRunning(true)
	slog.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(update.Message)
				}
			}
		}
	}()

	return nil
}

// Stop shuts down the bot by cancelling the long polling context and
// waiting for the polling goroutine to exit, so Telegram releases the
// getUpdates lock before a new instance starts.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")
	c.SetRunning(false)

	if c.pollCancel != nil {
		c.pollCancel()
	}

	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}

	return nil
}

// Send delivers an outbound message and returns the id Telegram
// assigned to it.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) (string, error) {
	chatID, err := toChatID(msg.ChatID)
	if err != nil {
		return "", err
	}

	params := tu.Message(chatID, msg.Content)
	if msg.ReplyToID != "" {
		replyID, convErr := strconv.Atoi(msg.ReplyToID)
		if convErr != nil {
			return "", fmt.Errorf("invalid reply-to id %q: %w", msg.ReplyToID, convErr)
		}
		params.ReplyParameters = &telego.ReplyParameters{MessageID: replyID}
	}

	sent, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("telegram send to %s: %w", msg.ChatID, err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// ResolveChat maps an @handle chat reference to the numeric id inbound
// events carry. Numeric references pass through unchanged.
func (c *Channel) ResolveChat(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "@") {
		return ref, nil
	}
	chat, err := c.bot.GetChat(ctx, &telego.GetChatParams{
		ChatID: telego.ChatID{Username: ref},
	})
	if err != nil {
		return "", fmt.Errorf("resolve chat %s: %w", ref, err)
	}
	return strconv.FormatInt(chat.ID, 10), nil
}

// toChatID converts a chat reference to a telego ChatID. Accepts the
// numeric form used after resolution and the @handle form as fallback.
func toChatID(ref string) (telego.ChatID, error) {
	if strings.HasPrefix(ref, "@") {
		return telego.ChatID{Username: ref}, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return telego.ChatID{}, fmt.Errorf("invalid chat id %q: %w", ref, err)
	}
	return tu.ID(id), nil
}
