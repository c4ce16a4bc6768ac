// Package discord implements the Discord transport for the bridge via
// gateway events.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
	"github.com/nextlevelbuilder/relayclaw/internal/channels"
	"github.com/nextlevelbuilder/relayclaw/internal/config"
)

// Channel connects to Discord via the Bot API using gateway events.
type Channel struct {
	*channels.BaseChannel
	session   *discordgo.Session
	config    config.DiscordConfig
	botUserID string // populated on start
}

// New creates a Discord channel from config.
func New(cfg config.DiscordConfig, msgBus *bus.MessageBus) (*Channel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &Channel{
		BaseChannel: channels.NewBaseChannel("discord", msgBus, nil),
		session:     session,
		config:      cfg,
	}, nil
}

// Start opens the gateway connection and begins receiving events.
func (c *Channel) Start(_ context.Context) error {
	slog.Info("starting discord bot")

	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	user, err := c.session.User("@me")
	if err != nil {
		c.session.Close()
		return fmt.Errorf("fetch discord bot identity: %w", err)
	}
	c.botUserID = user.ID

	c.SetRunning(true)
	slog.Info("discord bot connected", "username", user.Username, "id", user.ID)

	return nil
}

// Stop closes the gateway connection.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping discord bot")
	c.SetRunning(false)
	return c.session.Close()
}

// Send delivers an outbound message and returns the id Discord assigned
// to it.
func (c *Channel) Send(_ context.Context, msg bus.OutboundMessage) (string, error) {
	if !c.IsRunning() {
		return "", fmt.Errorf("discord bot not running")
	}
	if msg.ChatID == "" {
		return "", fmt.Errorf("empty chat ID for discord send")
	}

	send := &discordgo.MessageSend{Content: msg.Content}
	if msg.ReplyToID != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyToID,
			ChannelID: msg.ChatID,
		}
	}

	sent, err := c.session.ChannelMessageSendComplex(msg.ChatID, send)
	if err != nil {
		return "", fmt.Errorf("discord send to %s: %w", msg.ChatID, err)
	}
	return sent.ID, nil
}

// handleMessage forwards one gateway message event to the bus. The
// bridge's own messages come back through the gateway and are skipped;
// the lookup service's replies must not be.
func (c *Channel) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == c.botUserID {
		return
	}
	if m.Content == "" {
		return
	}

	replyTo := ""
	if m.MessageReference != nil {
		replyTo = m.MessageReference.MessageID
	}

	slog.Debug("discord message received",
		"channel_id", m.ChannelID,
		"message_id", m.ID,
		"reply_to", replyTo,
		"preview", channels.Truncate(m.Content, 60),
	)

	c.Publish(bus.InboundMessage{
		Channel:   c.Name(),
		ChatID:    m.ChannelID,
		MessageID: m.ID,
		SenderID:  m.Author.ID,
		Content:   m.Content,
		ReplyToID: replyTo,
	})
}
