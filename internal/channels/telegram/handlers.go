package telegram

import (
	"log/slog"
	"strconv"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/relayclaw/internal/bus"
	"github.com/nextlevelbuilder/relayclaw/internal/channels"
)

// handleMessage forwards one incoming Telegram message to the bus.
// The bridge core decides relevance by chat id; this layer only maps
// SDK types to bus types.
func (c *Channel) handleMessage(message *telego.Message) {
	// Text payload: plain text, or caption on media messages.
	content := message.Text
	if content == "" {
		content = message.Caption
	}
	if content == "" {
		return // service message or media without caption
	}

	senderID := ""
	if message.From != nil {
		senderID = strconv.FormatInt(message.From.ID, 10)
	}

	replyTo := ""
	if message.ReplyToMessage != nil {
		replyTo = strconv.Itoa(message.ReplyToMessage.MessageID)
	}

	slog.Debug("telegram message received",
		"chat_id", message.Chat.ID,
		"message_id", message.MessageID,
		"reply_to", replyTo,
		"preview", channels.Truncate(content, 60),
	)

	c.Publish(bus.InboundMessage{
		Channel:   c.Name(),
		ChatID:    strconv.FormatInt(message.Chat.ID, 10),
		MessageID: strconv.Itoa(message.MessageID),
		SenderID:  senderID,
		Content:   content,
		ReplyToID: replyTo,
	})
}
