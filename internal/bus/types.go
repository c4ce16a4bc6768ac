package bus

// InboundMessage represents one message event received from the chat
// transport (Telegram, Discord).
type InboundMessage struct {
	Channel   string `json:"channel"`             // transport name
	ChatID    string `json:"chat_id"`             // chat the message appeared in
	MessageID string `json:"message_id"`          // platform id of this message
	SenderID  string `json:"sender_id"`           // platform id of the author
	Content   string `json:"content"`             // raw text
	ReplyToID string `json:"reply_to,omitempty"`  // id this message replies to, empty if unthreaded
}

// OutboundMessage represents a message for the transport to deliver.
type OutboundMessage struct {
	ChatID    string `json:"chat_id"`
	Content   string `json:"content"`
	ReplyToID string `json:"reply_to,omitempty"` // thread the message to this id when set
}
