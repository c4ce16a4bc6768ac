package bridge

import "strings"

// DefaultNoiseKeywords veto classification as final. Matched
// case-insensitively; the downstream service announces progress with
// these before posting the terminal payload.
var DefaultNoiseKeywords = []string{
	"searching",
	"processing",
	"extracting",
	"please wait",
	"database",
}

// DefaultFinalHints mark a terminal payload: structural markers and the
// field names the lookup service emits. Matched case-sensitively, so the
// set carries both casings the service is known to use, plus the
// provider marker token.
var DefaultFinalHints = []string{
	"{",
	"name", "Name",
	"mobile", "Mobile",
	"address", "Address",
	"upi", "UPI",
	"pan", "PAN",
	"dob", "DOB",
	"vehicle", "Vehicle",
	"ifsc", "IFSC",
	"gst", "GST",
	"rashan", "Rashan",
	"username", "Username",
	"telegram", "Telegram",
	"boombing",
}

// Classifier decides whether an upstream message is the terminal answer
// or intermediate status chatter. Pure; safe for concurrent use.
type Classifier struct {
	noise []string // case-insensitive veto, checked first
	hints []string // case-sensitive final-answer markers
}

// NewClassifier builds a classifier from a noise veto set and a final
// hint set. Noise keywords are case-folded at construction.
func NewClassifier(noise, hints []string) *Classifier {
	lowered := make([]string, len(noise))
	for i, k := range noise {
		lowered[i] = strings.ToLower(k)
	}
	return &Classifier{noise: lowered, hints: hints}
}

// DefaultClassifier returns a classifier over the builtin keyword sets.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultNoiseKeywords, DefaultFinalHints)
}

// IsFinalReply reports whether text is a terminal answer. The noise veto
// runs first and short-circuits: a status message mentioning a field
// name ("searching mobile database...") must never classify as final.
// Empty or whitespace-only text is never final.
func (c *Classifier) IsFinalReply(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, k := range c.noise {
		if strings.Contains(lower, k) {
			return false
		}
	}

	for _, h := range c.hints {
		if strings.Contains(trimmed, h) {
			return true
		}
	}
	return false
}
