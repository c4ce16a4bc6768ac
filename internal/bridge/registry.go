// Package bridge implements the request/reply correlation engine that
// relays structured commands from a source chat to a downstream lookup
// service and routes the eventual terminal answer back to the requester.
package bridge

import (
	"errors"
	"strings"
	"unicode"
)

// Parse outcomes for inbound text.
var (
	ErrNotCommand     = errors.New("not a command")
	ErrUnknownCommand = errors.New("unknown command")
)

// DefaultCommands is the builtin keyword → label registry, used when the
// config does not supply its own set.
var DefaultCommands = map[string]string{
	"num":     "Mobile Number Search",
	"num2":    "Power Mobile Search",
	"aadh":    "Aadhaar V2 Search",
	"rashan":  "Rashan Card Details",
	"upi":     "UPI Information",
	"icmr":    "ICMR Database",
	"vehicle": "Vehicle RC Information",
	"tguser":  "Telegram User Info",
	"gst":     "GST Number Lookup",
	"ifsc":    "IFSC Code Lookup",
}

// Registry is the static command table. Keys are stored lower-case and
// lookups are case-insensitive. Immutable after construction.
type Registry struct {
	commands map[string]string
}

// NewRegistry builds a registry from a keyword → label map.
// Keywords are case-folded; an empty map yields an empty registry.
func NewRegistry(commands map[string]string) *Registry {
	m := make(map[string]string, len(commands))
	for k, v := range commands {
		m[strings.ToLower(k)] = v
	}
	return &Registry{commands: m}
}

// DefaultRegistry returns a registry over the builtin command set.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultCommands)
}

// Has reports whether keyword is a registered command.
func (r *Registry) Has(keyword string) bool {
	_, ok := r.commands[strings.ToLower(keyword)]
	return ok
}

// Label returns the human-readable label for keyword.
func (r *Registry) Label(keyword string) (string, bool) {
	label, ok := r.commands[strings.ToLower(keyword)]
	return label, ok
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// Keywords returns the registered keywords in no particular order.
func (r *Registry) Keywords() []string {
	out := make([]string, 0, len(r.commands))
	for k := range r.commands {
		out = append(out, k)
	}
	return out
}

// Command is one parsed, registry-validated inbound command.
type Command struct {
	Keyword string // lower-case, prefix stripped
	Arg     string // remainder after the first whitespace run, may be empty
}

// Parse extracts a command from the raw text of an inbound message.
// The text must begin with prefix; the keyword is the first token
// (case-folded) and the argument is everything after the first
// whitespace run, internal whitespace preserved. Returns ErrNotCommand
// when the prefix is absent and ErrUnknownCommand when the keyword is
// not registered. No side effects.
func (r *Registry) Parse(prefix, raw string) (Command, error) {
	text := strings.TrimSpace(raw)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Command{}, ErrNotCommand
	}

	rest := text[len(prefix):]
	keyword := rest
	arg := ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		keyword = rest[:i]
		arg = strings.TrimLeftFunc(rest[i:], unicode.IsSpace)
	}

	keyword = strings.ToLower(keyword)
	if keyword == "" || !r.Has(keyword) {
		return Command{}, ErrUnknownCommand
	}

	return Command{Keyword: keyword, Arg: arg}, nil
}
