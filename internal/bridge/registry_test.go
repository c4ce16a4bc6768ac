package bridge

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name    string
		raw     string
		want    Command
		wantErr error
	}{
		{
			name: "command with argument",
			raw:  "/num 9999999999",
			want: Command{Keyword: "num", Arg: "9999999999"},
		},
		{
			name: "argument keeps internal whitespace",
			raw:  "/vehicle DL 01 AB 1234",
			want: Command{Keyword: "vehicle", Arg: "DL 01 AB 1234"},
		},
		{
			name: "keyword is case-folded",
			raw:  "/NUM 12345",
			want: Command{Keyword: "num", Arg: "12345"},
		},
		{
			name: "argument may be empty",
			raw:  "/icmr",
			want: Command{Keyword: "icmr", Arg: ""},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  /upi someone@bank  ",
			want: Command{Keyword: "upi", Arg: "someone@bank"},
		},
		{
			name:    "unregistered keyword",
			raw:     "/unknowncmd 123",
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "plain text is not a command",
			raw:     "hello world",
			wantErr: ErrNotCommand,
		},
		{
			name:    "bare prefix",
			raw:     "/",
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "empty text",
			raw:     "",
			wantErr: ErrNotCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Parse("/", tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseCustomPrefix(t *testing.T) {
	reg := NewRegistry(map[string]string{"ping": "Ping"})

	if _, err := reg.Parse("!", "/ping"); !errors.Is(err, ErrNotCommand) {
		t.Errorf("wrong prefix should be ErrNotCommand, got %v", err)
	}
	got, err := reg.Parse("!", "!ping pong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Keyword != "ping" || got.Arg != "pong" {
		t.Errorf("got %+v", got)
	}
}

func TestRegistryCaseInsensitiveKeys(t *testing.T) {
	reg := NewRegistry(map[string]string{"NUM": "Mobile Number Search"})

	if !reg.Has("num") || !reg.Has("NuM") {
		t.Error("registry keys should be case-insensitive")
	}
	label, ok := reg.Label("num")
	if !ok || label != "Mobile Number Search" {
		t.Errorf("Label(num) = %q, %v", label, ok)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestParseNoSideEffects(t *testing.T) {
	reg := DefaultRegistry()
	before := reg.Len()

	reg.Parse("/", "/num 123")
	reg.Parse("/", "/bogus")

	if reg.Len() != before {
		t.Error("Parse must not mutate the registry")
	}
}
