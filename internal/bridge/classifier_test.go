package bridge

import "testing"

func TestIsFinalReply(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "progress message with field name is vetoed",
			text: "searching mobile database...",
			want: false,
		},
		{
			name: "structured answer",
			text: "Name: John, Mobile: 9999999999",
			want: true,
		},
		{
			name: "empty text is never final",
			text: "",
			want: false,
		},
		{
			name: "whitespace only is never final",
			text: "   \n\t ",
			want: false,
		},
		{
			name: "veto wins over hint",
			text: "please wait, extracting vehicle details",
			want: false,
		},
		{
			name: "json payload",
			text: `{"result": "ok"}`,
			want: true,
		},
		{
			name: "provider marker",
			text: "powered by boombing network",
			want: true,
		},
		{
			name: "veto is case-insensitive",
			text: "SEARCHING UPI RECORDS",
			want: false,
		},
		{
			name: "no hint no veto",
			text: "hello there",
			want: false,
		},
		{
			name: "upper-case field label",
			text: "IFSC: SBIN0001234",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsFinalReply(tt.text); got != tt.want {
				t.Errorf("IsFinalReply(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifierCustomSets(t *testing.T) {
	c := NewClassifier([]string{"WAIT"}, []string{"answer"})

	if c.IsFinalReply("wait for the answer") {
		t.Error("noise keyword should veto regardless of casing")
	}
	if !c.IsFinalReply("final answer: 42") {
		t.Error("hint should classify as final")
	}
	if c.IsFinalReply("final ANSWER: 42") {
		t.Error("hints match case-sensitively")
	}
}
