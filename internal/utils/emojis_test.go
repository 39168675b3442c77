package utils

import "testing"

func TestEmojiLookups(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"mood", GetMoodEmoji("calm"), "💜"},
		{"unknown mood", GetMoodEmoji("bored"), "▫️"},
		{"source", GetSourceEmoji("voice"), "🎙"},
		{"unknown source", GetSourceEmoji("radio"), "📌"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
