package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/model"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		reply  string
		n      int
		want   int
		wantOK bool
	}{
		{"3", 5, 2, true},
		{"I'd go with number 2 because it is catchy", 5, 1, true},
		{"Option 4. (Also 1 is fine)", 5, 3, true},
		{"0", 5, 0, false},
		{"6", 5, 0, false},
		{"none of them", 5, 0, false},
		{"", 5, 0, false},
		{"99999999999999999999", 5, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseChoice(tt.reply, tt.n)
		assert.Equal(t, tt.wantOK, ok, "reply %q", tt.reply)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "reply %q", tt.reply)
		}
	}
}

func TestBuildPromptNumbersCandidates(t *testing.T) {
	p := BuildPrompt([]model.Track{
		{Title: "First", Channel: "One", ViewCount: 10},
		{Title: "Second", Channel: "Two", ViewCount: 20},
	})
	assert.Contains(t, p, `1. "First" by One, 10 views`)
	assert.Contains(t, p, `2. "Second" by Two, 20 views`)
}

func TestRank(t *testing.T) {
	candidates := []model.Track{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	tests := []struct {
		name   string
		apiKey string
		reply  string
		err    error
		want   int
		wantOK bool
	}{
		{name: "no key", apiKey: "", reply: "1"},
		{name: "call fails", apiKey: "k", err: errors.New("unavailable")},
		{name: "unparseable", apiKey: "k", reply: "the second one"},
		{name: "valid", apiKey: "k", reply: "Choice: 3", want: 2, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRanker(tt.apiKey, "test-model", logging.Discard())
			called := false
			r.generate = func(_ context.Context, prompt string) (string, error) {
				called = true
				assert.Contains(t, prompt, `"b"`)
				return tt.reply, tt.err
			}
			got, ok := r.Rank(context.Background(), candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.apiKey != "", called)
		})
	}
}
