package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/model"
)

var firstInt = regexp.MustCompile(`\d+`)

// Ranker asks a Gemini model which of the chart candidates is the best
// soundtrack pick. It implements trending.Ranker.
type Ranker struct {
	apiKey   string
	model    string
	log      *logging.Logger
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewRanker(apiKey, modelName string, log *logging.Logger) *Ranker {
	r := &Ranker{apiKey: apiKey, model: modelName, log: log}
	r.generate = r.gemini
	return r
}

// Rank returns the 0-based index chosen by the model. Any failure, including
// an unparseable reply, yields ok=false.
func (r *Ranker) Rank(ctx context.Context, candidates []model.Track) (int, bool) {
	if r.apiKey == "" || len(candidates) == 0 {
		return 0, false
	}
	reply, err := r.generate(ctx, BuildPrompt(candidates))
	if err != nil {
		r.log.Warnf("ai: ranking request failed: %v", err)
		return 0, false
	}
	idx, ok := ParseChoice(reply, len(candidates))
	if !ok {
		r.log.Warnf("ai: could not parse a choice from reply %q", truncate(reply, 120))
		return 0, false
	}
	r.log.Infof("ai: model picked candidate %d/%d", idx+1, len(candidates))
	return idx, true
}

func (r *Ranker) gemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  r.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, r.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// BuildPrompt lists the candidates as a numbered list, 1-based.
func BuildPrompt(candidates []model.Track) string {
	var b strings.Builder
	b.WriteString("These music videos are trending right now. ")
	b.WriteString("Pick the one that works best as a background track for a short social video.\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %q by %s, %d views\n", i+1, c.Title, c.Channel, c.ViewCount)
	}
	b.WriteString("\nAnswer with the number of your choice only.")
	return b.String()
}

// ParseChoice takes the first integer in reply as a 1-based index and converts
// it to a 0-based index in [0, n).
func ParseChoice(reply string, n int) (int, bool) {
	m := firstInt.FindString(reply)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
