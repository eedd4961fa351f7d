package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSON = errors.New("ai: reply contains no JSON object")

// Options tune a single completion.
type Options struct {
	Temperature float64
	MaxTokens   int
	// JSON asks the backend to constrain its reply to a JSON object.
	JSON bool
}

type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string, opts Options) (string, error)
}

// CompleteJSON runs a completion and decodes the first JSON object in the
// reply into out. Markdown fences and chatter around the object are ignored.
func CompleteJSON(ctx context.Context, p Provider, model, systemPrompt, prompt string, opts Options, out any) error {
	opts.JSON = true
	reply, err := p.CompleteWithSystem(ctx, model, systemPrompt, prompt, opts)
	if err != nil {
		return err
	}
	raw, err := ExtractJSON(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("ai: decode reply: %w", err)
	}
	return nil
}

// ExtractJSON returns the outermost {...} span of s.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}
