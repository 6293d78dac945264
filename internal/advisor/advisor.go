// Package advisor turns a numeric opportunity context into narrative advice
// through a generative-text model. Model output is free text; ExtractJSON
// recovers the answer object from it.
package advisor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gigpilot/gigpilot/internal/signals"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = signals.ErrNotConfigured

// Advisor generates free text for a serialized context blob.
type Advisor interface {
	Advise(ctx context.Context, contextBlob string) (string, error)
}

// Static always answers with the same text.
type Static string

// Advise implements Advisor.
func (s Static) Advise(context.Context, string) (string, error) {
	return string(s), nil
}

// Func adapts a function to Advisor.
type Func func(ctx context.Context, contextBlob string) (string, error)

// Advise implements Advisor.
func (f Func) Advise(ctx context.Context, contextBlob string) (string, error) {
	return f(ctx, contextBlob)
}

// ExtractJSON pulls the first-to-last brace span out of text and decodes it.
// Code fences are stripped first. Any failure yields an empty, non-nil map.
func ExtractJSON(text string) map[string]any {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// String returns fields[key] when it is a non-blank string.
func String(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key].(string)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
