package advisor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpilot/gigpilot/internal/advisor"
	"github.com/gigpilot/gigpilot/internal/signals"
)

func TestClaudeAdvisor_Advise(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), "claude-test")
		assert.Contains(t, string(raw), "surge_score")
		assert.Contains(t, string(raw), "OpportunityScout")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"advice":"Work 6-9 PM near Powai.",`},
				{"type": "text", "text": `"confidence":"High"}`},
			},
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 30},
		})
	}))
	defer ts.Close()

	adv := advisor.NewClaudeAdvisor(advisor.ClaudeConfig{
		APIKey:  "test-key",
		Model:   "claude-test",
		BaseURL: ts.URL,
		Logger:  zerolog.Nop(),
	})

	text, err := adv.Advise(context.Background(), `{"surge_score":0.88}`)
	require.NoError(t, err)
	assert.Equal(t, `{"advice":"Work 6-9 PM near Powai.","confidence":"High"}`, text)

	fields := advisor.ExtractJSON(text)
	assert.Equal(t, "High", fields["confidence"])
}

func TestClaudeAdvisor_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	adv := advisor.NewClaudeAdvisor(advisor.ClaudeConfig{BaseURL: ts.URL, Logger: zerolog.Nop()})

	_, err := adv.Advise(context.Background(), "{}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, signals.ErrNotConfigured))
	assert.Equal(t, int32(0), calls.Load())
}

func TestClaudeAdvisor_ServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer ts.Close()

	adv := advisor.NewClaudeAdvisor(advisor.ClaudeConfig{APIKey: "k", BaseURL: ts.URL, Logger: zerolog.Nop()})

	_, err := adv.Advise(context.Background(), "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advisor: create message")
	assert.Equal(t, int32(1), calls.Load(), "advisor makes a single attempt")
}
