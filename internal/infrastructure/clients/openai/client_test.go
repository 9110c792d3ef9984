package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, RateLimitRPM: -1})
	require.NoError(t, err)
	return client
}

func writeOutput(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"output": []map[string]interface{}{
			{"content": []map[string]string{{"type": "output_text", "text": text}}},
		},
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)
}

func TestRecommendSpecialty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		writeOutput(w, "```json\n{\"specialty\":\"cardiology\",\"reasoning\":\"Chest pain needs a heart check.\"}\n```")
	})

	rec, err := client.RecommendSpecialty(context.Background(), "chest pain", []string{"Cardiology", "Dermatology"})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", rec.Specialty)
	assert.Equal(t, entities.RecommendationSourceAI, rec.Source)
	assert.NotEmpty(t, rec.Reasoning)
}

func TestRecommendSpecialty_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.RecommendSpecialty(context.Background(), "rash", nil)
	assert.ErrorIs(t, err, providers.ErrRecommendationUnauthorized)
}

func TestRecommendSpecialty_UnknownSpecialty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOutput(w, `{"specialty":"Astrology","reasoning":"?"}`)
	})

	_, err := client.RecommendSpecialty(context.Background(), "rash", []string{"Dermatology"})
	assert.Error(t, err)
}

func TestRecommendSpecialty_MissingText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	})

	_, err := client.RecommendSpecialty(context.Background(), "rash", nil)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}

func TestRateLimiter_Reserve(t *testing.T) {
	assert.Nil(t, newRateLimiter(-1, 0))

	l := newRateLimiter(60, 2)
	now := l.last
	assert.Equal(t, time.Duration(0), l.reserve(now))
	assert.Equal(t, time.Duration(0), l.reserve(now))
	assert.Equal(t, time.Second, l.reserve(now))

	// two seconds later one token is back after paying off the debt
	assert.Equal(t, time.Duration(0), l.reserve(now.Add(2*time.Second)))
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	l := newRateLimiter(1, 1)
	_, err := l.wait(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
