package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	maxBodyBytes   = 1 << 20
)

// Client implements the specialty recommendation provider on the OpenAI
// Responses API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rateLimiter
}

var _ providers.RecommendationProvider = (*Client)(nil)

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    newRateLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	return c, nil
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Input           []inputMessage `json:"input"`
	Temperature     float64        `json:"temperature"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

type responsesEnvelope struct {
	Output []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (e responsesEnvelope) text() string {
	for _, out := range e.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				return content.Text
			}
		}
	}
	return ""
}

// RecommendSpecialty asks the model which specialty fits the symptoms. The
// request is attempted once.
func (c *Client) RecommendSpecialty(ctx context.Context, symptoms string, specialties []string) (rec *entities.SpecialtyRecommendation, err error) {
	if c.limiter != nil {
		waited, err := c.limiter.wait(ctx)
		if err != nil {
			recordRequest(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordRateLimitWait(ctx, c.model, waited)
	}

	start := time.Now()
	status := 0
	defer func() {
		recordRequest(ctx, c.model, status, time.Since(start), err)
	}()

	text, status, err := c.respond(ctx, responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: specialtySystemPrompt},
			{Role: "user", Content: buildSpecialtyUserPrompt(symptoms, specialties)},
		},
		Temperature:     0.2,
		MaxOutputTokens: 300,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseSpecialtyPayload([]byte(stripCodeFence(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}

	specialty, ok := matchSpecialty(parsed.Specialty, specialties)
	if !ok {
		return nil, fmt.Errorf("openai suggested unknown specialty %q", parsed.Specialty)
	}

	return &entities.SpecialtyRecommendation{
		Specialty: specialty,
		Reasoning: parsed.Reasoning,
		Source:    entities.RecommendationSourceAI,
	}, nil
}

// respond posts one request to /responses and returns the first output text
func (c *Client) respond(ctx context.Context, payload responsesRequest) (string, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", resp.StatusCode, fmt.Errorf("%w: openai request failed with status %d", providers.ErrRecommendationUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", resp.StatusCode, fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope responsesEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&envelope); err != nil {
		return "", resp.StatusCode, err
	}
	text := envelope.text()
	if text == "" {
		return "", resp.StatusCode, errors.New("openai response missing output text")
	}
	return text, resp.StatusCode, nil
}

// rateLimiter is a token bucket refilled continuously at rpm per minute
type rateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	interval time.Duration
	last     time.Time
}

// newRateLimiter returns nil when rpm is negative. Zero means 60 rpm.
func newRateLimiter(rpm, burst int) *rateLimiter {
	if rpm < 0 {
		return nil
	}
	if rpm == 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 5
	}
	return &rateLimiter{
		tokens:   float64(burst),
		burst:    float64(burst),
		interval: time.Minute / time.Duration(rpm),
		last:     time.Now(),
	}
}

// reserve takes a token and returns how long the caller must wait for it
func (l *rateLimiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens += float64(now.Sub(l.last)) / float64(l.interval)
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.last = now
	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens * float64(l.interval))
}

func (l *rateLimiter) wait(ctx context.Context) (time.Duration, error) {
	delay := l.reserve(time.Now())
	if delay <= 0 {
		return 0, nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		l.mu.Lock()
		l.tokens++
		l.mu.Unlock()
		return 0, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}

type clientMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	metricsOnce sync.Once
	metrics     *clientMetrics
)

func loadMetrics() *clientMetrics {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/healthmarket/openai")
		m := &clientMetrics{}
		var err error
		if m.requestCount, err = meter.Int64Counter("ai.openai.request.count",
			metric.WithDescription("Number of OpenAI requests")); err != nil {
			return
		}
		if m.requestDuration, err = meter.Float64Histogram("ai.openai.request.duration",
			metric.WithDescription("OpenAI request duration in milliseconds"), metric.WithUnit("ms")); err != nil {
			return
		}
		if m.requestErrors, err = meter.Int64Counter("ai.openai.request.errors",
			metric.WithDescription("Number of OpenAI request errors")); err != nil {
			return
		}
		if m.rateLimitWait, err = meter.Float64Histogram("ai.openai.rate_limit.wait",
			metric.WithDescription("Time spent waiting for the OpenAI rate limiter in milliseconds"), metric.WithUnit("ms")); err != nil {
			return
		}
		metrics = m
	})
	return metrics
}

func modelAttrs(model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
}

func recordRequest(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	m := loadMetrics()
	if m == nil {
		return
	}
	attrs := modelAttrs(model)
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}
	opt := metric.WithAttributes(attrs...)
	m.requestCount.Add(ctx, 1, opt)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), opt)
	if err != nil {
		m.requestErrors.Add(ctx, 1, opt)
	}
}

func recordRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(modelAttrs(model)...))
}
