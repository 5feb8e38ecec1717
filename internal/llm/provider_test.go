package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOptionsHelpers(t *testing.T) {
	opts := &GenerateOptions{}

	WithTemperature(0.7)(opts)
	WithMaxTokens(128)(opts)
	WithStopWords([]string{"foo", "bar"})(opts)
	WithSystemPrompt("be brief")(opts)

	if opts.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", opts.Temperature)
	}
	if opts.MaxTokens != 128 {
		t.Errorf("expected max tokens 128, got %v", opts.MaxTokens)
	}
	if !reflect.DeepEqual(opts.StopWords, []string{"foo", "bar"}) {
		t.Errorf("unexpected stop words: %#v", opts.StopWords)
	}
	if opts.SystemPrompt != "be brief" {
		t.Errorf("unexpected system prompt: %q", opts.SystemPrompt)
	}
}

func TestResolveOptionsUsesConfigDefaults(t *testing.T) {
	o := resolveOptions(config.AIConfig{Temperature: 0.3, MaxTokens: 500})
	assert.Equal(t, 0.3, o.Temperature)
	assert.Equal(t, 500, o.MaxTokens)

	o = resolveOptions(config.AIConfig{Temperature: 0.3, MaxTokens: 500}, WithMaxTokens(10))
	assert.Equal(t, 10, o.MaxTokens)
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	cfg := &config.AIConfig{Provider: "unknown"}

	p, err := NewProvider(cfg)
	if err == nil {
		t.Fatalf("expected error for unknown provider, got nil")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil provider on error, got %#v", p)
	}
}

func TestNewProvider_OllamaMissingModel(t *testing.T) {
	cfg := &config.AIConfig{Provider: "ollama"}

	p, err := NewProvider(cfg)
	if err == nil {
		t.Fatalf("expected error when ollama model is missing, got nil")
	}
	if !strings.Contains(err.Error(), "ollama chat model is required") {
		t.Errorf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil provider on error, got %#v", p)
	}
}

func TestNewProvider_GeminiRequiresKey(t *testing.T) {
	cfg := config.DefaultConfig().AI
	cfg.Provider = "gemini"
	cfg.Gemini.APIKey = ""

	p, err := NewProvider(&cfg)
	require.Error(t, err)
	assert.Nil(t, p)
}

func TestAnthropicBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.anthropic.com/v1", anthropicBaseURL("https://api.anthropic.com"))
	assert.Equal(t, "https://api.anthropic.com/v1", anthropicBaseURL("https://api.anthropic.com/"))
	assert.Equal(t, "http://proxy/v1", anthropicBaseURL("http://proxy/v1"))
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Generated docs"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().AI
	cfg.OpenAI.APIKey = "test-key"
	cfg.OpenAI.BaseURL = server.URL

	p, err := NewOpenAIProvider(cfg, server.Client())
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), "Document this", WithSystemPrompt("You are a docs writer"))
	require.NoError(t, err)
	assert.Equal(t, "Generated docs", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4", p.Model())

	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok, "request should carry messages")
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestClaudeProviderGenerate(t *testing.T) {
	var gotKey, gotVersion, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-sonnet-20240229",
			"content": [{"type": "text", "text": "Hello from Claude"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 4, "output_tokens": 3}
		}`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().AI
	cfg.Claude.APIKey = "claude-key"
	cfg.Claude.BaseURL = server.URL

	p, err := NewClaudeProvider(cfg, server.Client())
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from Claude", out)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "claude-key", gotKey)
	assert.NotEmpty(t, gotVersion)
}

func TestOpenAIProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().AI
	cfg.OpenAI.APIKey = "test-key"
	cfg.OpenAI.BaseURL = server.URL

	p, err := NewOpenAIProvider(cfg, server.Client())
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "Document this")
	assert.Error(t, err)
}

// countingProvider fails a fixed number of times before succeeding
type countingProvider struct {
	failures int32
	calls    int32
	delay    time.Duration
}

func (c *countingProvider) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if n <= c.failures {
		return "", errors.New("transient")
	}
	return "ok:" + prompt, nil
}

func (c *countingProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 2, 3}, nil
}

func (c *countingProvider) Name() string  { return "counting" }
func (c *countingProvider) Model() string { return "counting-model" }

func TestRetryableProviderSingleAttempt(t *testing.T) {
	inner := &countingProvider{failures: 1}
	p := NewRetryableProvider(inner, 1, time.Second)

	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
	assert.Equal(t, "counting", p.Name())
	assert.Equal(t, "counting-model", p.Model())
}

func TestRetryableProviderTimeout(t *testing.T) {
	inner := &countingProvider{delay: time.Second}
	p := NewRetryableProvider(inner, 1, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRetryableProviderEmbed(t *testing.T) {
	p := NewRetryableProvider(&countingProvider{}, 1, time.Second)
	v, err := p.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)
	assert.NoError(t, p.Close())
}
