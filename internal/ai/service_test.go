package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/llm"
)

type fakeProvider struct {
	reply   string
	err     error
	prompts []string
	opts    []llm.GenerateOptions
}

func (f *fakeProvider) Generate(_ context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	f.prompts = append(f.prompts, prompt)
	var o llm.GenerateOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.opts = append(f.opts, o)
	return f.reply, f.err
}

func (f *fakeProvider) Embed(context.Context, string) ([]float64, error) {
	return []float64{0.1, 0.2}, nil
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func sampleAnalysis() *laravel.ProjectAnalysis {
	return &laravel.ProjectAnalysis{
		ProjectInfo: laravel.ProjectInfo{Name: "Demo", LaravelVersion: "11.0", PHPVersion: "8.3"},
		Controllers: []laravel.ClassRecord{{Name: "App\\Http\\Controllers\\UserController", ShortName: "UserController"}},
		Models: []laravel.Model{{
			ClassRecord: laravel.ClassRecord{Name: "App\\Models\\User", ShortName: "User"},
			Table:       "users",
		}},
		APIEndpoints: []laravel.Route{{Method: "GET", URI: "/api/users"}},
		Modules: map[string]*laravel.ModuleGroup{
			"users": {Name: "users", Routes: []laravel.Route{{Method: "GET", URI: "/users"}, {Method: "POST", URI: "/users"}}},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "unavailable"
	return cfg
}

func TestGenerateDocumentation_UsesProvider(t *testing.T) {
	fake := &fakeProvider{reply: "# Users\n\nGenerated"}
	svc := NewService(testConfig(), WithProvider(fake))

	text, err := svc.GenerateDocumentation(context.Background(), DocumentationRequest{
		Analysis: sampleAnalysis(),
		Module:   "users",
		Data:     map[string]interface{}{"controllers": []string{"UserController"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Users\n\nGenerated", text)

	require.Len(t, fake.prompts, 1)
	prompt := fake.prompts[0]
	assert.Contains(t, prompt, "Focus specifically on the 'users' module.")
	assert.Contains(t, prompt, "Project Information:")
	assert.Contains(t, prompt, "Module Information:")
	assert.Contains(t, prompt, "Module Data:")
	assert.Contains(t, prompt, "9. Deployment and maintenance")
	assert.True(t, strings.HasSuffix(prompt, "code blocks, and examples."))

	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.AI.Temperature, fake.opts[0].Temperature)
	assert.Equal(t, cfg.AI.MaxTokens, fake.opts[0].MaxTokens)
}

func TestGenerateDocumentation_FallbackOnProviderError(t *testing.T) {
	fake := &fakeProvider{err: errors.New("rate limited")}
	svc := NewService(testConfig(), WithProvider(fake))

	text, err := svc.GenerateDocumentation(context.Background(), DocumentationRequest{Analysis: sampleAnalysis()})
	require.Error(t, err)

	var fbErr *FallbackError
	require.True(t, errors.As(err, &fbErr))
	assert.Equal(t, "documentation", fbErr.Op)
	assert.EqualError(t, errors.Unwrap(err), "rate limited")

	assert.Contains(t, text, "# Laravel Project Documentation")
	assert.Contains(t, text, "**Name:** Demo")
	assert.Contains(t, text, "**Description:** No description available")
	assert.Contains(t, text, "### Controllers\n\n- UserController")
	assert.Contains(t, text, "- User (Table: users)")
	assert.Contains(t, text, "- **GET** `/api/users`")
	assert.Contains(t, text, "## Note")
}

func TestGenerateDocumentation_EmptyReplyFallsBack(t *testing.T) {
	svc := NewService(testConfig(), WithProvider(&fakeProvider{reply: "  \n"}))

	text, err := svc.GenerateDocumentation(context.Background(), DocumentationRequest{Analysis: sampleAnalysis(), Module: "users"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, text, "## Module: Users")
	assert.Contains(t, text, "- **POST** `/users`")
	assert.NotContains(t, text, "## Project Structure")
}

func TestNewService_UnavailableProviderFallsBack(t *testing.T) {
	svc := NewService(testConfig())

	text, err := svc.GenerateDocumentation(context.Background(), DocumentationRequest{Analysis: sampleAnalysis()})
	require.Error(t, err)
	assert.Contains(t, text, "fallback documentation")

	resp, err := svc.Chat(context.Background(), "How do users log in?", nil)
	require.Error(t, err)
	assert.Equal(t, ChatFallbackMessage, resp.Response)
	assert.Equal(t, "unavailable", resp.Provider)

	_, err = svc.TestConnection(context.Background())
	assert.Error(t, err)
}

func TestGenerateDocumentation_ServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.AI.Provider = "ollama"
	cfg.AI.Ollama = config.ProviderConfig{BaseURL: server.URL, Model: "llama3"}
	cfg.AI.MaxRetries = 1
	cfg.AI.Timeout = 5 * time.Second

	svc := NewService(cfg)
	defer svc.Close()

	text, err := svc.GenerateDocumentation(context.Background(), DocumentationRequest{Analysis: sampleAnalysis()})
	var fbErr *FallbackError
	require.True(t, errors.As(err, &fbErr))
	assert.Equal(t, "ollama", fbErr.Provider)
	assert.Contains(t, text, "# Laravel Project Documentation")
}

func TestChat(t *testing.T) {
	fake := &fakeProvider{reply: "Use the login route."}
	svc := NewService(testConfig(), WithProvider(fake))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.Chat(context.Background(), "How do users log in?", map[string]string{"auth": "session guard"})
	require.NoError(t, err)
	assert.Equal(t, ChatResponse{
		Response:  "Use the login route.",
		Provider:  "fake",
		Model:     "fake-1",
		Timestamp: fixed,
	}, resp)

	prompt := fake.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Context from project documentation:\n"))
	assert.Contains(t, prompt, "User Question: How do users log in?")

	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.Chatbot.SystemPrompt, fake.opts[0].SystemPrompt)
	assert.Equal(t, cfg.Chatbot.MaxTokens, fake.opts[0].MaxTokens)
}

func TestBuildChatPrompt_WithoutContext(t *testing.T) {
	prompt := BuildChatPrompt("hi", map[string]string{})
	assert.True(t, strings.HasPrefix(prompt, "User Question: hi"))
}

func TestAvailableProviders(t *testing.T) {
	svc := NewService(testConfig(), WithProvider(&fakeProvider{}))

	providers := svc.AvailableProviders()
	assert.Equal(t, []string{"openai", "claude", "gemini", "ollama"}, providers)

	providers[0] = "changed"
	assert.Equal(t, "openai", svc.AvailableProviders()[0])
}

func TestTestConnection(t *testing.T) {
	fake := &fakeProvider{reply: "Connection successful"}
	svc := NewService(testConfig(), WithProvider(fake))

	reply, err := svc.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Connection successful", reply)
	assert.Contains(t, fake.prompts[0], "Connection successful")
}

func TestEmbed(t *testing.T) {
	svc := NewService(testConfig(), WithProvider(&fakeProvider{}))
	vector, err := svc.Embed(context.Background(), "guards")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vector)

	_, err = NewService(testConfig()).Embed(context.Background(), "guards")
	assert.Error(t, err)
}
