// Package ai turns project analysis data into documentation text and answers
// questions about it through the configured LLM provider.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/llm"
)

// ChatFallbackMessage is returned to the user when the provider fails
const ChatFallbackMessage = "I apologize, but I'm having trouble processing your request right now. Please try again later."

const testPrompt = "Hello, this is a test message. Please respond with 'Connection successful' if you can read this."

// ErrEmptyResponse is reported when the provider answers with no text
var ErrEmptyResponse = errors.New("provider returned an empty response")

// FallbackError reports that a provider call failed and a static
// replacement was returned instead. The replacement is always usable.
type FallbackError struct {
	Provider string
	Op       string
	Err      error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("%s via %s failed, using fallback: %v", e.Op, e.Provider, e.Err)
}

func (e *FallbackError) Unwrap() error {
	return e.Err
}

// DocumentationRequest describes one documentation generation call
type DocumentationRequest struct {
	Analysis *laravel.ProjectAnalysis

	// Module is the documentation module key; empty for the overview
	Module string

	// Data is the module's slice of the analysis, embedded in the prompt
	Data interface{}
}

// ChatResponse is the answer to one chat message
type ChatResponse struct {
	Response  string    `json:"response"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is a provider-agnostic front for documentation and chat
// completions
type Service struct {
	provider llm.Provider
	initErr  error

	providerName string
	ai           config.AIConfig
	chatbot      config.ChatbotConfig
	now          func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithProvider uses p instead of building one from configuration
func WithProvider(p llm.Provider) Option {
	return func(s *Service) {
		s.provider = p
		s.initErr = nil
		if p != nil {
			s.providerName = p.Name()
		}
	}
}

// NewService creates the service for the configured provider. A provider
// that cannot be built (missing API key, unknown name) does not fail
// construction: every call then returns fallback content.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		providerName: cfg.AI.Provider,
		ai:           cfg.AI,
		chatbot:      cfg.Chatbot,
		now:          time.Now,
	}

	provider, err := llm.NewProvider(&cfg.AI)
	if err != nil {
		s.initErr = err
	} else {
		s.provider = provider
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.initErr != nil {
		log.Printf("⚠️  AI provider %s unavailable, documentation will use fallback text: %v", s.providerName, s.initErr)
	}
	return s
}

// GenerateDocumentation asks the provider for Markdown documentation of the
// requested module. The returned text is never empty: on failure it is the
// static fallback and the error is a *FallbackError.
func (s *Service) GenerateDocumentation(ctx context.Context, req DocumentationRequest) (string, error) {
	prompt := BuildDocumentationPrompt(req)

	text, err := s.complete(ctx, prompt,
		llm.WithSystemPrompt(s.chatbot.SystemPrompt),
		llm.WithTemperature(s.ai.Temperature),
		llm.WithMaxTokens(s.ai.MaxTokens),
	)
	if err != nil {
		log.Printf("❌ AI documentation generation error: %v", err)
		return FallbackDocumentation(req.Analysis, req.Module), &FallbackError{Provider: s.providerName, Op: "documentation", Err: err}
	}
	return text, nil
}

// Fallback returns the static documentation without calling the provider
func (s *Service) Fallback(req DocumentationRequest) string {
	return FallbackDocumentation(req.Analysis, req.Module)
}

// Chat answers a question with the given documentation context. On
// failure the response carries ChatFallbackMessage and the error is a
// *FallbackError.
func (s *Service) Chat(ctx context.Context, message string, chatContext interface{}) (ChatResponse, error) {
	resp := ChatResponse{
		Provider: s.providerName,
		Model:    s.ai.For(s.providerName).Model,
	}
	if s.provider != nil {
		resp.Model = s.provider.Model()
	}

	text, err := s.complete(ctx, BuildChatPrompt(message, chatContext),
		llm.WithSystemPrompt(s.chatbot.SystemPrompt),
		llm.WithTemperature(s.chatbot.Temperature),
		llm.WithMaxTokens(s.chatbot.MaxTokens),
	)
	resp.Timestamp = s.now()
	if err != nil {
		log.Printf("❌ AI chat error: %v", err)
		resp.Response = ChatFallbackMessage
		return resp, &FallbackError{Provider: s.providerName, Op: "chat", Err: err}
	}

	resp.Response = text
	return resp, nil
}

// AvailableProviders lists the provider names that can be configured
func (s *Service) AvailableProviders() []string {
	return append([]string(nil), llm.SupportedProviders...)
}

// Provider returns the configured provider name
func (s *Service) Provider() string {
	return s.providerName
}

// TestConnection sends a short prompt and returns the provider's answer
func (s *Service) TestConnection(ctx context.Context) (string, error) {
	text, err := s.complete(ctx, testPrompt)
	if err != nil {
		return "", fmt.Errorf("connection test for %s failed: %w", s.providerName, err)
	}
	return text, nil
}

// Embed returns the provider's embedding of text. Unlike the completion
// calls it has no fallback.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.provider == nil {
		if s.initErr != nil {
			return nil, s.initErr
		}
		return nil, errors.New("no AI provider configured")
	}
	return s.provider.Embed(ctx, text)
}

// Close releases the provider
func (s *Service) Close() error {
	if closer, ok := s.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) complete(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	if s.provider == nil {
		if s.initErr != nil {
			return "", s.initErr
		}
		return "", errors.New("no AI provider configured")
	}

	text, err := s.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
