package llm

import (
	"fmt"
	"log"
	"net/http"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// NewOllamaLLMProvider creates a local Ollama provider with separate chat and
// embedding models
func NewOllamaLLMProvider(cfg config.AIConfig, httpClient *http.Client) (Provider, error) {
	pc := cfg.Ollama

	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	chatModelName := pc.Model
	if chatModelName == "" {
		return nil, fmt.Errorf("ollama chat model is required (set ai.ollama.model)")
	}

	embedModelName := pc.EmbedModel
	if embedModelName == "" {
		embedModelName = chatModelName // Use chat model if not specified
	}

	chatClient, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(chatModelName),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama chat client: %w", err)
	}

	var embedClient llms.Model
	if embedModelName != chatModelName {
		embedClient, err = ollama.New(
			ollama.WithServerURL(baseURL),
			ollama.WithModel(embedModelName),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama embedding client: %w", err)
		}
		log.Printf("🎯 Ollama: chat=%s, embed=%s (dual-model)", chatModelName, embedModelName)
	} else {
		embedClient = chatClient
		log.Printf("🎯 Ollama: model=%s (single-model)", chatModelName)
	}

	return &chatModelProvider{
		name:      "ollama",
		modelName: chatModelName,
		chat:      chatClient,
		embed:     embedClient,
		defaults:  cfg,
	}, nil
}
