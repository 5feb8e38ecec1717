package tools

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/chat"
)

// ChatTool answers questions about the project through the chatbot
type ChatTool struct {
	sessions *chat.Manager
}

// NewChatTool creates the chat tool
func NewChatTool(sessions *chat.Manager) *ChatTool {
	return &ChatTool{sessions: sessions}
}

// Name returns the tool name
func (t *ChatTool) Name() string {
	return "chat"
}

// Description returns the tool description
func (t *ChatTool) Description() string {
	return "Ask the project assistant a question. Pass the returned session_id to continue a conversation, and module to load that documentation module as context."
}

// Schema returns the input schema
func (t *ChatTool) Schema() map[string]interface{} {
	return objectSchema([]string{"message"}, map[string]interface{}{
		"message":    stringProperty("The question"),
		"session_id": stringProperty("Optional: session returned by a previous call"),
		"module":     stringProperty("Optional: documentation module to use as context"),
	})
}

type chatResult struct {
	SessionID string `json:"session_id"`
	ai.ChatResponse
}

// Execute sends the message
func (t *ChatTool) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	message := stringParam(params, "message")
	session := t.sessions.Session(stringParam(params, "session_id"))

	if module := stringParam(params, "module"); module != "" {
		if _, err := session.LoadModule(module); err != nil {
			return "", fmt.Errorf("failed to load module %s: %w", module, err)
		}
	}

	resp, err := session.Send(ctx, message)
	if err != nil {
		var fallback *ai.FallbackError
		if !errors.As(err, &fallback) {
			return "", err
		}
		log.Printf("⚠️  Chat fell back: %v", err)
	}
	t.sessions.Save(session)

	return toJSON(chatResult{SessionID: session.ID, ChatResponse: resp})
}
