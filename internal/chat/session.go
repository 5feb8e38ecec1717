// Package chat keeps chatbot conversations about the generated
// documentation: a bounded message history and an optional documentation
// module loaded as context.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
	"github.com/codeWithUali/laradoc/internal/memory"
)

// Greeting is shown when a session starts
const Greeting = "Hello! I'm your Laravel project assistant. I can help you understand your codebase, find specific functionality, and answer questions about your application. How can I help you today?"

const clearedMessage = "Chat history cleared. How can I help you?"

// ErrEmptyMessage is returned for blank user input
var ErrEmptyMessage = errors.New("message is empty")

// Chatter answers a message given a context value
type Chatter interface {
	Chat(ctx context.Context, message string, chatContext interface{}) (ai.ChatResponse, error)
}

// DocumentationSource reads generated documentation
type DocumentationSource interface {
	Get(module string) (string, error)
	Load() (*docs.Documentation, error)
}

// DocumentationContext is the module loaded into a session
type DocumentationContext struct {
	Module  string `json:"module"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Session is one conversation
type Session struct {
	ID string

	chatter      Chatter
	source       DocumentationSource
	history      *memory.ShortTermMemory
	historySize  int
	contextChars int

	// mu serializes exchanges and guards documentation
	mu            sync.Mutex
	documentation *DocumentationContext
}

// NewSession starts an empty conversation. source may be nil when no
// documentation has been generated.
func NewSession(chatter Chatter, source DocumentationSource, cfg config.ChatbotConfig) *Session {
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = 10
	}
	contextChars := cfg.ContextChars
	if contextChars <= 0 {
		contextChars = 2000
	}

	return &Session{
		ID:           uuid.NewString(),
		chatter:      chatter,
		source:       source,
		history:      memory.NewShortTermMemory(historySize),
		historySize:  historySize,
		contextChars: contextChars,
	}
}

// Send asks the assistant and records both sides of the exchange. The
// prompt context holds the loaded module and the previous messages. On an
// AI failure the apology reply is still recorded and returned along with
// the error. Concurrent sends on one session run one after the other.
func (s *Session) Send(ctx context.Context, message string) (ai.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ai.ChatResponse{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chatContext := s.context()
	s.history.Add(memory.RoleUser, message)

	resp, err := s.chatter.Chat(ctx, message, chatContext)
	s.history.Add(memory.RoleAssistant, resp.Response)

	return resp, err
}

// LoadModule loads a documentation module as context. The content is
// truncated to the configured number of characters.
func (s *Session) LoadModule(module string) (DocumentationContext, error) {
	if s.source == nil {
		return DocumentationContext{}, fmt.Errorf("no documentation available: %w", docs.ErrNotFound)
	}

	content, err := s.source.Get(module)
	if err != nil {
		return DocumentationContext{}, err
	}

	title := module
	if doc, err := s.source.Load(); err == nil {
		if entry, ok := doc.Entry(module); ok && entry.Title != "" {
			title = entry.Title
		}
	} else {
		log.Printf("⚠️  Could not read documentation metadata: %v", err)
	}

	loaded := DocumentationContext{
		Module:  module,
		Title:   title,
		Content: truncate(content, s.contextChars),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentation = &loaded
	s.history.Add(memory.RoleSystem, fmt.Sprintf("I've loaded documentation for the '%s' module. You can now ask me specific questions about it.", title))

	return loaded, nil
}

// Context builds the value sent with the next message. Keys are omitted
// when there is nothing to send.
func (s *Session) Context() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context()
}

func (s *Session) context() map[string]interface{} {
	chatContext := map[string]interface{}{}
	if s.documentation != nil {
		chatContext["documentation"] = *s.documentation
	}
	if conversation := s.history.GetLast(s.historySize); len(conversation) > 0 {
		chatContext["conversation"] = conversation
	}
	return chatContext
}

// History returns the recorded messages, oldest first
func (s *Session) History() []memory.Message {
	return s.history.GetAll()
}

// Clear forgets the conversation and the loaded module
func (s *Session) Clear() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	s.documentation = nil
	return clearedMessage
}

// Transcript renders the history
func (s *Session) Transcript() string {
	return s.history.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
