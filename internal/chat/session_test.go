package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
	"github.com/codeWithUali/laradoc/internal/memory"
)

type recordingChatter struct {
	contexts []map[string]interface{}
	err      error
}

func (r *recordingChatter) Chat(_ context.Context, message string, chatContext interface{}) (ai.ChatResponse, error) {
	r.contexts = append(r.contexts, chatContext.(map[string]interface{}))
	if r.err != nil {
		return ai.ChatResponse{Response: ai.ChatFallbackMessage, Provider: "openai"}, &ai.FallbackError{Provider: "openai", Op: "chat", Err: r.err}
	}
	return ai.ChatResponse{Response: "answer to " + message, Provider: "fake"}, nil
}

func newStore(t *testing.T) *docs.Store {
	t.Helper()
	store := docs.NewStore(t.TempDir())
	doc := &docs.Documentation{}
	doc.Add(docs.Entry{Key: "authentication", Title: "Authentication & Authorization", Content: strings.Repeat("g", 50)})
	require.NoError(t, store.Save(doc))
	return store
}

func TestSession_SendRecordsExchange(t *testing.T) {
	chatter := &recordingChatter{}
	s := NewSession(chatter, nil, config.ChatbotConfig{})
	assert.NotEmpty(t, s.ID)

	resp, err := s.Send(context.Background(), "  which guards exist?  ")
	require.NoError(t, err)
	assert.Equal(t, "answer to which guards exist?", resp.Response)

	// First message goes out without any context
	assert.Empty(t, chatter.contexts[0])

	_, err = s.Send(context.Background(), "and providers?")
	require.NoError(t, err)
	conversation := chatter.contexts[1]["conversation"].([]memory.Message)
	require.Len(t, conversation, 2)
	assert.Equal(t, memory.RoleUser, conversation[0].Role)
	assert.Equal(t, memory.RoleAssistant, conversation[1].Role)

	assert.Len(t, s.History(), 4)
}

func TestSession_EmptyMessage(t *testing.T) {
	s := NewSession(&recordingChatter{}, nil, config.ChatbotConfig{})
	_, err := s.Send(context.Background(), " \n")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.History())
}

func TestSession_HistoryIsBounded(t *testing.T) {
	chatter := &recordingChatter{}
	s := NewSession(chatter, nil, config.ChatbotConfig{HistorySize: 4})

	for i := 0; i < 5; i++ {
		_, err := s.Send(context.Background(), "q")
		require.NoError(t, err)
	}

	assert.Len(t, s.History(), 4)
	last := chatter.contexts[len(chatter.contexts)-1]["conversation"].([]memory.Message)
	assert.Len(t, last, 4)
}

func TestSession_FallbackReplyIsRecorded(t *testing.T) {
	s := NewSession(&recordingChatter{err: errors.New("timeout")}, nil, config.ChatbotConfig{})

	resp, err := s.Send(context.Background(), "hello")
	var fallback *ai.FallbackError
	require.True(t, errors.As(err, &fallback))
	assert.Equal(t, ai.ChatFallbackMessage, resp.Response)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, ai.ChatFallbackMessage, history[1].Content)
}

func TestSession_LoadModule(t *testing.T) {
	chatter := &recordingChatter{}
	s := NewSession(chatter, newStore(t), config.ChatbotConfig{ContextChars: 10})

	loaded, err := s.LoadModule("authentication")
	require.NoError(t, err)
	assert.Equal(t, "Authentication & Authorization", loaded.Title)
	assert.Equal(t, strings.Repeat("g", 10), loaded.Content)

	_, err = s.Send(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, loaded, chatter.contexts[0]["documentation"])

	history := s.History()
	assert.Equal(t, memory.RoleSystem, history[0].Role)
	assert.Contains(t, history[0].Content, "'Authentication & Authorization'")

	_, err = s.LoadModule("billing")
	assert.ErrorIs(t, err, docs.ErrNotFound)

	assert.Equal(t, "Chat history cleared. How can I help you?", s.Clear())
	assert.Empty(t, s.History())
	assert.Empty(t, s.Context())
}

func TestSession_LoadModuleWithoutSource(t *testing.T) {
	s := NewSession(&recordingChatter{}, nil, config.ChatbotConfig{})
	_, err := s.LoadModule("api")
	assert.ErrorIs(t, err, docs.ErrNotFound)
}

func TestSession_ConcurrentLoadAndSend(t *testing.T) {
	chatter := &recordingChatter{}
	s := NewSession(chatter, newStore(t), config.ChatbotConfig{HistorySize: 100})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.LoadModule("authentication"); err != nil {
				t.Errorf("LoadModule: %v", err)
			}
			if _, err := s.Send(context.Background(), "hi"); err != nil {
				t.Errorf("Send: %v", err)
			}
			_ = s.Context()
		}()
	}
	wg.Wait()

	assert.Len(t, chatter.contexts, 20)
	for _, c := range chatter.contexts {
		assert.Contains(t, c, "documentation")
	}

	// Each exchange is recorded as an adjacent user and assistant pair
	var roles []string
	for _, m := range s.History() {
		if m.Role != memory.RoleSystem {
			roles = append(roles, m.Role)
		}
	}
	require.Len(t, roles, 40)
	for i := 0; i < len(roles); i += 2 {
		if roles[i] != memory.RoleUser || roles[i+1] != memory.RoleAssistant {
			t.Errorf("messages %d and %d are %s and %s", i, i+1, roles[i], roles[i+1])
		}
	}
}

func TestManager(t *testing.T) {
	m := NewManager(&recordingChatter{}, nil, config.ChatbotConfig{})

	first := m.Session("")
	assert.Equal(t, 0, m.Len())
	assert.NotSame(t, first, m.Session(first.ID))

	m.Save(first)
	assert.Same(t, first, m.Session(first.ID))
	assert.NotSame(t, first, m.Session("unknown"))
	m.Save(m.Session("unknown"))
	assert.Equal(t, 2, m.Len())

	m.Delete(first.ID)
	assert.Equal(t, 1, m.Len())
}

func TestManager_UnsavedSessionsAreNotKept(t *testing.T) {
	m := NewManager(&recordingChatter{}, nil, config.ChatbotConfig{})

	for i := 0; i < 500; i++ {
		_, err := m.Session("").Send(context.Background(), "")
		require.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Equal(t, 0, m.Len())
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(&recordingChatter{}, nil, config.ChatbotConfig{})
	m.now = func() time.Time { return now }

	idle := m.Session("")
	m.Save(idle)
	now = now.Add(30 * time.Minute)
	active := m.Session("")
	m.Save(active)

	now = now.Add(45 * time.Minute)
	assert.NotSame(t, idle, m.Session(idle.ID))
	assert.Same(t, active, m.Session(active.ID))
	assert.Equal(t, 1, m.Len())
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(&recordingChatter{}, nil, config.ChatbotConfig{})
	m.now = func() time.Time { return now }
	m.maxSessions = 2

	var saved []*Session
	for i := 0; i < 2; i++ {
		s := m.Session("")
		m.Save(s)
		saved = append(saved, s)
		now = now.Add(time.Second)
	}

	// Using the first session makes the second the oldest
	m.Session(saved[0].ID)
	now = now.Add(time.Second)
	m.Save(m.Session(""))

	assert.Equal(t, 2, m.Len())
	assert.Same(t, saved[0], m.Session(saved[0].ID))
	assert.NotSame(t, saved[1], m.Session(saved[1].ID))
}
