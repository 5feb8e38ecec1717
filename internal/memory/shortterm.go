package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Roles used in a chat history
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"-"`
}

// ShortTermMemory keeps the most recent messages of a conversation
type ShortTermMemory struct {
	messages []Message
	maxSize  int
	now      func() time.Time
	mu       sync.RWMutex
}

// NewShortTermMemory creates a memory holding at most maxSize messages.
// A non-positive maxSize keeps everything.
func NewShortTermMemory(maxSize int) *ShortTermMemory {
	capacity := maxSize
	if capacity < 0 {
		capacity = 0
	}
	return &ShortTermMemory{
		messages: make([]Message, 0, capacity),
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// Add appends a message, dropping the oldest ones beyond maxSize
func (m *ShortTermMemory) Add(role, content string) Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	}

	m.messages = append(m.messages, msg)

	if m.maxSize > 0 && len(m.messages) > m.maxSize {
		m.messages = m.messages[len(m.messages)-m.maxSize:]
	}
	return msg
}

// GetAll returns a copy of the messages, oldest first
func (m *ShortTermMemory) GetAll() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// GetLast returns the last n messages
func (m *ShortTermMemory) GetLast(n int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.messages) {
		n = len(m.messages)
	}
	if n < 0 {
		n = 0
	}

	result := make([]Message, n)
	copy(result, m.messages[len(m.messages)-n:])
	return result
}

// Clear removes all messages
func (m *ShortTermMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = m.messages[:0]
}

// Size returns the current number of messages
func (m *ShortTermMemory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.messages)
}

// String renders the conversation as a transcript
func (m *ShortTermMemory) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	for _, msg := range m.messages {
		fmt.Fprintf(&b, "[%s %s]: %s\n", msg.Timestamp.Format("15:04"), msg.Role, msg.Content)
	}
	return b.String()
}
