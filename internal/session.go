package internal

import (
	"fmt"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem marks a client-side failure notice standing in for an assistant reply.
	RoleSystem Role = "system"
)

// ParseRole validates a wire role string
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Message is a single entry in a session transcript
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	// Pending is set on an optimistically appended user message until its dispatch completes.
	Pending bool `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// NewUserMessage creates a confirmed user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a system notice.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Session is a conversation thread known to the backend (or about to be)
type Session struct {
	ID    string `json:"sessionId" yaml:"session_id"`
	Title string `json:"title" yaml:"title"`
}

// DisplayTitle returns the title or a placeholder for untitled sessions
func (s Session) DisplayTitle() string {
	if s.Title == "" {
		return "Untitled"
	}
	return s.Title
}

// NewSessionID returns a fresh globally-unique session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// Profile is the authenticated user's identity as returned by the backend
type Profile struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Picture string `json:"picture,omitempty" yaml:"picture,omitempty"`
}

// Credential is the opaque bearer token issued by the backend
type Credential struct {
	Token string `yaml:"token"`
}
