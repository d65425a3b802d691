package internal

// Wire payloads exchanged with the assistant backend.

// LoginRequest is the body of POST /auth/google
type LoginRequest struct {
	Token string `json:"token"`
}

// LoginResponse is returned by POST /auth/google
type LoginResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is returned by POST /api/chat
type ChatResponse struct {
	Message string `json:"message"`
}

// RawMessage is a history entry as stored by the backend
type RawMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is returned by GET /api/chat/history/{sessionId}
type HistoryResponse struct {
	Messages []RawMessage `json:"messages"`
}
