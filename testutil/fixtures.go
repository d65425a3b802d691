package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Default credentials accepted by a FakeBackend.
const (
	FakeIDToken = "id-token-from-provider"
	FakeToken   = "backend-bearer-token"
)

// FakeUser is the profile returned by a FakeBackend login
type FakeUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// FakeSession is a session entry in a FakeBackend
type FakeSession struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
}

// FakeMessage is a stored history entry in a FakeBackend
type FakeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FakeBackend is an in-process assistant backend serving the devchat API
type FakeBackend struct {
	*httptest.Server

	mu         sync.Mutex
	token      string
	user       FakeUser
	sessions   []FakeSession
	history    map[string][]FakeMessage
	statuses   map[string]int
	calls      map[string]int
	chatGate   chan struct{}
	chatEnter  chan string
	reply      func(message string) string
	lastBearer string
}

// NewFakeBackend starts a fake backend that is shut down with the test
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		token:    FakeToken,
		user:     FakeUser{Name: "Ada Lovelace", Email: "ada@example.com", Picture: "https://example.com/ada.png"},
		history:  make(map[string][]FakeMessage),
		statuses: make(map[string]int),
		calls:    make(map[string]int),
		reply:    func(message string) string { return "echo: " + message },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/google", fb.handleLogin)
	mux.HandleFunc("POST /api/chat", fb.authed("chat", fb.handleChat))
	mux.HandleFunc("GET /api/chat/sessions", fb.authed("sessions", fb.handleSessions))
	mux.HandleFunc("GET /api/chat/history/{id}", fb.authed("history", fb.handleHistory))
	mux.HandleFunc("DELETE /api/chat/session/{id}", fb.authed("delete", fb.handleDelete))
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

// SetReply replaces the assistant reply generator
func (fb *FakeBackend) SetReply(fn func(message string) string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.reply = fn
}

// SetStatus makes route ("login", "chat", "sessions", "history", "delete")
// answer with status instead of its normal response; 0 restores it.
func (fb *FakeBackend) SetStatus(route string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.statuses[route] = status
}

// Revoke makes the backend reject every bearer token with 401
func (fb *FakeBackend) Revoke() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.token = ""
}

// AddSession seeds a session and its history
func (fb *FakeBackend) AddSession(id, title string, messages ...FakeMessage) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.sessions = append(fb.sessions, FakeSession{SessionID: id, Title: title})
	fb.history[id] = append(fb.history[id], messages...)
}

// Sessions returns the sessions the backend currently knows
func (fb *FakeBackend) Sessions() []FakeSession {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]FakeSession(nil), fb.sessions...)
}

// History returns the stored messages of a session
func (fb *FakeBackend) History(id string) []FakeMessage {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]FakeMessage(nil), fb.history[id]...)
}

// Calls returns how many requests reached route
func (fb *FakeBackend) Calls(route string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[route]
}

// LastBearer returns the Authorization header of the last authenticated request
func (fb *FakeBackend) LastBearer() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.lastBearer
}

// HoldChat makes chat requests block until the returned release func is
// called. Each blocked request's session ID is sent on entered.
func (fb *FakeBackend) HoldChat() (entered <-chan string, release func()) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	gate := make(chan struct{})
	enter := make(chan string, 16)
	fb.chatGate = gate
	fb.chatEnter = enter
	var once sync.Once
	return enter, func() { once.Do(func() { close(gate) }) }
}

func (fb *FakeBackend) authed(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.calls[route]++
		fb.lastBearer = r.Header.Get("Authorization")
		ok := fb.token != "" && fb.lastBearer == "Bearer "+fb.token
		status := fb.statuses[route]
		fb.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		next(w, r)
	}
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.calls["login"]++
	status := fb.statuses["login"]
	user := fb.user
	fb.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token != FakeIDToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"token": FakeToken, "user": user})
}

func (fb *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	gate, enter := fb.chatGate, fb.chatEnter
	fb.mu.Unlock()
	if gate != nil {
		enter <- body.SessionID
		<-gate
	}

	fb.mu.Lock()
	reply := fb.reply(body.Message)
	if _, known := fb.history[body.SessionID]; !known {
		title := body.Message
		if len(title) > 30 {
			title = title[:30]
		}
		fb.sessions = append([]FakeSession{{SessionID: body.SessionID, Title: title}}, fb.sessions...)
	}
	fb.history[body.SessionID] = append(fb.history[body.SessionID],
		FakeMessage{Role: "user", Content: body.Message},
		FakeMessage{Role: "assistant", Content: reply})
	fb.mu.Unlock()

	writeJSON(w, map[string]string{"message": reply})
}

func (fb *FakeBackend) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, fb.Sessions())
}

func (fb *FakeBackend) handleHistory(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	messages, ok := fb.history[r.PathValue("id")]
	fb.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"messages": append([]FakeMessage{}, messages...)})
}

func (fb *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.history[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(fb.history, id)
	kept := fb.sessions[:0]
	for _, s := range fb.sessions {
		if s.SessionID != id {
			kept = append(kept, s)
		}
	}
	fb.sessions = kept
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
