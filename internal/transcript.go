package internal

import "sync"

// Transcript is the in-memory message sequence of the active session.
// Messages are only ever appended, except when the whole sequence is
// replaced on session create or load.
type Transcript struct {
	mu        sync.Mutex
	sessionID string
	messages  []Message
	// gen counts Replace calls so a reload of the same session invalidates
	// outstanding bindings.
	gen uint64
}

// Binding pins one session's transcript contents between two Replace calls
type Binding struct {
	SessionID string
	gen       uint64
}

// NewTranscript creates an empty transcript for sessionID
func NewTranscript(sessionID string) *Transcript {
	return &Transcript{sessionID: sessionID}
}

// SessionID returns the session the transcript currently shows
func (t *Transcript) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Bind returns a binding to the current session and contents
func (t *Transcript) Bind() Binding {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Binding{SessionID: t.sessionID, gen: t.gen}
}

func (t *Transcript) holds(b Binding) bool {
	return t.sessionID == b.SessionID && t.gen == b.gen
}

// Messages returns a copy of the messages
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Replace swaps in a new session and message sequence
func (t *Transcript) Replace(sessionID string, messages []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = sessionID
	t.messages = append([]Message(nil), messages...)
	t.gen++
}

// AppendTo appends msg if the transcript has not been replaced since b was
// taken. It returns the new message's index, or -1 when the session was
// switched away or reloaded.
func (t *Transcript) AppendTo(b Binding, msg Message) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.holds(b) {
		return -1
	}
	t.messages = append(t.messages, msg)
	return len(t.messages) - 1
}

// Confirm clears the pending flag of the message at index under b.
func (t *Transcript) Confirm(b Binding, index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.holds(b) || index < 0 || index >= len(t.messages) {
		return false
	}
	t.messages[index].Pending = false
	return true
}
