package internal

import (
	"context"
	"strings"
	"sync"
)

// ErrorReplyText is shown in place of an assistant reply when a send fails.
const ErrorReplyText = "Sorry, there was an error processing your request."

// Outcome describes how a send finished
type Outcome int

const (
	// OutcomeReplied means the assistant reply was appended.
	OutcomeReplied Outcome = iota
	// OutcomeFailed means a system notice was appended in place of a reply.
	OutcomeFailed
	// OutcomeDiscarded means the session was switched away before the reply arrived.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// SendResult reports what a completed send appended
type SendResult struct {
	SessionID string
	Outcome   Outcome
	Reply     Message
	// Err is the transport failure behind OutcomeFailed.
	Err error
}

// Pipeline sends user messages and appends their replies to the transcript
type Pipeline struct {
	backend  Backend
	registry *Registry

	mu   sync.Mutex
	busy map[string]bool

	refreshes sync.WaitGroup
}

// NewPipeline creates a pipeline over the registry's transcript
func NewPipeline(backend Backend, registry *Registry) *Pipeline {
	return &Pipeline{
		backend:  backend,
		registry: registry,
		busy:     make(map[string]bool),
	}
}

// Busy reports whether a send is in flight for the active session
func (p *Pipeline) Busy() bool {
	sid := p.registry.ActiveID()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy[sid]
}

// Wait blocks until background session list refreshes have finished
func (p *Pipeline) Wait() {
	p.refreshes.Wait()
}

// Send appends text as a user message to the active session, dispatches it,
// and appends exactly one reply. An AuthFailureError is returned with nothing
// appended after the pending user message. Other backend failures append a
// system notice and are reported through SendResult.Err.
func (p *Pipeline) Send(ctx context.Context, text string) (SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return SendResult{}, &ValidationError{Field: "message", Err: ErrEmptyMessage}
	}

	transcript := p.registry.Transcript()
	bound := transcript.Bind()
	sid := bound.SessionID
	if !p.acquire(sid) {
		return SendResult{SessionID: sid}, &ValidationError{Field: "message", Err: ErrSendInFlight}
	}
	defer p.release(sid)

	userIdx := transcript.AppendTo(bound, Message{Role: RoleUser, Content: text, Pending: true})

	reply, err := p.backend.SendMessage(ctx, sid, text)
	if err != nil && IsAuthFailure(err) {
		LogDebug("Send for session %s rejected: credential required", sid)
		return SendResult{SessionID: sid}, err
	}

	result := SendResult{SessionID: sid}
	if err != nil {
		LogWarn("Send for session %s failed: %v", sid, err)
		result.Outcome = OutcomeFailed
		result.Reply = NewSystemMessage(ErrorReplyText)
		result.Err = err
	} else {
		result.Outcome = OutcomeReplied
		result.Reply = NewAssistantMessage(reply)
	}

	transcript.Confirm(bound, userIdx)
	if transcript.AppendTo(bound, result.Reply) < 0 {
		LogInfo("Discarding reply for session %s: transcript switched or reloaded", sid)
		result.Outcome = OutcomeDiscarded
	}

	if err == nil {
		p.refreshInBackground(ctx)
	}
	return result, nil
}

func (p *Pipeline) refreshInBackground(ctx context.Context) {
	p.refreshes.Add(1)
	go func() {
		defer p.refreshes.Done()
		if err := p.registry.Refresh(context.WithoutCancel(ctx)); err != nil {
			LogWarn("Background session refresh failed: %v", err)
		}
	}()
}

func (p *Pipeline) acquire(sid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy[sid] {
		return false
	}
	p.busy[sid] = true
	return true
}

func (p *Pipeline) release(sid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.busy, sid)
}
