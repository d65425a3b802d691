package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Client exposes the assistant backend's endpoints
type Client struct {
	gate       *AuthGate
	normalizer *Normalizer
}

// NewClient creates a client dispatching through gate
func NewClient(gate *AuthGate) *Client {
	return &Client{
		gate:       gate,
		normalizer: NewNormalizer(),
	}
}

// Gate returns the underlying auth gate
func (c *Client) Gate() *AuthGate {
	return c.gate
}

// Login exchanges an identity-provider ID token for a backend credential and
// stores it together with the returned profile.
func (c *Client) Login(ctx context.Context, idToken string) (Profile, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Profile{}, &ValidationError{Field: "id_token", Err: errors.New("identity token is empty")}
	}

	var resp LoginResponse
	err := c.gate.DispatchPublic(ctx, Request{
		Op:     "login",
		Method: http.MethodPost,
		Path:   "/auth/google",
		Body:   LoginRequest{Token: idToken},
	}, &resp)
	if err != nil {
		return Profile{}, err
	}
	if resp.Token == "" || resp.User == nil {
		return Profile{}, &TransportError{Op: "login", Status: http.StatusOK, Err: errors.New("response is missing token or user")}
	}

	if err := c.gate.Store().Set(Credential{Token: resp.Token}, *resp.User); err != nil {
		return Profile{}, fmt.Errorf("failed to store credentials: %w", err)
	}
	LogDebug("Stored credential for %s", resp.User.Email)
	return *resp.User, nil
}

// SendMessage posts a user message to a session and returns the assistant reply
func (c *Client) SendMessage(ctx context.Context, sessionID, text string) (string, error) {
	var resp ChatResponse
	err := c.gate.Dispatch(ctx, Request{
		Op:     "send",
		Method: http.MethodPost,
		Path:   "/api/chat",
		Body:   ChatRequest{Message: text, SessionID: sessionID},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListSessions returns the user's sessions in backend order
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var raw []Session
	err := c.gate.Dispatch(ctx, Request{
		Op:     "list",
		Method: http.MethodGet,
		Path:   "/api/chat/sessions",
	}, &raw)
	if err != nil {
		return nil, err
	}
	return c.normalizer.NormalizeSessions(raw), nil
}

// History returns the stored messages of a session
func (c *Client) History(ctx context.Context, sessionID string) ([]Message, error) {
	var resp HistoryResponse
	err := c.gate.Dispatch(ctx, Request{
		Op:     "history",
		Method: http.MethodGet,
		Path:   "/api/chat/history/" + url.PathEscape(sessionID),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.normalizer.NormalizeHistory(resp.Messages), nil
}

// DeleteSession removes a session. A session the backend no longer knows is
// reported as deleted.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	err := c.gate.Dispatch(ctx, Request{
		Op:     "delete",
		Method: http.MethodDelete,
		Path:   "/api/chat/session/" + url.PathEscape(sessionID),
	}, nil)
	if HTTPStatus(err) == http.StatusNotFound && IsTransport(err) {
		LogDebug("Session %s already gone", sessionID)
		return nil
	}
	return err
}
