package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/devchat/internal"
	"github.com/iksnae/devchat/testutil"
)

// newTestChat returns a logged-in chat view writing to a buffer
func newTestChat(t *testing.T, env *testEnv) (*chatView, *bytes.Buffer) {
	t.Helper()
	env.loginAs(t)
	c := &internal.Config{
		APIURL:    env.fb.URL,
		ConfigDir: env.dir,
		Paths:     internal.Paths{ConfigDir: env.dir},
		Width:     80,
		NoColor:   true,
	}
	a := newApp(c)
	if err := a.RequireAuth(); err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	t.Cleanup(a.Close)

	var out bytes.Buffer
	return &chatView{a: a, out: &out}, &out
}

func TestChatView_SendRendersReply(t *testing.T) {
	env := newTestEnv(t)
	env.fb.SetReply(func(string) string { return "Use **fmt**:\n\n```go\nfmt.Println(1)\n```" })
	view, out := newTestChat(t, env)

	quit, err := view.handleLine(context.Background(), "how do I print?")
	if err != nil || quit {
		t.Fatalf("handleLine() = %v, %v", quit, err)
	}

	got := out.String()
	if !strings.Contains(got, "Assistant") || !strings.Contains(got, "fmt.Println(1)") {
		t.Errorf("reply not printed: %q", got)
	}
	if strings.Contains(got, "**fmt**") || strings.Contains(got, "```") {
		t.Errorf("reply should be rendered, got %q", got)
	}

	msgs := view.a.registry.Transcript().Messages()
	if len(msgs) != 2 || msgs[0].Pending {
		t.Errorf("transcript = %+v, want confirmed user message plus reply", msgs)
	}
}

func TestChatView_TransportFailureShowsNotice(t *testing.T) {
	env := newTestEnv(t)
	view, out := newTestChat(t, env)
	env.fb.SetStatus("chat", http.StatusInternalServerError)

	if _, err := view.handleLine(context.Background(), "hello"); err != nil {
		t.Fatalf("handleLine() error = %v", err)
	}
	if !strings.Contains(out.String(), internal.ErrorReplyText) {
		t.Errorf("error notice missing: %q", out.String())
	}
}

func TestChatView_AuthFailureLeavesView(t *testing.T) {
	env := newTestEnv(t)
	view, _ := newTestChat(t, env)
	env.fb.Revoke()

	_, err := view.handleLine(context.Background(), "hello")
	if !internal.IsAuthFailure(err) {
		t.Fatalf("handleLine() error = %v, want auth failure", err)
	}
	if _, _, ok := env.store().Get(); ok {
		t.Error("credential should be cleared")
	}
}

func TestChatView_Commands(t *testing.T) {
	env := newTestEnv(t)
	env.fb.AddSession("s-1", "Earlier chat",
		testutil.FakeMessage{Role: "user", Content: "old question"},
		testutil.FakeMessage{Role: "assistant", Content: "old answer"},
	)
	view, out := newTestChat(t, env)
	ctx := context.Background()

	tests := []struct {
		line     string
		want     string
		wantQuit bool
	}{
		{line: "/help", want: "/load <id>"},
		{line: "/whoami", want: "ada@example.com"},
		{line: "/sessions", want: "Earlier chat"},
		{line: "/load s-1", want: "old answer"},
		{line: "/load", want: "Could not load session"},
		{line: "/new", want: "Started a new session"},
		{line: "/delete", want: "Usage: /delete"},
		{line: "/bogus", want: "Unknown command /bogus"},
		{line: "   ", want: ""},
		{line: "/quit", wantQuit: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out.Reset()
			quit, err := view.handleLine(ctx, tt.line)
			if err != nil {
				t.Fatalf("handleLine(%q) error = %v", tt.line, err)
			}
			if quit != tt.wantQuit {
				t.Errorf("handleLine(%q) quit = %v, want %v", tt.line, quit, tt.wantQuit)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("handleLine(%q) output %q does not contain %q", tt.line, out.String(), tt.want)
			}
		})
	}
}

func TestChatView_SessionsMarksActive(t *testing.T) {
	env := newTestEnv(t)
	env.fb.AddSession("s-1", "First", testutil.FakeMessage{Role: "user", Content: "q"})
	env.fb.AddSession("s-2", "Second", testutil.FakeMessage{Role: "user", Content: "q"})
	view, out := newTestChat(t, env)
	ctx := context.Background()

	if _, err := view.handleLine(ctx, "/load s-2"); err != nil {
		t.Fatalf("load error = %v", err)
	}
	out.Reset()
	if _, err := view.handleLine(ctx, "/sessions"); err != nil {
		t.Fatalf("sessions error = %v", err)
	}

	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "s-2") && !strings.HasPrefix(line, "*") {
			t.Errorf("active session line not marked: %q", line)
		}
		if strings.Contains(line, "s-1") && strings.HasPrefix(line, "*") {
			t.Errorf("inactive session line marked: %q", line)
		}
	}
}

func TestChatView_DeleteActiveStartsNewSession(t *testing.T) {
	env := newTestEnv(t)
	env.fb.AddSession("s-1", "Doomed", testutil.FakeMessage{Role: "user", Content: "q"})
	view, out := newTestChat(t, env)
	ctx := context.Background()

	if _, err := view.handleLine(ctx, "/load s-1"); err != nil {
		t.Fatalf("load error = %v", err)
	}
	out.Reset()
	if _, err := view.handleLine(ctx, "/delete s-1"); err != nil {
		t.Fatalf("delete error = %v", err)
	}

	if view.a.registry.ActiveID() == "s-1" {
		t.Error("deleted session should no longer be active")
	}
	if !strings.Contains(out.String(), "Started a new session") {
		t.Errorf("delete output = %q", out.String())
	}
	if view.a.registry.Transcript().Len() != 0 {
		t.Error("new session should have an empty transcript")
	}
}

func TestChatView_Logout(t *testing.T) {
	env := newTestEnv(t)
	view, _ := newTestChat(t, env)

	quit, err := view.handleLine(context.Background(), "/logout")
	if err != nil || !quit {
		t.Fatalf("handleLine(/logout) = %v, %v", quit, err)
	}
	if _, _, ok := env.store().Get(); ok {
		t.Error("logout should clear the credential")
	}
}

// scriptReader feeds fixed lines to the chat loop
type scriptReader struct {
	lines []string
}

func (r *scriptReader) Prompt(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) Close() error { return nil }

func TestChatView_RunUntilEOF(t *testing.T) {
	env := newTestEnv(t)
	view, out := newTestChat(t, env)

	err := view.run(context.Background(), &scriptReader{lines: []string{"hi there", "/sessions"}})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "echo: hi there") {
		t.Errorf("reply missing: %q", got)
	}
	if !strings.Contains(got, "hi there") || !strings.Contains(got, "1 session(s)") {
		t.Errorf("session list after send missing: %q", got)
	}
}

func TestChatView_RunStopsOnAuthFailure(t *testing.T) {
	env := newTestEnv(t)
	view, _ := newTestChat(t, env)
	env.fb.Revoke()

	err := view.run(context.Background(), &scriptReader{lines: []string{"hello"}})
	var lr *loginRequiredError
	if !errors.As(err, &lr) {
		t.Errorf("run() error = %v, want login required", err)
	}
}
