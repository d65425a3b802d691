package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/devchat/testutil"
)

func TestSessionsCommand(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Reversing slices")
	env.fb.AddSession("s-2", "")

	stdout, _, err := env.run(t, "", "sessions")
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	for _, want := range []string{"2 session(s)", "Reversing slices", "s-1", "Untitled", "s-2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("sessions output missing %q:\n%s", want, stdout)
		}
	}
}

func TestSessionsCommand_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)

	stdout, _, err := env.run(t, "", "sessions")
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	if !strings.Contains(stdout, "No sessions yet.") {
		t.Errorf("sessions output = %q", stdout)
	}
}

func TestSessionsCommand_FallsBackToCache(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Cached title")

	if _, _, err := env.run(t, "", "sessions"); err != nil {
		t.Fatalf("first sessions run error = %v", err)
	}

	env.fb.SetStatus("sessions", http.StatusServiceUnavailable)
	stdout, _, err := env.run(t, "", "sessions")
	if err != nil {
		t.Fatalf("sessions with cache error = %v", err)
	}
	if !strings.Contains(stdout, "Cached title") {
		t.Errorf("cached list not shown: %q", stdout)
	}
}

func TestSessionsCommand_BackendDownWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.SetStatus("sessions", http.StatusInternalServerError)

	_, _, err := env.run(t, "", "sessions")
	if err == nil || !strings.Contains(err.Error(), "failed to list sessions") {
		t.Errorf("sessions error = %v", err)
	}
}

func TestSessionsCommand_RevokedLogin(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.Revoke()

	_, _, err := env.run(t, "", "sessions")
	if err == nil || !strings.Contains(err.Error(), "devchat login") {
		t.Fatalf("sessions error = %v, want login hint", err)
	}
	if _, _, ok := env.store().Get(); ok {
		t.Error("a rejected credential must be cleared")
	}
}

func TestSessionsDeleteCommand(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Doomed", testutil.FakeMessage{Role: "user", Content: "hi"})

	stdout, _, err := env.run(t, "", "sessions", "delete", "s-1")
	if err != nil {
		t.Fatalf("sessions delete error = %v", err)
	}
	if !strings.Contains(stdout, "Deleted session s-1") {
		t.Errorf("delete output = %q", stdout)
	}
	if len(env.fb.Sessions()) != 0 {
		t.Errorf("backend sessions = %v, want none", env.fb.Sessions())
	}

	// Deleting again is not an error.
	if _, _, err := env.run(t, "", "sessions", "delete", "s-1"); err != nil {
		t.Errorf("deleting a missing session error = %v", err)
	}
}

func TestSessionsDeleteCommand_RequiresID(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	if _, _, err := env.run(t, "", "sessions", "delete"); err == nil {
		t.Error("sessions delete without an ID should fail")
	}
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Printing in Go",
		testutil.FakeMessage{Role: "user", Content: "How do I print?"},
		testutil.FakeMessage{Role: "assistant", Content: "## Answer\n\n```go\nfmt.Println(\"hi\")\n```"},
		testutil.FakeMessage{Role: "tool", Content: "odd role"},
	)

	stdout, _, err := env.run(t, "", "show", "s-1")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"Printing in Go", "Messages: 3", "You", "How do I print?", "Assistant", "## Answer", "fmt.Println", "System", "odd role"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "```") {
		t.Error("code fences should be rendered, not printed")
	}
}

func TestShowCommand_Limit(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Chatty",
		testutil.FakeMessage{Role: "user", Content: "first"},
		testutil.FakeMessage{Role: "assistant", Content: "second"},
		testutil.FakeMessage{Role: "user", Content: "third"},
	)

	stdout, _, err := env.run(t, "", "show", "s-1", "--limit", "1")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, "first") || strings.Contains(stdout, "third") {
		t.Errorf("show --limit output = %q", stdout)
	}
	if !strings.Contains(stdout, "(2 more message(s))") {
		t.Errorf("remaining count missing: %q", stdout)
	}
}

func TestShowCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"without session ID", []string{"show"}, "accepts 1 arg"},
		{"unknown session", []string{"show", "missing"}, "failed to load session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.loginAs(t)
			_, _, err := env.run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("show error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"md", []string{"# Exported", "**Session:** `s-1`", "### You", "hello"}},
		{"json", []string{`"sessionId": "s-1"`, `"content": "hello"`}},
		{"yaml", []string{"session_id: s-1", "content: hello"}},
		{"jsonl", []string{`"content":"hello"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			env := newTestEnv(t)
			env.loginAs(t)
			env.fb.AddSession("s-1", "Exported", testutil.FakeMessage{Role: "user", Content: "hello"})

			stdout, _, err := env.run(t, "", "export", "s-1", "--format", tt.format)
			if err != nil {
				t.Fatalf("export error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("export output missing %q:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestExportCommand_ToDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)
	env.fb.AddSession("s-1", "Exported", testutil.FakeMessage{Role: "user", Content: "hello"})
	outDir := testutil.CreateTempDir(t)

	if _, _, err := env.run(t, "", "export", "s-1", "--format", "json", "--out", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}
	assertFileContains(t, filepath.Join(outDir, "session_s-1.json"), `"content": "hello"`)
}

func TestExportCommand_BadFormat(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t)

	_, _, err := env.run(t, "", "export", "s-1", "--format", "pdf")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("export error = %v", err)
	}
	if env.fb.Calls("history") != 0 {
		t.Error("an invalid format should be rejected before any request")
	}
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"abc":       "abc",
		"../etc":    "__etc",
		"a/b\\c":    "a_b_c",
		"uuid-1234": "uuid-1234",
	}
	for in, want := range tests {
		if got := safeFileName(in); got != want {
			t.Errorf("safeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertFileContains(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if !strings.Contains(string(data), want) {
		t.Errorf("%s does not contain %q:\n%s", path, want, data)
	}
}
