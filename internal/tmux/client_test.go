package tmux

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"
	"testing"
	"time"

	"tmuxdir/internal/logging"
)

func TestClient_NewSessionArgs(t *testing.T) {
	tests := []struct {
		name        string
		program     string
		programArgs string
		want        []string
	}{
		{
			name:        "editor with startup command",
			program:     "nvim",
			programArgs: "e .",
			want:        []string{"tmux", "new-session", "-d", "-c", "/p/api", "-s", "api", "nvim", "-c", "e ."},
		},
		{
			name:    "editor without startup command",
			program: "vim",
			want:    []string{"tmux", "new-session", "-d", "-c", "/p/api", "-s", "api", "vim"},
		},
		{
			name:        "no program ignores args",
			programArgs: "e .",
			want:        []string{"tmux", "new-session", "-d", "-c", "/p/api", "-s", "api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeServer{}
			if err := f.client().NewSession(context.Background(), "api", "/p/api", tt.program, tt.programArgs); err != nil {
				t.Fatalf("NewSession() error = %v", err)
			}
			if !slices.Equal(f.calls[0], tt.want) {
				t.Errorf("args = %q, want %q", f.calls[0], tt.want)
			}
		})
	}
}

func TestClient_ListSessionsFormat(t *testing.T) {
	f := &fakeServer{sessions: []Session{{Name: "work", CreatedEpoch: 1690000000}}}
	if _, err := f.client().ListSessions(context.Background()); err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	want := []string{"tmux", "list-sessions", "-F", "#{session_name} #{session_created} #{session_attached}"}
	if !slices.Equal(f.calls[0], want) {
		t.Errorf("args = %q, want %q", f.calls[0], want)
	}
}

func TestClient_ListSessionsNoServer(t *testing.T) {
	f := &fakeServer{noServer: true}
	sessions, err := f.client().ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v, want nil when no server runs", err)
	}
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("sessions = %#v, want empty", sessions)
	}
}

func TestClient_ErrorsWrapSession(t *testing.T) {
	f := &fakeServer{failWith: map[string]error{"kill-session": errors.New("exit status 1: can't find session: x")}}
	err := f.client().KillSession(context.Background(), "x")
	if !errors.Is(err, ErrSession) {
		t.Errorf("KillSession() error = %v, want ErrSession", err)
	}
	if !strings.Contains(err.Error(), "can't find session") {
		t.Errorf("error %q should carry tmux's message", err)
	}
}

func TestClient_BinaryMissing(t *testing.T) {
	notFound := &exec.Error{Name: "tmux", Err: exec.ErrNotFound}
	exec := func(context.Context, string, ...string) (string, error) { return "", notFound }
	c := NewClientWithExecutor("tmux", exec, nil, nil)

	_, err := c.Version(context.Background())
	if !errors.Is(err, ErrBinaryMissing) {
		t.Errorf("Version() error = %v, want ErrBinaryMissing", err)
	}
	if errors.Is(err, ErrSession) {
		t.Error("missing binary should not be reported as a session error")
	}
}

func TestClient_DefaultExecutorMissingBinary(t *testing.T) {
	c := NewClient("tmuxdir-no-such-binary-on-path", nil)
	err := c.KillSession(context.Background(), "x")
	if !errors.Is(err, ErrBinaryMissing) {
		t.Errorf("KillSession() error = %v, want ErrBinaryMissing", err)
	}
}

func TestDefaultExecutor_StderrIsError(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := defaultExecutor(context.Background(), "sh", "-c", "echo out; echo warning >&2")
	if err == nil || !strings.Contains(err.Error(), "warning") {
		t.Errorf("defaultExecutor() error = %v, want stderr text", err)
	}

	out, err := defaultExecutor(context.Background(), "sh", "-c", "echo out")
	if err != nil || out != "out\n" {
		t.Errorf("defaultExecutor() = %q, %v", out, err)
	}
}

func TestClient_Timeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	exec := func(ctx context.Context, _ string, _ ...string) (string, error) {
		deadline, hasDeadline = ctx.Deadline()
		return "", nil
	}
	c := NewClientWithExecutor("tmux", exec, nil, nil)

	_ = c.SwitchClient(context.Background(), "x")
	if hasDeadline {
		t.Error("no deadline expected without a timeout")
	}

	c.SetTimeout(time.Minute)
	_ = c.SwitchClient(context.Background(), "x")
	if !hasDeadline || time.Until(deadline) > time.Minute {
		t.Errorf("deadline = %v (set %v), want within a minute", deadline, hasDeadline)
	}
}

func TestClient_LogsCommands(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	f := &fakeServer{}
	c := NewClientWithExecutor("tmux", f.exec, f.interactive, lm.For("tmux"))
	if _, err := c.Version(context.Background()); err != nil {
		t.Fatal(err)
	}

	entries := lm.Drain()
	if len(entries) == 0 || entries[0].Scope != "tmux" || entries[0].Level != "DEBUG" {
		t.Errorf("entries = %+v, want a debug entry in scope tmux", entries)
	}
}
