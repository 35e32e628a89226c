package tmux

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// fakeServer emulates the tmux commands tmuxdir issues.
type fakeServer struct {
	mu       sync.Mutex
	sessions []Session
	calls    [][]string
	attached []string

	listOutput *string // overrides list-sessions output when set
	failWith   map[string]error
	noServer   bool
}

func (f *fakeServer) exec(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) == 0 {
		return "", errors.New("usage")
	}
	if err, ok := f.failWith[args[0]]; ok {
		return "", err
	}

	switch args[0] {
	case "-V":
		return "tmux 3.4\n", nil
	case "list-sessions":
		if f.listOutput != nil {
			return *f.listOutput, nil
		}
		if f.noServer || len(f.sessions) == 0 {
			return "", errors.New("exit status 1: no server running on /tmp/tmux-1000/default")
		}
		var b strings.Builder
		for _, s := range f.sessions {
			attached := 0
			if s.Attached {
				attached = 1
			}
			fmt.Fprintf(&b, "%s %d %d\n", s.Name, s.CreatedEpoch, attached)
		}
		return b.String(), nil
	case "new-session":
		name := flagValue(args, "-s")
		for _, s := range f.sessions {
			if s.Name == name {
				return "", fmt.Errorf("exit status 1: duplicate session: %s", name)
			}
		}
		f.sessions = append(f.sessions, Session{Name: name, CreatedEpoch: int64(1690000000 + len(f.sessions))})
		return "", nil
	case "kill-session", "switch-client":
		name := flagValue(args, "-t")
		for i, s := range f.sessions {
			if s.Name == name {
				if args[0] == "kill-session" {
					f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
				}
				return "", nil
			}
		}
		return "", fmt.Errorf("exit status 1: can't find session: %s", name)
	}
	return "", fmt.Errorf("unknown command %s", args[0])
}

func (f *fakeServer) interactive(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.attached = append(f.attached, flagValue(args, "-t"))
	return nil
}

func (f *fakeServer) count(sub string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) > 1 && c[1] == sub {
			n++
		}
	}
	return n
}

func (f *fakeServer) client() *Client {
	return NewClientWithExecutor("tmux", f.exec, f.interactive, nil)
}

func flagValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}
