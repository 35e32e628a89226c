// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"tmuxdir/internal/config"
	"tmuxdir/internal/discovery"
	"tmuxdir/internal/manager"
	"tmuxdir/internal/store"
	"tmuxdir/internal/tmux"
)

// Runner builds the environment on first use and runs command bodies with a
// context cancelled on SIGINT or SIGTERM.
type Runner struct {
	// Setup builds the environment. Overridable for testing.
	Setup func() (*Env, error)

	// Stdout receives command output. Defaults to os.Stdout.
	Stdout io.Writer

	env *Env
}

// NewRunner returns a Runner that builds its environment with NewEnv.
func NewRunner(opts EnvOptions) *Runner {
	return &Runner{
		Setup:  func() (*Env, error) { return NewEnv(opts) },
		Stdout: os.Stdout,
	}
}

// Env returns the environment, building it on the first call.
func (r *Runner) Env() (*Env, error) {
	if r.env != nil {
		return r.env, nil
	}
	env, err := r.Setup()
	if err != nil {
		return nil, err
	}
	r.env = env
	return env, nil
}

// Run invokes fn with the environment.
func (r *Runner) Run(fn func(ctx context.Context, env *Env) error) error {
	env, err := r.Env()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, env)
}

// Close releases the environment if it was built.
func (r *Runner) Close() error {
	if r.env == nil {
		return nil
	}
	return r.env.Close()
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

// ExitCode maps an error to the process exit status.
//
// Exit codes:
// - 3: tmux binary not found
// - 2: invalid path or command usage
// - 1: any other error
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, tmux.ErrBinaryMissing):
		return 3
	case errors.Is(err, manager.ErrValidation), errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// ResolvePath expands "~" and makes path absolute.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", usageError("a path is required")
	}
	return filepath.Abs(config.ExpandHome(path))
}

// Describe returns a short user-facing hint for well-known failures.
func Describe(err error) string {
	switch {
	case errors.Is(err, tmux.ErrBinaryMissing):
		return "tmux is not installed or not on PATH (see tmux_bin in config.yaml)"
	case errors.Is(err, tmux.ErrNotAttached):
		return "run tmuxdir from inside tmux to switch sessions"
	case errors.Is(err, store.ErrStorage):
		return "the state directory could not be read or written"
	case errors.Is(err, discovery.ErrFilesystem):
		return "a scan root could not be read"
	}
	return ""
}
