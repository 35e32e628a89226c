// pattern: Imperative Shell

package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"tmuxdir/internal/logging"
)

// CommandExecutor runs a command and returns its standard output.
type CommandExecutor func(ctx context.Context, name string, args ...string) (string, error)

// InteractiveRunner runs a command attached to the caller's terminal.
type InteractiveRunner func(ctx context.Context, name string, args ...string) error

// Client runs tmux commands against the local server.
type Client struct {
	binary      string
	exec        CommandExecutor
	interactive InteractiveRunner
	timeout     time.Duration
	logger      *logging.ScopedLogger
}

// NewClient creates a Client for the given tmux binary.
func NewClient(binary string, logger *logging.ScopedLogger) *Client {
	return NewClientWithExecutor(binary, defaultExecutor, defaultInteractive, logger)
}

// NewClientWithExecutor creates a Client with custom runners (for testing).
func NewClientWithExecutor(binary string, exec CommandExecutor, interactive InteractiveRunner, logger *logging.ScopedLogger) *Client {
	if binary == "" {
		binary = "tmux"
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		binary:      binary,
		exec:        exec,
		interactive: interactive,
		logger:      logger,
	}
}

// SetTimeout bounds every non-interactive command. Zero disables the bound.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Binary returns the tmux executable name or path.
func (c *Client) Binary() string {
	return c.binary
}

// defaultExecutor runs commands using os/exec. Output on stderr is an error
// even when the exit status is zero.
func defaultExecutor(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	msg := strings.TrimSpace(stderr.String())
	if err != nil {
		if msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	if msg != "" {
		return "", errors.New(msg)
	}

	return stdout.String(), nil
}

// defaultInteractive hands the terminal to the command until it exits.
func defaultInteractive(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// run executes a tmux subcommand and classifies failures.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("running tmux", "args", args)
	output, err := c.exec(ctx, c.binary, args...)
	if err != nil {
		return "", c.wrapError(err, args)
	}
	return output, nil
}

func (c *Client) wrapError(err error, args []string) error {
	if errors.Is(err, ErrBinaryMissing) {
		return err
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrBinaryMissing, c.binary)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrSession, c.binary, args[0], err)
}

// Version runs "tmux -V".
func (c *Client) Version(ctx context.Context) (string, error) {
	output, err := c.run(ctx, "-V")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// ListSessions returns the live sessions. No running server means no sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	output, err := c.run(ctx, "list-sessions", "-F", listSessionsFormat)
	if err != nil {
		if isNoServer(err) {
			return []Session{}, nil
		}
		return nil, err
	}
	return ParseListSessions(output)
}

func isNoServer(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to")
}

// NewSession creates a detached session in dir running program. A non-empty
// programArgs is passed to the program with "-c", which vim and nvim run as a
// command after startup.
func (c *Client) NewSession(ctx context.Context, name, dir, program, programArgs string) error {
	args := []string{"new-session", "-d", "-c", dir, "-s", name}
	if program != "" {
		args = append(args, program)
		if programArgs != "" {
			args = append(args, "-c", programArgs)
		}
	}
	_, err := c.run(ctx, args...)
	return err
}

// SwitchClient moves the current client to the named session.
func (c *Client) SwitchClient(ctx context.Context, name string) error {
	_, err := c.run(ctx, "switch-client", "-t", name)
	return err
}

// KillSession destroys a tmux session.
func (c *Client) KillSession(ctx context.Context, name string) error {
	_, err := c.run(ctx, "kill-session", "-t", name)
	return err
}

// AttachSession attaches the caller's terminal to the named session and
// blocks until the client detaches.
func (c *Client) AttachSession(ctx context.Context, name string) error {
	c.logger.Debug("attaching", "session", name)
	if err := c.interactive(ctx, c.binary, "attach-session", "-t", name); err != nil {
		return c.wrapError(err, []string{"attach-session"})
	}
	return nil
}
