// pattern: Imperative Shell

package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"tmuxdir/internal/logging"
)

// Controller tracks live sessions and drives their lifecycle. The cache is
// rebuilt from tmux on every sync, since sessions can change outside tmuxdir.
type Controller struct {
	client *Client
	getenv func(string) string
	logger *logging.ScopedLogger

	mu       sync.Mutex
	sessions map[string]Session
	order    []string
}

// NewController creates a Controller using the process environment.
func NewController(client *Client, logger *logging.ScopedLogger) *Controller {
	return NewControllerWithEnv(client, os.Getenv, logger)
}

// NewControllerWithEnv creates a Controller with an injectable environment lookup.
func NewControllerWithEnv(client *Client, getenv func(string) string, logger *logging.ScopedLogger) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{
		client:   client,
		getenv:   getenv,
		logger:   logger,
		sessions: make(map[string]Session),
	}
}

// SyncSessions replaces the cache with tmux's current session list. On failure
// the previous cache is kept.
func (c *Controller) SyncSessions(ctx context.Context) error {
	sessions, err := c.client.ListSessions(ctx)
	if err != nil {
		if errors.Is(err, ErrParse) {
			c.logger.Error("unreadable session list, keeping cached sessions", "error", err)
		}
		return err
	}

	cache := make(map[string]Session, len(sessions))
	order := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if _, dup := cache[s.Name]; !dup {
			order = append(order, s.Name)
		}
		cache[s.Name] = s
	}

	c.mu.Lock()
	changed := !slices.Equal(c.order, order)
	c.sessions = cache
	c.order = order
	c.mu.Unlock()

	if changed {
		c.logger.Debug("session list changed", "count", len(order))
	}
	return nil
}

// ListSessions syncs and returns the live sessions in tmux order.
func (c *Controller) ListSessions(ctx context.Context) ([]Session, error) {
	if err := c.SyncSessions(ctx); err != nil {
		return nil, err
	}
	return c.Cached(), nil
}

// Cached returns the sessions from the last successful sync.
func (c *Controller) Cached() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Session, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.sessions[name])
	}
	return out
}

// ExistsSession syncs and reports whether a session with name is live.
func (c *Controller) ExistsSession(ctx context.Context, name string) (bool, error) {
	if err := c.SyncSessions(ctx); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[name]
	return ok, nil
}

// IsAttached reports whether this process runs inside a tmux client.
func (c *Controller) IsAttached() bool {
	return c.getenv("TMUX") != ""
}

// CreateSession starts a detached session in startDir running program.
func (c *Controller) CreateSession(ctx context.Context, name, program, startDir, programArgs string) error {
	if err := c.client.NewSession(ctx, name, startDir, program, programArgs); err != nil {
		c.logger.Error("failed to create session", "session", name, "dir", startDir, "error", err)
		return err
	}
	c.logger.Info("session created", "session", name, "dir", startDir, "program", program)
	return nil
}

// SwitchSession moves the current tmux client to name.
func (c *Controller) SwitchSession(ctx context.Context, name string) error {
	if !c.IsAttached() {
		return ErrNotAttached
	}
	if err := c.client.SwitchClient(ctx, name); err != nil {
		return err
	}
	c.logger.Info("switched session", "session", name)
	return nil
}

// SwitchOrCreate creates the session when it is absent, then switches to it
// from inside tmux or attaches to it from outside. Calling it again for the
// same name reuses the existing session.
func (c *Controller) SwitchOrCreate(ctx context.Context, name, startDir, program, programArgs string) error {
	exists, err := c.ExistsSession(ctx, name)
	if err != nil {
		return fmt.Errorf("checking session %q: %w", name, err)
	}
	if !exists {
		if err := c.CreateSession(ctx, name, program, startDir, programArgs); err != nil {
			return err
		}
	}

	if c.IsAttached() {
		return c.SwitchSession(ctx, name)
	}
	return c.Attach(ctx, name)
}

// Attach attaches the caller's terminal to name. Used from outside tmux.
func (c *Controller) Attach(ctx context.Context, name string) error {
	return c.client.AttachSession(ctx, name)
}

// KillSession destroys name. A missing session is reported by tmux.
func (c *Controller) KillSession(ctx context.Context, name string) error {
	if err := c.client.KillSession(ctx, name); err != nil {
		return err
	}
	c.logger.Info("session killed", "session", name)
	return nil
}

// CheckBinaryPresent verifies tmux can be executed.
func (c *Controller) CheckBinaryPresent(ctx context.Context) error {
	version, err := c.client.Version(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("tmux found", "version", version)
	return nil
}
