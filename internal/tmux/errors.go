// pattern: Functional Core

package tmux

import (
	"errors"
	"fmt"
)

var (
	// ErrBinaryMissing means the tmux executable could not be found.
	ErrBinaryMissing = errors.New("tmux binary not found")
	// ErrSession is returned when a tmux command fails.
	ErrSession = errors.New("tmux session error")
	// ErrParse is returned when list-sessions output has an unexpected shape.
	ErrParse = errors.New("unexpected tmux output")
	// ErrNotAttached is returned when switching clients from outside tmux.
	ErrNotAttached = fmt.Errorf("%w: not running inside tmux, attach to a session first", ErrSession)
)
