// pattern: Functional Core

package tmux

import (
	"cmp"
	"slices"
	"time"
)

// createdLayout is how session creation times are shown.
const createdLayout = "2006-01-02 15:04:05"

// Session is one live tmux session as reported by list-sessions.
type Session struct {
	Name         string
	CreatedEpoch int64
	CreatedAt    time.Time
	Attached     bool
	Clients      int // Number of attached clients
}

// IsActive returns true if the session has an attached client.
func (s Session) IsActive() bool {
	return s.Attached
}

// Age returns how long the session has been running.
func (s Session) Age() time.Duration {
	return time.Since(s.CreatedAt)
}

// CreatedTime returns the creation time in local time for display.
func (s Session) CreatedTime() string {
	return s.CreatedAt.Local().Format(createdLayout)
}

// SortByCreatedDesc orders sessions newest first, breaking ties by name.
func SortByCreatedDesc(sessions []Session) {
	slices.SortStableFunc(sessions, func(a, b Session) int {
		if c := cmp.Compare(b.CreatedEpoch, a.CreatedEpoch); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
