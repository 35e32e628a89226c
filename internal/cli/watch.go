// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"tmuxdir/internal/discovery"
)

// WatchDirs prints the project list, then prints additions and removals each
// time the scan roots change. It blocks until ctx is cancelled.
func WatchDirs(ctx context.Context, env *Env, debounce time.Duration, w io.Writer) error {
	logger := env.Logs.For("cli")

	watcher, err := discovery.NewWatcher(env.Manager.Roots(), env.Config.MaxDepth, debounce, env.Logs.For("discovery"))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	current, err := env.Manager.ListDirs()
	if err != nil {
		logger.Warn("some roots could not be scanned", "error", err)
	}
	printLines(w, current)

	changes := make(chan struct{}, 1)
	go func() {
		_ = watcher.Run(ctx, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			next, err := env.Manager.ListDirs()
			if err != nil {
				logger.Warn("some roots could not be scanned", "error", err)
			}
			added, removed := diffDirs(current, next)
			for _, d := range added {
				fmt.Fprintf(w, "+ %s\n", d)
			}
			for _, d := range removed {
				fmt.Fprintf(w, "- %s\n", d)
			}
			current = next
		}
	}
}

// diffDirs returns entries only in next and entries only in prev. Both inputs
// are sorted.
func diffDirs(prev, next []string) (added, removed []string) {
	for _, d := range next {
		if _, found := slices.BinarySearch(prev, d); !found {
			added = append(added, d)
		}
	}
	for _, d := range prev {
		if _, found := slices.BinarySearch(next, d); !found {
			removed = append(removed, d)
		}
	}
	return added, removed
}
