// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"tmuxdir/internal/tmux"
)

// sessionJSON is the --json shape of a listed session.
type sessionJSON struct {
	Name     string `json:"name"`
	Created  int64  `json:"created"`
	Attached bool   `json:"attached"`
}

// RegisterSessionCommands registers the session command group commands.
func RegisterSessionCommands(group *Group, runner *Runner) {
	group.AddCommand(&Command{
		Name:    "open",
		Summary: "Switch to the session for a directory, creating it if needed",
		Usage:   "Usage: tmuxdir session open <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return usageError("tmuxdir session open <path>")
			}
			path, err := ResolvePath(args[0])
			if err != nil {
				return err
			}
			return runner.Run(func(ctx context.Context, env *Env) error {
				_, err := env.Manager.OpenOrCreateSessionFor(ctx, path)
				return err
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List live tmux sessions, newest first",
		Usage:   "Usage: tmuxdir session list [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("session list", flag.ContinueOnError)
			asJSON := fs.Bool("json", false, "print JSON")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
				return usageError("tmuxdir session list [--json]")
			}
			return runner.Run(func(ctx context.Context, env *Env) error {
				sessions, err := env.Manager.ListSessions(ctx)
				if err != nil {
					return err
				}
				tmux.SortByCreatedDesc(sessions)

				if *asJSON {
					out := make([]sessionJSON, 0, len(sessions))
					for _, s := range sessions {
						out = append(out, sessionJSON{Name: s.Name, Created: s.CreatedEpoch, Attached: s.Attached})
					}
					return printJSON(runner.stdout(), out)
				}

				tw := tabwriter.NewWriter(runner.stdout(), 0, 4, 2, ' ', 0)
				for _, s := range sessions {
					marker := ""
					if s.Attached {
						marker = "(attached)"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.CreatedTime(), marker)
				}
				return tw.Flush()
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "kill",
		Summary: "Kill a session by name",
		Usage:   "Usage: tmuxdir session kill <name>",
		Run: func(args []string) error {
			if len(args) != 1 || args[0] == "" {
				return usageError("tmuxdir session kill <name>")
			}
			return runner.Run(func(ctx context.Context, env *Env) error {
				if err := env.Manager.DeleteSession(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(runner.stdout(), "Killed %s.\n", args[0])
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "name",
		Summary: "Print the session name derived for a directory",
		Usage:   "Usage: tmuxdir session name <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return usageError("tmuxdir session name <path>")
			}
			path, err := ResolvePath(args[0])
			if err != nil {
				return err
			}
			return runner.Run(func(_ context.Context, env *Env) error {
				fmt.Fprintln(runner.stdout(), env.Manager.DirToSessionName(path))
				return nil
			})
		},
	})
}
