// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"tmuxdir/internal/discovery"
)

// RegisterDirsCommands registers the dirs command group commands.
func RegisterDirsCommands(group *Group, runner *Runner) {
	group.AddCommand(&Command{
		Name:    "add",
		Summary: "Bookmark the projects at or below a directory",
		Usage:   "Usage: tmuxdir dirs add <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return usageError("tmuxdir dirs add <path>")
			}
			path, err := ResolvePath(args[0])
			if err != nil {
				return err
			}
			return runner.Run(func(_ context.Context, env *Env) error {
				added, err := env.Manager.Add(path)
				if err != nil {
					return err
				}
				if len(added) == 0 {
					fmt.Fprintf(runner.stdout(), "No projects found under %s.\n", path)
					return nil
				}
				printLines(runner.stdout(), added)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "ignore",
		Summary: "Hide a directory from project listings",
		Usage:   "Usage: tmuxdir dirs ignore <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return usageError("tmuxdir dirs ignore <path>")
			}
			path, err := ResolvePath(args[0])
			if err != nil {
				return err
			}
			return runner.Run(func(_ context.Context, env *Env) error {
				if _, err := env.Manager.Ignore(path); err != nil {
					return err
				}
				fmt.Fprintf(runner.stdout(), "Ignored %s.\n", path)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List visible projects",
		Usage:   "Usage: tmuxdir dirs list [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("dirs list", flag.ContinueOnError)
			asJSON := fs.Bool("json", false, "print JSON")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
				return usageError("tmuxdir dirs list [--json]")
			}
			return runner.Run(func(_ context.Context, env *Env) error {
				dirs, err := env.Manager.ListDirs()
				if err != nil {
					// Roots that scanned fine are still listed.
					env.Logs.For("cli").Warn("some roots could not be scanned", "error", err)
				}
				if *asJSON {
					return printJSON(runner.stdout(), dirs)
				}
				printLines(runner.stdout(), dirs)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "added",
		Summary: "List bookmarked directories",
		Usage:   "Usage: tmuxdir dirs added",
		Run: func(args []string) error {
			return runner.Run(func(_ context.Context, env *Env) error {
				printLines(runner.stdout(), env.Manager.ListAdded())
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "ignored",
		Summary: "List ignored directories",
		Usage:   "Usage: tmuxdir dirs ignored",
		Run: func(args []string) error {
			return runner.Run(func(_ context.Context, env *Env) error {
				printLines(runner.stdout(), env.Manager.ListIgnored())
				return nil
			})
		},
	})

	group.AddCommand(clearCommand(runner, "clear-added", "bookmark",
		func(env *Env, path string) (bool, error) { return env.Manager.ClearAdded(path) },
		func(env *Env) (bool, error) { return env.Manager.ClearAddedAll() },
	))

	group.AddCommand(clearCommand(runner, "clear-ignored", "ignored entry",
		func(env *Env, path string) (bool, error) { return env.Manager.ClearIgnored(path) },
		func(env *Env) (bool, error) { return env.Manager.ClearIgnoredAll() },
	))

	group.AddCommand(&Command{
		Name:    "watch",
		Summary: "Print the project list whenever it changes",
		Usage:   "Usage: tmuxdir dirs watch [-d/--debounce 500ms]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("dirs watch", flag.ContinueOnError)
			debounceStr := fs.StringP("debounce", "d", discovery.DefaultDebounce.String(), "quiet period before rescanning")
			if err := fs.Parse(args); err != nil {
				return usageError("tmuxdir dirs watch [-d/--debounce 500ms]")
			}
			debounce, err := time.ParseDuration(*debounceStr)
			if err != nil {
				return usageError(fmt.Sprintf("invalid debounce: %v", err))
			}
			return runner.Run(func(ctx context.Context, env *Env) error {
				return WatchDirs(ctx, env, debounce, runner.stdout())
			})
		},
	})
}

// clearCommand builds "clear-added" and "clear-ignored", which take either a
// path or --all.
func clearCommand(runner *Runner, name, what string, one func(*Env, string) (bool, error), all func(*Env) (bool, error)) *Command {
	usage := fmt.Sprintf("tmuxdir dirs %s <path> | --all", name)
	return &Command{
		Name:    name,
		Summary: fmt.Sprintf("Remove one %s, or all with --all", what),
		Usage:   "Usage: " + usage,
		Run: func(args []string) error {
			fs := flag.NewFlagSet("dirs "+name, flag.ContinueOnError)
			clearAll := fs.Bool("all", false, "remove every entry")
			if err := fs.Parse(args); err != nil {
				return usageError(usage)
			}
			if *clearAll == (fs.NArg() == 1) || fs.NArg() > 1 {
				return usageError(usage)
			}

			if *clearAll {
				return runner.Run(func(_ context.Context, env *Env) error {
					if _, err := all(env); err != nil {
						return err
					}
					fmt.Fprintln(runner.stdout(), "Cleared.")
					return nil
				})
			}

			path, err := ResolvePath(fs.Arg(0))
			if err != nil {
				return err
			}
			return runner.Run(func(_ context.Context, env *Env) error {
				removed, err := one(env, path)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(runner.stdout(), "Nothing to remove for %s.\n", path)
					return nil
				}
				fmt.Fprintf(runner.stdout(), "Removed %s.\n", path)
				return nil
			})
		},
	}
}
