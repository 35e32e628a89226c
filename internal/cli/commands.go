// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, runner *Runner) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "check",
		Summary: "Verify that tmux can be run",
		Usage:   "Usage: tmuxdir check",
		Run: func(args []string) error {
			return runner.Run(func(ctx context.Context, env *Env) error {
				if _, err := env.Manager.CheckBinaryPresent(ctx); err != nil {
					return err
				}
				fmt.Fprintf(runner.stdout(), "tmux found (%s)\n", env.Config.TmuxBinary)
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: tmuxdir version",
		Run: func(args []string) error {
			fmt.Fprintln(runner.stdout(), version)
			return nil
		},
	})

	dirsGroup := app.AddGroup("dirs", "Bookmark, ignore and list project directories")
	RegisterDirsCommands(dirsGroup, runner)

	sessionGroup := app.AddGroup("session", "Open, list and kill project sessions")
	RegisterSessionCommands(sessionGroup, runner)

	return app
}

// printLines writes one entry per line.
func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
