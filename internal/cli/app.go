// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// ErrUsage is returned when a command is invoked with the wrong arguments.
var ErrUsage = errors.New("usage")

// usageError reports a command's usage line.
func usageError(usage string) error {
	return fmt.Errorf("%w: %s", ErrUsage, usage)
}

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App represents the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	version  string

	// ExitFunc is called with a non-zero code when a command fails.
	// Defaults to os.Exit.
	ExitFunc func(int)

	// Stderr receives help and error output. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		ExitFunc: os.Exit,
		Stderr:   os.Stderr,
	}
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command.
// Returns true if the picker should be launched, false otherwise.
func (a *App) Execute(args []string) bool {
	// No args: launch the picker
	if len(args) == 0 {
		return true
	}

	cmdName := args[0]

	if cmd, ok := a.commands[cmdName]; ok {
		if wantsHelp(args[1:]) {
			fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
			return false
		}
		a.run(cmd, args[1:])
		return false
	}

	if group, ok := a.groups[cmdName]; ok {
		// Group with no subcommand, "help", or --help/-h
		if len(args) < 2 || args[1] == "help" || args[1] == "--help" || args[1] == "-h" {
			group.PrintHelp(a.Stderr)
			return false
		}

		if cmd, ok := group.Commands[args[1]]; ok {
			if wantsHelp(args[2:]) {
				fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
				return false
			}
			a.run(cmd, args[2:])
			return false
		}

		// Unknown command in group
		group.PrintHelp(a.Stderr)
		a.ExitFunc(2)
		return false
	}

	// Unknown command
	a.PrintHelp(a.Stderr)
	a.ExitFunc(2)
	return false
}

// run executes cmd and turns a returned error into an exit code.
func (a *App) run(cmd *Command, args []string) {
	if err := cmd.Run(args); err != nil {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		if hint := Describe(err); hint != "" {
			fmt.Fprintf(a.Stderr, "hint: %s\n", hint)
		}
		a.ExitFunc(ExitCode(err))
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: tmuxdir [options] [command]\n\n")
	fmt.Fprintf(w, "Commands:\n")

	for _, name := range []string{"check", "version"} {
		if cmd, ok := a.commands[name]; ok {
			fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
		}
	}

	fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Launch the interactive project picker")

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range []string{"dirs", "session"} {
			if group, ok := a.groups[name]; ok {
				fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
			}
		}
	}

	fmt.Fprintf(w, "\nUse \"tmuxdir <group> help\" for group details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: tmuxdir %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	// Sort command names for deterministic output
	names := slices.Sorted(maps.Keys(g.Commands))
	for _, name := range names {
		cmd := g.Commands[name]
		fmt.Fprintf(w, "  %-14s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nUse \"tmuxdir %s <command> --help\" for command details.\n", g.Name)
}
