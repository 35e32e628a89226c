// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"tmuxdir/internal/cli"
	"tmuxdir/internal/discovery"
	"tmuxdir/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/tmuxdir)")
	verbose := flag.BoolP("verbose", "v", false, "mirror log output to stderr")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, cli.NewRunner(cli.EnvOptions{}))
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	runner := cli.NewRunner(envOptions(*configDir, *verbose, flag.Args()))
	app := cli.BuildApp(version, runner)

	launch := app.Execute(flag.Args())
	if launch {
		if err := runPicker(runner); err != nil {
			_ = runner.Close()
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if hint := cli.Describe(err); hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
			}
			os.Exit(cli.ExitCode(err))
		}
	}
	_ = runner.Close()
}

// envOptions enables the log channel when the picker will run. Console
// logging would draw over the alternate screen, so it only applies to
// subcommands.
func envOptions(configDir string, verbose bool, args []string) cli.EnvOptions {
	picker := len(args) == 0
	return cli.EnvOptions{
		ConfigDir: configDir,
		Verbose:   verbose && !picker,
		Picker:    picker,
	}
}

// runPicker launches the interactive picker. Outside tmux the chosen session
// is attached once the picker has released the terminal.
func runPicker(runner *cli.Runner) error {
	return runner.Run(func(ctx context.Context, env *cli.Env) error {
		logger := env.Logs.For("tui")
		logger.Info("picker starting")

		model := tui.NewModel(tui.Options{
			Backend: env.Manager,
			Theme:   env.Config.Theme,
			Logger:  logger,
			Entries: env.Entries,
		})
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

		watchCtx, stopWatching := context.WithCancel(ctx)
		defer stopWatching()

		watcher, err := discovery.NewWatcher(env.Manager.Roots(), env.Config.MaxDepth, discovery.DefaultDebounce, env.Logs.For("discovery"))
		if err != nil {
			logger.Warn("project roots are not watched", "error", err)
		} else {
			defer func() { _ = watcher.Close() }()
			go func() {
				_ = watcher.Run(watchCtx, func() { p.Send(tui.RescanMsg{}) })
			}()
		}

		final, err := p.Run()
		stopWatching()
		if err != nil {
			logger.Error("picker exited with error", "error", err)
			return fmt.Errorf("running picker: %w", err)
		}

		m, ok := final.(tui.Model)
		if !ok || m.AttachTarget() == "" {
			logger.Info("picker stopped")
			return nil
		}
		logger.Info("attaching after picker", "session", m.AttachTarget())
		return env.Manager.Attach(ctx, m.AttachTarget())
	})
}
