// pattern: Imperative Shell
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tmuxdir/internal/config"
	"tmuxdir/internal/discovery"
	"tmuxdir/internal/logging"
	"tmuxdir/internal/manager"
	"tmuxdir/internal/registry"
	"tmuxdir/internal/store"
	"tmuxdir/internal/tmux"
)

// logFileName is written inside the state directory.
const logFileName = "tmuxdir.log"

// Env holds the collaborators shared by every command and the picker.
type Env struct {
	Config  config.Config
	Manager *manager.Manager
	Logs    logging.LoggerProvider

	// Entries streams log entries for the picker's status line. May be nil.
	Entries <-chan logging.LogEntry

	closers []io.Closer
}

// Close releases resources held by the environment.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// EnvOptions controls how NewEnv builds the environment.
type EnvOptions struct {
	ConfigDir string    // Overrides the config directory when set
	Verbose   bool      // Mirror logs to Console
	Console   io.Writer // Defaults to os.Stderr
	Picker    bool      // Enable the in-process log channel
}

// LoadConfig loads config.yaml from configDir or the default location.
func LoadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// NewEnv loads configuration and wires logging, storage, discovery and tmux
// into a Manager.
func NewEnv(opts EnvOptions) (*Env, error) {
	cfg, err := LoadConfig(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	timeout, _ := cfg.Timeout()

	stateDir := cfg.ResolveStateDir()

	logCfg := logging.Config{
		FilePath: filepath.Join(stateDir, logFileName),
		Level:    cfg.LogLevel,
	}
	if opts.Verbose {
		logCfg.Console = opts.Console
		if logCfg.Console == nil {
			logCfg.Console = os.Stderr
		}
	}
	if opts.Picker {
		logCfg.ChannelBufSize = 100
	}
	logManager, err := logging.NewManager(logCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}

	scanner := discovery.NewScanner(discovery.Options{
		Markers:  cfg.RootMarkers,
		MaxDepth: cfg.MaxDepth,
		Eager:    cfg.EagerMode,
	}, logManager.For("discovery"))

	reg := registry.New(registry.Options{
		Store:     store.New(stateDir),
		Finder:    scanner,
		BaseDirs:  cfg.ResolveBaseDirs(),
		Markers:   cfg.RootMarkers,
		MaxDepth:  cfg.MaxDepth,
		EagerMode: cfg.EagerMode,
		Logger:    logManager.For("registry"),
	})

	client := tmux.NewClient(cfg.TmuxBinary, logManager.For("tmux"))
	client.SetTimeout(timeout)

	mgr := manager.New(manager.Options{
		Registry:   reg,
		Controller: tmux.NewController(client, logManager.For("tmux")),
		Editor:     cfg.DetectedEditor(),
		EditorArgs: cfg.ResolvedEditorArgs(),
		Logger:     logManager.For("manager"),
	})

	return &Env{
		Config:  cfg,
		Manager: mgr,
		Logs:    logManager,
		Entries: logManager.Entries(),
		closers: []io.Closer{logManager},
	}, nil
}
