package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StateDirEnv overrides where bookmarked and ignored directories are stored.
const StateDirEnv = "TMUXDIR_CONFIG_FOLDER"

const (
	DefaultMaxDepth   = 3
	DefaultEditorArgs = "e ."
	DefaultTmuxBinary = "tmux"
	DefaultTheme      = "mocha"
)

type Config struct {
	RootMarkers    []string `yaml:"root_markers"`
	BaseDirs       []string `yaml:"base_dirs"`
	EagerMode      bool     `yaml:"eager_mode"`
	MaxDepth       int      `yaml:"max_depth"`
	StateDir       string   `yaml:"state_dir"`
	Editor         string   `yaml:"editor"`
	EditorArgs     *string  `yaml:"editor_args"`
	TmuxBinary     string   `yaml:"tmux_bin"`
	Theme          string   `yaml:"theme"`
	LogLevel       string   `yaml:"log_level"`
	CommandTimeout string   `yaml:"command_timeout"`
}

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

// GetenvFunc is the function signature for reading environment variables.
type GetenvFunc func(key string) string

func DefaultConfig() Config {
	return Config{
		RootMarkers: []string{".git"},
		MaxDepth:    DefaultMaxDepth,
		TmuxBinary:  DefaultTmuxBinary,
		Theme:       DefaultTheme,
		LogLevel:    "info",
	}
}

// Load reads config.yaml from the default config directory.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(DefaultDir(), "config.yaml"))
}

// LoadFromDir reads config.yaml from dir.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom reads the given file. A missing file yields the defaults.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills keys that were present in the file but left empty.
func (c *Config) applyDefaults() {
	if len(c.RootMarkers) == 0 {
		c.RootMarkers = []string{".git"}
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.TmuxBinary == "" {
		c.TmuxBinary = DefaultTmuxBinary
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	for _, m := range c.RootMarkers {
		if m == "" || strings.ContainsRune(m, filepath.Separator) {
			return fmt.Errorf("invalid root marker %q: must be a single file or directory name", m)
		}
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout returns the parsed command_timeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid command_timeout %q: %w", c.CommandTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("command_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// ResolveBaseDirs expands "~" in the configured base directories.
func (c *Config) ResolveBaseDirs() []string {
	resolved := make([]string, 0, len(c.BaseDirs))
	for _, d := range c.BaseDirs {
		resolved = append(resolved, ExpandHome(d))
	}
	return resolved
}

// ResolveStateDir returns the directory holding persisted state.
// Precedence: $TMUXDIR_CONFIG_FOLDER, state_dir, the default config directory.
func (c *Config) ResolveStateDir() string {
	return c.ResolveStateDirWith(os.Getenv)
}

// ResolveStateDirWith is ResolveStateDir with an injectable environment lookup.
func (c *Config) ResolveStateDirWith(getenv GetenvFunc) string {
	if dir := getenv(StateDirEnv); dir != "" {
		return ExpandHome(dir)
	}
	if c.StateDir != "" {
		return ExpandHome(c.StateDir)
	}
	return DefaultDir()
}

// ResolvedEditorArgs returns the command run inside the editor on start.
// An explicit empty string disables it.
func (c *Config) ResolvedEditorArgs() string {
	if c.EditorArgs == nil {
		return DefaultEditorArgs
	}
	return *c.EditorArgs
}

// DetectedEditor returns the configured editor or auto-detects it.
func (c *Config) DetectedEditor() string {
	return c.DetectedEditorWith(exec.LookPath)
}

// DetectedEditorWith returns the configured editor or the first of nvim, vim
// found by lookPath.
func (c *Config) DetectedEditorWith(lookPath LookPathFunc) string {
	if c.Editor != "" {
		return c.Editor
	}
	for _, candidate := range []string{"nvim", "vim"} {
		if _, err := lookPath(candidate); err == nil {
			return candidate
		}
	}
	return "vim"
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultDir returns $XDG_CONFIG_HOME/tmuxdir or ~/.config/tmuxdir.
func DefaultDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tmuxdir")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "tmuxdir")
	}

	return filepath.Join(home, ".config", "tmuxdir")
}
