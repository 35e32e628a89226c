// pattern: Imperative Shell
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	stateFileName = "dirs.yaml"
	lockFileName  = "dirs.lock"
)

// ErrStorage is returned when persisted state cannot be read or written.
var ErrStorage = errors.New("storage error")

// State is the pair of directory sets persisted together.
// Both maps use the path as key and value.
type State struct {
	Dirs        map[string]string `yaml:"dirs"`
	IgnoredDirs map[string]string `yaml:"ignored_dirs"`
}

// NewState returns a State with both sets allocated.
func NewState() State {
	return State{
		Dirs:        make(map[string]string),
		IgnoredDirs: make(map[string]string),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := NewState()
	for k, v := range s.Dirs {
		out.Dirs[k] = v
	}
	for k, v := range s.IgnoredDirs {
		out.IgnoredDirs[k] = v
	}
	return out
}

// Store reads and writes State under a directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the state file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load reads the state file. A missing file yields two empty sets.
func (s *Store) Load() (State, error) {
	state := NewState()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("%w: reading %s: %v", ErrStorage, s.Path(), err)
	}

	if err := yaml.Unmarshal(data, &state); err != nil {
		return NewState(), fmt.Errorf("%w: parsing %s: %v", ErrStorage, s.Path(), err)
	}

	// A key present with no entries decodes to nil.
	if state.Dirs == nil {
		state.Dirs = make(map[string]string)
	}
	if state.IgnoredDirs == nil {
		state.IgnoredDirs = make(map[string]string)
	}
	return state, nil
}

// Save writes both sets in one file replacement while holding the lock file,
// so concurrent tmuxdir processes never interleave writes.
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorage, s.dir, err)
	}

	fl := flock.New(filepath.Join(s.dir, lockFileName))
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("%w: failed to acquire lock: %v", ErrStorage, err)
	}
	defer func() { _ = fl.Unlock() }()

	if state.Dirs == nil {
		state.Dirs = map[string]string{}
	}
	if state.IgnoredDirs == nil {
		state.IgnoredDirs = map[string]string{}
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding state: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, stateFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", ErrStorage, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", ErrStorage, tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replacing %s: %v", ErrStorage, s.Path(), err)
	}
	return nil
}
