package registry

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tmuxdir/internal/discovery"
	"tmuxdir/internal/logging"
	"tmuxdir/internal/store"
)

// failingStore records saves and fails them on demand.
type failingStore struct {
	state   store.State
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load() (store.State, error) {
	if f.loadErr != nil {
		return store.State{}, f.loadErr
	}
	return f.state.Clone(), nil
}

func (f *failingStore) Save(s store.State) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = s.Clone()
	return nil
}

func newProject(t *testing.T, root string, rel ...string) string {
	t.Helper()
	p := filepath.Join(append([]string{root}, rel...)...)
	if err := os.MkdirAll(filepath.Join(p, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func newRegistry(t *testing.T, st StateStore, baseDirs ...string) *Registry {
	t.Helper()
	return New(Options{
		Store:    st,
		Finder:   discovery.NewScanner(discovery.Options{}, nil),
		BaseDirs: baseDirs,
		Markers:  []string{".git"},
		MaxDepth: 3,
	})
}

func TestScenario_AddIgnoreList(t *testing.T) {
	tmp := t.TempDir()
	proj := newProject(t, tmp, "proj")
	st := store.New(filepath.Join(tmp, "state"))

	r := newRegistry(t, st)

	added, err := r.Add(proj)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !slices.Equal(added, []string{proj}) {
		t.Errorf("Add() = %v, want [%s]", added, proj)
	}

	saved, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.Dirs[proj] != proj {
		t.Errorf("persisted Dirs = %v, want %s", saved.Dirs, proj)
	}

	if ok, err := r.Ignore(proj); !ok || err != nil {
		t.Fatalf("Ignore() = %v, %v", ok, err)
	}

	dirs, err := r.ListDirs()
	if err != nil {
		t.Fatalf("ListDirs() error = %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("ListDirs() = %v, want empty", dirs)
	}

	// The bookmark survives the ignore.
	if !slices.Equal(r.ListAdded(), []string{proj}) {
		t.Errorf("ListAdded() = %v, want bookmark kept", r.ListAdded())
	}
}

func TestAdd_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	newProject(t, tmp, "code", "a")
	newProject(t, tmp, "code", "b")
	fs := &failingStore{state: store.NewState()}
	r := newRegistry(t, fs)

	first, err := r.Add(filepath.Join(tmp, "code"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	savesAfterFirst := fs.saves

	second, err := r.Add(filepath.Join(tmp, "code"))
	if err != nil {
		t.Fatalf("second Add() error = %v", err)
	}

	if !slices.Equal(first, second) {
		t.Errorf("second Add() = %v, want %v", second, first)
	}
	if len(r.ListAdded()) != 2 {
		t.Errorf("ListAdded() = %v, want 2 entries", r.ListAdded())
	}
	if savesAfterFirst != 2 {
		t.Errorf("first Add saved %d times, want once per new entry (2)", savesAfterFirst)
	}
	if fs.saves != savesAfterFirst {
		t.Error("second Add should not save")
	}
}

func TestAdd_IgnoredReturnsEmpty(t *testing.T) {
	tmp := t.TempDir()
	proj := newProject(t, tmp, "proj")
	r := newRegistry(t, &failingStore{state: store.NewState()})

	if _, err := r.Ignore(proj); err != nil {
		t.Fatal(err)
	}
	got, err := r.Add(proj)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Add() = %#v, want empty non-nil slice", got)
	}
	if len(r.ListAdded()) != 0 {
		t.Errorf("ListAdded() = %v, want empty", r.ListAdded())
	}
}

func TestAdd_NoProjects(t *testing.T) {
	fs := &failingStore{state: store.NewState()}
	r := newRegistry(t, fs)

	got, err := r.Add(t.TempDir())
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Add() = %#v, want empty", got)
	}
	if fs.saves != 0 {
		t.Errorf("saves = %d, want 0", fs.saves)
	}
}

func TestClearAddedDir(t *testing.T) {
	tmp := t.TempDir()
	proj := newProject(t, tmp, "proj")
	fs := &failingStore{state: store.NewState()}
	r := newRegistry(t, fs)

	ok, err := r.ClearAddedDir(proj)
	if ok || err != nil {
		t.Errorf("ClearAddedDir(never added) = %v, %v; want false, nil", ok, err)
	}
	if fs.saves != 0 {
		t.Error("clearing a missing entry should not save")
	}

	if _, err := r.Add(proj); err != nil {
		t.Fatal(err)
	}
	ok, err = r.ClearAddedDir(proj)
	if !ok || err != nil {
		t.Errorf("ClearAddedDir() = %v, %v; want true, nil", ok, err)
	}
	if len(fs.state.Dirs) != 0 {
		t.Errorf("persisted Dirs = %v, want empty", fs.state.Dirs)
	}
}

func TestClearIgnored(t *testing.T) {
	fs := &failingStore{state: store.NewState()}
	r := newRegistry(t, fs)
	a, b := t.TempDir(), t.TempDir()

	for _, d := range []string{a, b, a} {
		if _, err := r.Ignore(d); err != nil {
			t.Fatal(err)
		}
	}
	if !slices.Equal(r.ListIgnored(), sorted(a, b)) {
		t.Errorf("ListIgnored() = %v", r.ListIgnored())
	}

	if ok, _ := r.ClearIgnoredDir(a); !ok {
		t.Error("ClearIgnoredDir(a) = false, want true")
	}
	if ok, _ := r.ClearIgnoredDir(a); ok {
		t.Error("second ClearIgnoredDir(a) = true, want false")
	}

	saves := fs.saves
	if ok, err := r.ClearIgnoredDirs(); !ok || err != nil {
		t.Errorf("ClearIgnoredDirs() = %v, %v", ok, err)
	}
	if ok, err := r.ClearIgnoredDirs(); !ok || err != nil {
		t.Errorf("ClearIgnoredDirs() on empty = %v, %v", ok, err)
	}
	if fs.saves != saves+2 {
		t.Errorf("clear-all should always persist, saves went %d -> %d", saves, fs.saves)
	}
	if r.IsIgnored(b) {
		t.Error("b still ignored after ClearIgnoredDirs")
	}
}

func TestClearAddedDirs(t *testing.T) {
	tmp := t.TempDir()
	fs := &failingStore{state: store.NewState()}
	r := newRegistry(t, fs)
	if _, err := r.Add(newProject(t, tmp, "p")); err != nil {
		t.Fatal(err)
	}

	if ok, err := r.ClearAddedDirs(); !ok || err != nil {
		t.Errorf("ClearAddedDirs() = %v, %v", ok, err)
	}
	if len(r.ListAdded()) != 0 || len(fs.state.Dirs) != 0 {
		t.Error("bookmarks not cleared")
	}
}

func TestListDirs_UnionOfBaseAndBookmarks(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")
	a := newProject(t, base, "a")
	b := newProject(t, base, "b")
	extra := newProject(t, tmp, "elsewhere", "c")

	r := newRegistry(t, &failingStore{state: store.NewState()}, base)
	if _, err := r.Add(extra); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Ignore(b); err != nil {
		t.Fatal(err)
	}

	got, err := r.ListDirs()
	if err != nil {
		t.Fatalf("ListDirs() error = %v", err)
	}
	if !slices.Equal(got, sorted(a, extra)) {
		t.Errorf("ListDirs() = %v, want %v", got, sorted(a, extra))
	}
}

func TestListDirs_RootFailureIsolated(t *testing.T) {
	tmp := t.TempDir()
	good := filepath.Join(tmp, "good")
	p := newProject(t, good, "p")

	boom := errors.New("permission denied")
	finder := finderFunc(func(root string) ([]string, error) {
		if root == "/bad" {
			return nil, boom
		}
		return discovery.NewScanner(discovery.Options{}, nil).FindProjects(root, []string{".git"}, 3, false)
	})

	r := New(Options{
		Store:    &failingStore{state: store.NewState()},
		Finder:   finder,
		BaseDirs: []string{"/bad", good},
		Markers:  []string{".git"},
		MaxDepth: 3,
	})

	got, err := r.ListDirs()
	if !errors.Is(err, boom) {
		t.Errorf("ListDirs() error = %v, want %v", err, boom)
	}
	if !slices.Equal(got, []string{p}) {
		t.Errorf("ListDirs() = %v, want [%s]", got, p)
	}
}

func TestSaveFailureSurfacesStorageError(t *testing.T) {
	tmp := t.TempDir()
	proj := newProject(t, tmp, "proj")
	fs := &failingStore{state: store.NewState(), saveErr: errors.New("disk full")}
	r := newRegistry(t, fs)

	if _, err := r.Add(proj); !errors.Is(err, store.ErrStorage) {
		t.Errorf("Add() error = %v, want ErrStorage", err)
	}
	if ok, err := r.Ignore(proj); ok || !errors.Is(err, store.ErrStorage) {
		t.Errorf("Ignore() = %v, %v; want false, ErrStorage", ok, err)
	}
	if _, err := r.ClearAddedDirs(); !errors.Is(err, store.ErrStorage) {
		t.Errorf("ClearAddedDirs() error = %v, want ErrStorage", err)
	}
}

func TestNew_PrunesMissingAndResaves(t *testing.T) {
	tmp := t.TempDir()
	alive := newProject(t, tmp, "alive")
	gone := filepath.Join(tmp, "gone")

	fs := &failingStore{state: store.NewState()}
	fs.state.Dirs[alive] = alive
	fs.state.Dirs[gone] = gone
	fs.state.IgnoredDirs[gone] = gone

	lm := logging.NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	r := New(Options{Store: fs, Markers: []string{".git"}, Logger: lm.For("registry")})

	if !slices.Equal(r.ListAdded(), []string{alive}) {
		t.Errorf("ListAdded() = %v, want [%s]", r.ListAdded(), alive)
	}
	if len(r.ListIgnored()) != 0 {
		t.Errorf("ListIgnored() = %v, want empty", r.ListIgnored())
	}
	if fs.saves != 1 {
		t.Errorf("saves = %d, want 1", fs.saves)
	}
	if _, ok := fs.state.Dirs[gone]; ok {
		t.Error("pruned entry still persisted")
	}

	var pruneLogged bool
	for _, e := range lm.Drain() {
		if strings.Contains(e.Message, "pruned") {
			pruneLogged = true
		}
	}
	if !pruneLogged {
		t.Error("expected a log entry about pruning")
	}
}

func TestNew_LoadFailureStartsEmpty(t *testing.T) {
	fs := &failingStore{loadErr: store.ErrStorage}
	r := New(Options{Store: fs})

	if len(r.ListAdded()) != 0 || len(r.ListIgnored()) != 0 {
		t.Error("expected empty sets after load failure")
	}
	if fs.saves != 0 {
		t.Errorf("saves = %d, want 0", fs.saves)
	}
}

func TestRoots_Deduplicated(t *testing.T) {
	tmp := t.TempDir()
	p := newProject(t, tmp, "p")
	r := newRegistry(t, &failingStore{state: store.NewState()}, p)
	if _, err := r.Add(p); err != nil {
		t.Fatal(err)
	}
	if got := r.Roots(); !slices.Equal(got, []string{p}) {
		t.Errorf("Roots() = %v, want [%s]", got, p)
	}
}

type finderFunc func(root string) ([]string, error)

func (f finderFunc) FindProjects(root string, _ []string, _ int, _ bool) ([]string, error) {
	return f(root)
}

func sorted(s ...string) []string {
	s = slices.Clone(s)
	slices.Sort(s)
	return s
}
