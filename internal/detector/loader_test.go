package detector

import (
	"context"
	"errors"
	"fmt"
	"path"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func loadPaths(t *testing.T, store ContentStore) []string {
	t.Helper()
	defs, err := LoadDefinitions(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("LoadDefinitions returned error: %v", err)
	}
	var paths []string
	for _, d := range defs {
		paths = append(paths, d.Path)
	}
	return paths
}

func TestLoadDefinitions_DepthFirstOrder(t *testing.T) {
	fsys := fstest.MapFS{
		".github/workflows/a.yml":        {Data: []byte("a")},
		".github/workflows/b/inner.yaml": {Data: []byte("b")},
		".github/workflows/b/deep/x.yml": {Data: []byte("x")},
		".github/workflows/c.yml":        {Data: []byte("c")},
		".github/workflows/README.md":    {Data: []byte("docs")},
		".github/workflows/notes.txt":    {Data: []byte("docs")},
		".github/dependabot.yml":         {Data: []byte("outside")},
	}

	want := []string{
		".github/workflows/a.yml",
		".github/workflows/b/deep/x.yml",
		".github/workflows/b/inner.yaml",
		".github/workflows/c.yml",
	}
	if diff := cmp.Diff(want, loadPaths(t, FSStore{FS: fsys})); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefinitions_MissingDirectory(t *testing.T) {
	if paths := loadPaths(t, FSStore{FS: fstest.MapFS{}}); len(paths) != 0 {
		t.Fatalf("expected no definitions, got %v", paths)
	}
}

func TestLoadDefinitions_DepthBound(t *testing.T) {
	fsys := fstest.MapFS{}
	dir := WorkflowsDir
	for i := 0; i <= MaxDiscoveryDepth+1; i++ {
		fsys[path.Join(dir, fmt.Sprintf("level%d.yml", i))] = &fstest.MapFile{Data: []byte("x")}
		dir = path.Join(dir, "nested")
	}

	paths := loadPaths(t, FSStore{FS: fsys})
	if len(paths) != MaxDiscoveryDepth+1 {
		t.Fatalf("expected %d definitions, got %d: %v", MaxDiscoveryDepth+1, len(paths), paths)
	}
}

type failingStore struct {
	FSStore
	err error
}

func (s failingStore) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if dir != WorkflowsDir {
		return nil, s.err
	}
	return s.FSStore.ReadDir(ctx, dir)
}

func TestLoadDefinitions_TransportErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	store := failingStore{
		FSStore: FSStore{FS: fstest.MapFS{".github/workflows/sub/a.yml": {Data: []byte("a")}}},
		err:     boom,
	}
	_, err := LoadDefinitions(context.Background(), store, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}

	store.err = fmt.Errorf("gone: %w", ErrNotFound)
	if _, err := LoadDefinitions(context.Background(), store, nil); err != nil {
		t.Fatalf("expected not found to be ignored, got %v", err)
	}
}

type unreadableStore struct {
	FSStore
	name string
}

func (s unreadableStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if name == s.name {
		return nil, fmt.Errorf("%s: too large: %w", name, ErrUnreadable)
	}
	return s.FSStore.ReadFile(ctx, name)
}

func TestLoadDefinitions_UnreadableFileIsKept(t *testing.T) {
	store := unreadableStore{
		FSStore: FSStore{FS: fstest.MapFS{
			".github/workflows/big.yml": {Data: []byte("big")},
			".github/workflows/ok.yml":  {Data: []byte("on: push\n" + testJobs)},
		}},
		name: ".github/workflows/big.yml",
	}

	defs, err := LoadDefinitions(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("LoadDefinitions returned error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if !errors.Is(defs[0].Err, ErrUnreadable) || defs[0].Content != nil {
		t.Fatalf("expected big.yml to carry ErrUnreadable, got %+v", defs[0])
	}

	got := AssessWorkflow(defs[0], []string{"src/app.go"}, EventContext{EventName: "push"})
	want := WorkflowAssessment{
		Name:     "big",
		Path:     ".github/workflows/big.yml",
		Triggers: []TriggerEvaluation{},
		Errors:   []string{".github/workflows/big.yml: .github/workflows/big.yml: too large: content unreadable"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("assessment mismatch (-want +got):\n%s", diff)
	}
}
