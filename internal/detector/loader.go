package detector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
)

// WorkflowsDir is where workflow documents are discovered.
const WorkflowsDir = ".github/workflows"

// MaxDiscoveryDepth bounds how many directory levels below WorkflowsDir
// are searched.
const MaxDiscoveryDepth = 8

var (
	// ErrNotFound is returned by a ContentStore when a path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnreadable is returned by a ContentStore for a file that exists but
	// whose content cannot be served, e.g. one too large for the API.
	ErrUnreadable = errors.New("content unreadable")
)

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Path string
	Dir  bool
}

// ContentStore reads repository content by slash-separated path.
type ContentStore interface {
	ReadDir(ctx context.Context, dir string) ([]Entry, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Definition is a raw workflow document. Err is set when the document was
// discovered but could not be read.
type Definition struct {
	Path    string
	Content []byte
	Err     error
}

// LoadDefinitions collects workflow documents under WorkflowsDir,
// depth-first in listing order. Missing paths are skipped.
func LoadDefinitions(ctx context.Context, store ContentStore, logger *slog.Logger) ([]Definition, error) {
	if logger == nil {
		logger = slog.Default()
	}

	type pending struct {
		entry Entry
		depth int
	}

	stack := []pending{{entry: Entry{Name: path.Base(WorkflowsDir), Path: WorkflowsDir, Dir: true}}}
	var defs []Definition

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !item.entry.Dir {
			content, err := store.ReadFile(ctx, item.entry.Path)
			if errors.Is(err, ErrNotFound) {
				logger.Info("workflow file disappeared", "path", item.entry.Path)
				continue
			}
			if errors.Is(err, ErrUnreadable) {
				logger.Warn("workflow file unreadable", "path", item.entry.Path, "error", err)
				defs = append(defs, Definition{Path: item.entry.Path, Err: err})
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read workflow %s: %w", item.entry.Path, err)
			}
			defs = append(defs, Definition{Path: item.entry.Path, Content: content})
			continue
		}

		if item.depth > MaxDiscoveryDepth {
			logger.Warn("skipping deeply nested workflow directory", "path", item.entry.Path)
			continue
		}

		entries, err := store.ReadDir(ctx, item.entry.Path)
		if errors.Is(err, ErrNotFound) {
			logger.Info("no workflows found", "path", item.entry.Path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read workflows directory %s: %w", item.entry.Path, err)
		}

		// Push in reverse so entries pop in listing order.
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if !e.Dir && !isWorkflowFile(e.Name) {
				continue
			}
			stack = append(stack, pending{entry: e, depth: item.depth + 1})
		}
	}

	return defs, nil
}

func isWorkflowFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

// FSStore serves content from a file system, typically a local checkout.
type FSStore struct {
	FS fs.FS
}

// LocalStore returns a store rooted at a repository checkout.
func LocalStore(repoRoot string) FSStore {
	return FSStore{FS: os.DirFS(repoRoot)}
}

func (s FSStore) ReadDir(_ context.Context, dir string) ([]Entry, error) {
	items, err := fs.ReadDir(s.FS, dir)
	if err != nil {
		return nil, notFound(err)
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Name: item.Name(),
			Path: path.Join(dir, item.Name()),
			Dir:  item.IsDir(),
		})
	}
	return entries, nil
}

func (s FSStore) ReadFile(_ context.Context, name string) ([]byte, error) {
	content, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return nil, notFound(err)
	}
	return content, nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
