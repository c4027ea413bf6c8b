package changes

import (
	"errors"
	"fmt"
	"strings"
)

// Status describes how a file changed between two refs.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusRemoved  Status = "removed"
	StatusRenamed  Status = "renamed"
)

// File is a single changed path. Paths always use forward slashes.
type File struct {
	Path         string `json:"path"`
	Status       Status `json:"status"`
	PreviousPath string `json:"previousPath,omitempty"`
}

// Source identifies where a changed file list came from.
type Source string

const (
	SourceAPI   Source = "api"
	SourceGit   Source = "git"
	SourceInput Source = "input"
)

// Result is the outcome of resolving changed files for a commit range.
type Result struct {
	Files     []File `json:"files"`
	Source    Source `json:"source"`
	Truncated bool   `json:"truncated"`
}

// DiffStrategy selects how the comparison range is built.
type DiffStrategy string

const (
	TwoDot   DiffStrategy = "two-dot"
	ThreeDot DiffStrategy = "three-dot"
)

// Range returns the revision range for base and head, e.g. "a...b".
func (s DiffStrategy) Range(base, head string) string {
	if s == TwoDot {
		return base + ".." + head
	}
	return base + "..." + head
}

// Repository identifies a hosted repository.
type Repository struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Repo
}

// ErrInvalidRepository is returned when a repository is not "owner/repo".
var ErrInvalidRepository = errors.New(`repository must be in the form "owner/repo"`)

// ParseRepository parses an "owner/repo" identifier.
func ParseRepository(s string) (Repository, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, s)
	}
	return Repository{Owner: owner, Repo: repo}, nil
}

// NormalizePath converts a path to forward-slash form.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// NormalizeStatus maps a compare API status or a git status letter to a
// Status. Unknown values are reported as modified.
func NormalizeStatus(status string) Status {
	switch status {
	case "added", "A":
		return StatusAdded
	case "modified", "M":
		return StatusModified
	case "removed", "D":
		return StatusRemoved
	case "renamed", "R":
		return StatusRenamed
	default:
		return StatusModified
	}
}
