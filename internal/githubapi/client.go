// Package githubapi adapts the GitHub REST API to the comparison and
// content interfaces used by the resolver and the workflow loader.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/coreeng/action-trigger-audit/internal/changes"
	"github.com/coreeng/action-trigger-audit/internal/detector"
)

// NewGitHubClient returns an authenticated client. A non-empty apiURL, such
// as GITHUB_API_URL on GitHub Enterprise Server, replaces the default
// endpoint.
func NewGitHubClient(token, apiURL string) (*github.Client, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" && strings.TrimSuffix(apiURL, "/") != "https://api.github.com" {
		base, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
		}
		client.BaseURL = base
	}
	return client, nil
}

// comparePayload mirrors the parts of the compare response that are used.
// total_files is decoded directly since go-github does not expose it.
type comparePayload struct {
	Files      []*github.CommitFile `json:"files"`
	TotalFiles *int                 `json:"total_files"`
}

// Comparer implements changes.Comparer.
type Comparer struct {
	Client *github.Client
}

// Compare fetches a single page of the comparison for basehead. The
// basehead is passed through verbatim so both ".." and "..." ranges work.
func (c Comparer) Compare(ctx context.Context, owner, repo, basehead string) (*changes.Comparison, error) {
	u := fmt.Sprintf("repos/%s/%s/compare/%s?per_page=%d",
		url.PathEscape(owner), url.PathEscape(repo), escapeBasehead(basehead), changes.PageSize)

	req, err := c.Client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var payload comparePayload
	if _, err := c.Client.Do(ctx, req, &payload); err != nil {
		return nil, err
	}

	out := &changes.Comparison{TotalFiles: payload.TotalFiles}
	for _, f := range payload.Files {
		if f == nil || f.Filename == nil {
			continue
		}
		out.Files = append(out.Files, changes.File{
			Path:         changes.NormalizePath(f.GetFilename()),
			Status:       changes.NormalizeStatus(f.GetStatus()),
			PreviousPath: changes.NormalizePath(f.GetPreviousFilename()),
		})
	}
	return out, nil
}

// ContentStore implements detector.ContentStore over the repository
// contents API at a fixed ref.
type ContentStore struct {
	Client *github.Client
	Repo   changes.Repository
	Ref    string
}

func (s ContentStore) get(ctx context.Context, p string) (*github.RepositoryContent, []*github.RepositoryContent, error) {
	opts := &github.RepositoryContentGetOptions{Ref: s.Ref}
	file, dir, _, err := s.Client.Repositories.GetContents(ctx, s.Repo.Owner, s.Repo.Repo, p, opts)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%s@%s: %w", p, s.Ref, detector.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("get contents %s@%s: %w", p, s.Ref, err)
	}
	return file, dir, nil
}

func (s ContentStore) ReadDir(ctx context.Context, dir string) ([]detector.Entry, error) {
	file, listing, err := s.get(ctx, dir)
	if err != nil {
		return nil, err
	}
	if file != nil {
		// The path is a file. Report it as a one-entry listing.
		listing = []*github.RepositoryContent{file}
	}

	entries := make([]detector.Entry, 0, len(listing))
	for _, item := range listing {
		switch item.GetType() {
		case "file", "dir":
		default:
			continue
		}
		if item.GetName() == "" || item.GetPath() == "" {
			continue
		}
		entries = append(entries, detector.Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Dir:  item.GetType() == "dir",
		})
	}
	return entries, nil
}

func (s ContentStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	file, _, err := s.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if file == nil || file.GetType() != "file" {
		return nil, fmt.Errorf("%s@%s is not a file: %w", name, s.Ref, detector.ErrNotFound)
	}
	// Files over 1 MB come back with encoding "none" and no content.
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", name, detector.ErrUnreadable, err)
	}
	return []byte(content), nil
}

// escapeBasehead escapes both refs of a ".." or "..." range. Slashes in
// branch names are kept.
func escapeBasehead(basehead string) string {
	sep := ".."
	if strings.Contains(basehead, "...") {
		sep = "..."
	}
	base, head, ok := strings.Cut(basehead, sep)
	if !ok {
		return escapeRef(basehead)
	}
	return escapeRef(base) + sep + escapeRef(head)
}

func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
