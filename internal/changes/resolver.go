package changes

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// PageSize is the number of files requested from the compare API.
	PageSize = 100

	// MaxCompareFiles is the most files the compare API will ever return.
	// A response that reaches it is treated as truncated.
	MaxCompareFiles = 300
)

// Comparison is the file list returned by a hosted compare call.
type Comparison struct {
	Files []File
	// TotalFiles is the declared number of changed files, when reported.
	TotalFiles *int
}

// Comparer queries the hosted comparison endpoint for a basehead range.
type Comparer interface {
	Compare(ctx context.Context, owner, repo, basehead string) (*Comparison, error)
}

// Differ runs a local diff over a revision range and returns the raw
// `--name-status` output.
type Differ interface {
	Diff(ctx context.Context, rangeSpec string) (string, error)
}

// Resolver produces the complete changed file list for a commit range.
type Resolver struct {
	Comparer Comparer
	Differ   Differ
	Logger   *slog.Logger
}

// Resolve returns the files changed between base and head. When the compare
// API result looks truncated the local diff is used instead.
func (r *Resolver) Resolve(ctx context.Context, repo Repository, base, head string, strategy DiffStrategy) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	basehead := strategy.Range(base, head)
	comparison, err := r.Comparer.Compare(ctx, repo.Owner, repo.Repo, basehead)
	if err != nil {
		return Result{}, fmt.Errorf("compare %s: %w", basehead, err)
	}

	files := make([]File, 0, len(comparison.Files))
	for _, f := range comparison.Files {
		f.Path = NormalizePath(f.Path)
		if f.PreviousPath != "" {
			f.PreviousPath = NormalizePath(f.PreviousPath)
		}
		files = append(files, f)
	}

	if !IsTruncated(len(files), comparison.TotalFiles) {
		return Result{Files: files, Source: SourceAPI}, nil
	}

	logger.Info("compare API result possibly truncated, falling back to local git diff",
		"returned", len(files),
		"range", basehead,
	)

	raw, err := r.Differ.Diff(ctx, basehead)
	if err != nil {
		return Result{}, fmt.Errorf("git diff %s: %w", basehead, err)
	}

	// The local diff is taken as complete, so Truncated stays false.
	return Result{Files: ParseNameStatus(raw), Source: SourceGit}, nil
}

// IsTruncated reports whether a compare response with returned files and
// an optional declared total may be missing entries.
func IsTruncated(returned int, total *int) bool {
	declared := returned
	if total != nil {
		declared = *total
	}
	return declared > returned || returned >= MaxCompareFiles
}
