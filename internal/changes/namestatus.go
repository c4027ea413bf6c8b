package changes

import "strings"

// ParseNameStatus parses the output of `git diff --name-status`.
//
// Each line is "status<TAB>path", or "R<score><TAB>old<TAB>new" for
// renames. Empty and malformed lines are skipped.
func ParseNameStatus(raw string) []File {
	files := make([]File, 0)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		token := fields[0]
		if token == "" {
			continue
		}
		rest := fields[1:]

		if strings.HasPrefix(token, "R") {
			if len(rest) < 2 || rest[0] == "" || rest[1] == "" {
				continue
			}
			files = append(files, File{
				Path:         NormalizePath(rest[1]),
				PreviousPath: NormalizePath(rest[0]),
				Status:       StatusRenamed,
			})
			continue
		}

		if len(rest) < 1 || rest[0] == "" {
			continue
		}
		files = append(files, File{
			Path:   NormalizePath(rest[0]),
			Status: NormalizeStatus(token[:1]),
		})
	}

	return files
}

// FromPaths builds a changed file list from explicitly supplied paths.
// Duplicates are dropped. Every entry is reported as modified.
func FromPaths(paths []string) []File {
	out := make([]File, 0, len(paths))
	seen := map[string]struct{}{}
	for _, p := range paths {
		norm := NormalizePath(strings.TrimSpace(p))
		for strings.HasPrefix(norm, "./") {
			norm = strings.TrimPrefix(norm, "./")
		}
		norm = strings.TrimLeft(norm, "/")
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, File{Path: norm, Status: StatusModified})
	}
	return out
}
