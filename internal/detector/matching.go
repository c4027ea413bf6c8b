package detector

import "fmt"

// Verdict is the result of applying one filter kind.
type Verdict struct {
	Matches bool
	// MatchedFiles is only populated by path filters.
	MatchedFiles []string
	Reasons      []string
}

func reject(reason string) Verdict {
	return Verdict{MatchedFiles: []string{}, Reasons: []string{reason}}
}

func accept() Verdict {
	return Verdict{Matches: true, MatchedFiles: []string{}, Reasons: []string{}}
}

// EvaluatePathFilters narrows files by the `paths` and `paths-ignore`
// filters. Matched files keep the order of files.
func EvaluatePathFilters(files, includes, excludes []string) Verdict {
	considered := append([]string{}, files...)

	if len(includes) > 0 {
		compiled := CompilePatterns(includes)
		included := make([]string, 0, len(considered))
		for _, f := range considered {
			if MatchesAny(f, compiled) {
				included = append(included, f)
			}
		}
		if len(included) == 0 {
			return reject("No changed files satisfied `paths` filter.")
		}
		considered = included
	}

	if len(excludes) > 0 {
		compiled := CompilePatterns(excludes)
		kept := make([]string, 0, len(considered))
		for _, f := range considered {
			if !MatchesAny(f, compiled) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			return reject("All matching files were ignored by `paths-ignore` filter.")
		}
		considered = kept
	}

	return Verdict{
		Matches:      len(considered) > 0,
		MatchedFiles: considered,
		Reasons:      []string{},
	}
}

// EvaluateBranchFilters checks branch against `branches` and
// `branches-ignore`. An unknown branch fails.
func EvaluateBranchFilters(branch string, includes, excludes []string) Verdict {
	return evaluateRefFilters("Branch", "branches", branch, includes, excludes)
}

// EvaluateTagFilters checks tag against `tags` and `tags-ignore`. An
// unknown tag fails.
func EvaluateTagFilters(tag string, includes, excludes []string) Verdict {
	return evaluateRefFilters("Tag", "tags", tag, includes, excludes)
}

func evaluateRefFilters(label, key, value string, includes, excludes []string) Verdict {
	if value == "" {
		return reject(fmt.Sprintf("%s information unavailable to evaluate filters.", label))
	}

	if len(includes) > 0 && !MatchesAny(value, CompilePatterns(includes)) {
		return reject(fmt.Sprintf("%s %q did not satisfy `%s` filter.", label, value, key))
	}

	if len(excludes) > 0 && MatchesAny(value, CompilePatterns(excludes)) {
		return reject(fmt.Sprintf("%s %q was excluded by `%s-ignore` filter.", label, value, key))
	}

	return accept()
}

// EvaluateTypesFilter checks an event action against `types`. Unlike the
// ref filters, no configured types means every action is accepted.
func EvaluateTypesFilter(action string, types []string) Verdict {
	if len(types) == 0 {
		return accept()
	}
	if action == "" {
		return reject("Event type information unavailable to evaluate `types`.")
	}
	if !MatchesAny(action, CompilePatterns(types)) {
		return reject(fmt.Sprintf("Event type %q did not satisfy configured `types`.", action))
	}
	return accept()
}
