package detector

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a compiled filter glob. A leading "!" in Text negates it.
type Pattern struct {
	Text   string
	Negate bool
	match  func(string) bool
}

// Match reports whether value matches the glob, ignoring negation.
func (p Pattern) Match(value string) bool {
	return p.match != nil && p.match(value)
}

// CompilePattern compiles a single filter string. Globs that doublestar
// rejects compile to a pattern that never matches.
func CompilePattern(text string) Pattern {
	negate := strings.HasPrefix(text, "!")
	glob := text
	if negate {
		glob = text[1:]
	}

	p := Pattern{Text: text, Negate: negate}
	if !doublestar.ValidatePattern(glob) {
		p.match = func(string) bool { return false }
		return p
	}
	p.match = func(value string) bool {
		ok, err := doublestar.Match(glob, value)
		return err == nil && ok
	}
	return p
}

// CompilePatterns compiles filters in declared order, skipping empty ones.
func CompilePatterns(patterns []string) []Pattern {
	compiled := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		compiled = append(compiled, CompilePattern(p))
	}
	return compiled
}

// MatchesAny evaluates value against compiled patterns. Every pattern is
// checked in order and the last one that matches decides: a positive
// pattern admits the value, a negated one rejects it. An empty set never
// matches.
func MatchesAny(value string, compiled []Pattern) bool {
	matched := false
	for _, p := range compiled {
		if p.Match(value) {
			matched = !p.Negate
		}
	}
	return matched
}
