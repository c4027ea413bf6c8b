package detector

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluatePathFilters(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		includes   []string
		excludes   []string
		wantMatch  bool
		wantFiles  []string
		wantReason string
	}{
		{
			name:      "include patterns",
			files:     []string{"src/app.ts", "docs/readme.md"},
			includes:  []string{"src/**"},
			wantMatch: true,
			wantFiles: []string{"src/app.ts"},
		},
		{
			name:      "negated include",
			files:     []string{"src/app.ts", "src/generated/file.ts"},
			includes:  []string{"src/**", "!src/generated/**"},
			wantMatch: true,
			wantFiles: []string{"src/app.ts"},
		},
		{
			name:      "ignore with re-inclusion",
			files:     []string{"docs/overview.md", "docs/keep.md"},
			excludes:  []string{"docs/**", "!docs/keep.md"},
			wantMatch: true,
			wantFiles: []string{"docs/keep.md"},
		},
		{
			name:       "nothing included",
			files:      []string{"lib/index.ts"},
			includes:   []string{"docs/**"},
			wantFiles:  []string{},
			wantReason: "`paths` filter",
		},
		{
			name:       "everything ignored",
			files:      []string{"docs/a.md", "docs/b.md"},
			excludes:   []string{"docs/**"},
			wantFiles:  []string{},
			wantReason: "`paths-ignore` filter",
		},
		{
			name:       "includes then ignores remove all",
			files:      []string{"src/generated/x.ts", "lib/a.ts"},
			includes:   []string{"src/**"},
			excludes:   []string{"src/generated/**"},
			wantFiles:  []string{},
			wantReason: "`paths-ignore` filter",
		},
		{
			name:      "unconfigured passes everything",
			files:     []string{"b.txt", "a.txt"},
			wantMatch: true,
			wantFiles: []string{"b.txt", "a.txt"},
		},
		{
			name:      "unconfigured with no files",
			files:     nil,
			wantMatch: false,
			wantFiles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluatePathFilters(tt.files, tt.includes, tt.excludes)
			if got.Matches != tt.wantMatch {
				t.Fatalf("Matches = %v, want %v (reasons %v)", got.Matches, tt.wantMatch, got.Reasons)
			}
			if diff := cmp.Diff(tt.wantFiles, got.MatchedFiles); diff != "" {
				t.Fatalf("matched files mismatch (-want +got):\n%s", diff)
			}
			if tt.wantReason != "" && !strings.Contains(strings.Join(got.Reasons, " "), tt.wantReason) {
				t.Fatalf("expected reasons %v to mention %q", got.Reasons, tt.wantReason)
			}
		})
	}
}

func TestEvaluatePathFilters_Idempotent(t *testing.T) {
	files := []string{"src/a.go", "docs/x.md", "src/sub/b.go", "src/skip/c.go"}
	includes := []string{"src/**", "!src/skip/**"}

	first := EvaluatePathFilters(files, includes, nil)
	if !first.Matches {
		t.Fatalf("expected first pass to match")
	}
	second := EvaluatePathFilters(first.MatchedFiles, includes, nil)
	if diff := cmp.Diff(first.MatchedFiles, second.MatchedFiles); diff != "" {
		t.Fatalf("re-applying include filter changed result (-first +second):\n%s", diff)
	}
}

func TestEvaluateBranchFilters(t *testing.T) {
	if got := EvaluateBranchFilters("main", []string{"main"}, nil); !got.Matches {
		t.Fatalf("expected allowed branch to pass, got %v", got.Reasons)
	}

	got := EvaluateBranchFilters("release", nil, []string{"release"})
	if got.Matches {
		t.Fatalf("expected excluded branch to fail")
	}
	if !strings.Contains(got.Reasons[0], "branches-ignore") {
		t.Fatalf("expected reason to mention branches-ignore, got %q", got.Reasons[0])
	}

	got = EvaluateBranchFilters("", []string{"main"}, nil)
	if got.Matches {
		t.Fatalf("expected missing branch to fail")
	}
	if !strings.Contains(got.Reasons[0], "unavailable") {
		t.Fatalf("expected unavailable reason, got %q", got.Reasons[0])
	}

	if got := EvaluateBranchFilters("feature/x", []string{"feature/*", "!feature/x"}, nil); got.Matches {
		t.Fatalf("expected negated include to reject branch")
	}
	if got := EvaluateBranchFilters("feature/deep/x", []string{"feature/*"}, nil); got.Matches {
		t.Fatalf("expected single star not to cross slashes")
	}
	if got := EvaluateBranchFilters("releases/v1", []string{"releases/**"}, []string{"releases/**-alpha"}); !got.Matches {
		t.Fatalf("expected release branch to pass, got %v", got.Reasons)
	}
}

func TestEvaluateTagFilters(t *testing.T) {
	if got := EvaluateTagFilters("v1.0.0", []string{"v*"}, nil); !got.Matches {
		t.Fatalf("expected tag to match, got %v", got.Reasons)
	}
	got := EvaluateTagFilters("beta", nil, []string{"beta"})
	if got.Matches {
		t.Fatalf("expected ignored tag to fail")
	}
	if !strings.Contains(got.Reasons[0], "tags-ignore") {
		t.Fatalf("expected reason to mention tags-ignore, got %q", got.Reasons[0])
	}
	if got := EvaluateTagFilters("", []string{"v*"}, nil); got.Matches {
		t.Fatalf("expected missing tag to fail")
	}
}

func TestEvaluateTypesFilter(t *testing.T) {
	if got := EvaluateTypesFilter("", nil); !got.Matches {
		t.Fatalf("expected unconfigured types to pass without an action")
	}
	if got := EvaluateTypesFilter("opened", []string{"opened", "synchronize"}); !got.Matches {
		t.Fatalf("expected configured action to pass")
	}
	got := EvaluateTypesFilter("closed", []string{"opened"})
	if got.Matches {
		t.Fatalf("expected unlisted action to fail")
	}
	if !strings.Contains(got.Reasons[0], "`types`") {
		t.Fatalf("expected reason to mention types, got %q", got.Reasons[0])
	}
	if got := EvaluateTypesFilter("", []string{"opened"}); got.Matches {
		t.Fatalf("expected missing action to fail when types are configured")
	}
}
