package changes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComparer struct {
	result   *Comparison
	err      error
	basehead string
}

func (f *fakeComparer) Compare(_ context.Context, owner, repo, basehead string) (*Comparison, error) {
	f.basehead = basehead
	return f.result, f.err
}

type fakeDiffer struct {
	out       string
	err       error
	rangeSpec string
	calls     int
}

func (f *fakeDiffer) Diff(_ context.Context, rangeSpec string) (string, error) {
	f.calls++
	f.rangeSpec = rangeSpec
	return f.out, f.err
}

func intPtr(v int) *int { return &v }

var repository = Repository{Owner: "octo", Repo: "example"}

func TestResolve_UsesCompareAPIWhenComplete(t *testing.T) {
	comparer := &fakeComparer{result: &Comparison{
		Files: []File{
			{Path: "src/index.ts", Status: StatusModified},
			{Path: "README.md", Status: StatusAdded},
		},
		TotalFiles: intPtr(2),
	}}
	differ := &fakeDiffer{}
	r := &Resolver{Comparer: comparer, Differ: differ}

	result, err := r.Resolve(context.Background(), repository, "base", "head", ThreeDot)
	require.NoError(t, err)

	assert.Equal(t, SourceAPI, result.Source)
	assert.False(t, result.Truncated)
	assert.Equal(t, []File{
		{Path: "src/index.ts", Status: StatusModified},
		{Path: "README.md", Status: StatusAdded},
	}, result.Files)
	assert.Equal(t, "base...head", comparer.basehead)
	assert.Zero(t, differ.calls)
}

func TestResolve_FallsBackToGitWhenTruncated(t *testing.T) {
	files := make([]File, 300)
	for i := range files {
		files[i] = File{Path: fmt.Sprintf("file-%d.txt", i), Status: StatusModified}
	}
	comparer := &fakeComparer{result: &Comparison{Files: files, TotalFiles: intPtr(400)}}
	differ := &fakeDiffer{out: "A\tnew-file.ts\nR100\told-name.ts\tnew-name.ts\n"}
	r := &Resolver{Comparer: comparer, Differ: differ}

	result, err := r.Resolve(context.Background(), repository, "base", "head", ThreeDot)
	require.NoError(t, err)

	assert.Equal(t, SourceGit, result.Source)
	assert.False(t, result.Truncated)
	assert.Equal(t, []File{
		{Path: "new-file.ts", Status: StatusAdded},
		{Path: "new-name.ts", PreviousPath: "old-name.ts", Status: StatusRenamed},
	}, result.Files)
	assert.Equal(t, "base...head", differ.rangeSpec)
	assert.Equal(t, 1, differ.calls)
}

func TestResolve_TwoDotRange(t *testing.T) {
	comparer := &fakeComparer{result: &Comparison{}}
	r := &Resolver{Comparer: comparer, Differ: &fakeDiffer{}}

	result, err := r.Resolve(context.Background(), repository, "a1", "b2", TwoDot)
	require.NoError(t, err)
	assert.Equal(t, "a1..b2", comparer.basehead)
	assert.Empty(t, result.Files)
	assert.Equal(t, SourceAPI, result.Source)
}

func TestResolve_NormalizesAPIPaths(t *testing.T) {
	comparer := &fakeComparer{result: &Comparison{Files: []File{
		{Path: `src\win\file.go`, PreviousPath: `src\old.go`, Status: StatusRenamed},
	}}}
	r := &Resolver{Comparer: comparer, Differ: &fakeDiffer{}}

	result, err := r.Resolve(context.Background(), repository, "a", "b", ThreeDot)
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Path: "src/win/file.go", PreviousPath: "src/old.go", Status: StatusRenamed},
	}, result.Files)
}

func TestResolve_PropagatesTransportErrors(t *testing.T) {
	boom := errors.New("boom")

	r := &Resolver{Comparer: &fakeComparer{err: boom}, Differ: &fakeDiffer{}}
	_, err := r.Resolve(context.Background(), repository, "a", "b", ThreeDot)
	require.ErrorIs(t, err, boom)

	r = &Resolver{
		Comparer: &fakeComparer{result: &Comparison{TotalFiles: intPtr(5)}},
		Differ:   &fakeDiffer{err: boom},
	}
	_, err = r.Resolve(context.Background(), repository, "a", "b", ThreeDot)
	require.ErrorIs(t, err, boom)
}

func TestIsTruncated(t *testing.T) {
	tests := []struct {
		name     string
		returned int
		total    *int
		want     bool
	}{
		{name: "complete", returned: 12, total: intPtr(12), want: false},
		{name: "no total reported", returned: 12, total: nil, want: false},
		{name: "declared total exceeds returned", returned: 100, total: intPtr(101), want: true},
		{name: "just under cap", returned: 299, total: intPtr(299), want: false},
		{name: "at cap with matching total", returned: 300, total: intPtr(300), want: true},
		{name: "at cap without total", returned: 300, total: nil, want: true},
		{name: "above cap", returned: 301, total: intPtr(1), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTruncated(tt.returned, tt.total))
		})
	}
}
