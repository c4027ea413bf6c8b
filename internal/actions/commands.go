// Package actions writes GitHub Actions workflow commands and files.
package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sethvargo/go-githubactions"
)

// Runner emits workflow commands to the job log and appends to the
// runner's output and summary files when they are configured.
type Runner struct {
	action *githubactions.Action
	getenv func(string) string
}

// FromEnv returns a Runner that writes commands to out and resolves
// GITHUB_OUTPUT and GITHUB_STEP_SUMMARY through getenv.
func FromEnv(out io.Writer, getenv func(string) string) *Runner {
	return &Runner{
		action: githubactions.New(
			githubactions.WithWriter(out),
			githubactions.WithGetenv(getenv),
		),
		getenv: getenv,
	}
}

// Group starts a collapsible log group.
func (r *Runner) Group(title string) {
	r.action.Group(title)
}

// EndGroup closes the current log group.
func (r *Runner) EndGroup() {
	r.action.EndGroup()
}

// Warning emits a warning annotation, optionally attached to a file.
func (r *Runner) Warning(file, message string) {
	a := r.action
	if file != "" {
		a = a.WithFieldsMap(map[string]string{"file": file})
	}
	a.Warningf("%s", message)
}

// SetOutput appends a step output. Without GITHUB_OUTPUT it is a no-op.
func (r *Runner) SetOutput(name, value string) error {
	if r.getenv("GITHUB_OUTPUT") == "" {
		return nil
	}
	delim := delimiter(value)
	return r.action.IssueFileCommand(&githubactions.Command{
		Name:    "OUTPUT",
		Message: fmt.Sprintf("%s<<%s\n%s\n%s", name, delim, value, delim),
	})
}

// WriteSummary appends markdown to the job summary. Without
// GITHUB_STEP_SUMMARY it is a no-op.
func (r *Runner) WriteSummary(markdown string) error {
	if r.getenv("GITHUB_STEP_SUMMARY") == "" {
		return nil
	}
	return r.action.IssueFileCommand(&githubactions.Command{
		Name:    "STEP_SUMMARY",
		Message: strings.TrimSuffix(markdown, "\n"),
	})
}

// delimiter picks a heredoc marker that does not occur in value.
func delimiter(value string) string {
	for {
		delim := "ghadelimiter_" + uuid.NewString()
		if !strings.Contains(value, delim) {
			return delim
		}
	}
}
