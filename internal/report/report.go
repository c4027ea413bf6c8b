// Package report renders the outcome of an assessment run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/coreeng/action-trigger-audit/internal/changes"
	"github.com/coreeng/action-trigger-audit/internal/detector"
)

// Report is the complete, serialisable result of a run.
type Report struct {
	Repository   changes.Repository            `json:"repository"`
	BaseRef      string                        `json:"baseRef"`
	HeadRef      string                        `json:"headRef"`
	WorkflowRef  string                        `json:"workflowRef"`
	DiffStrategy changes.DiffStrategy          `json:"diffStrategy"`
	ChangedFiles changes.Result                `json:"changedFiles"`
	Workflows    []detector.WorkflowAssessment `json:"workflows"`
}

// Triggered returns the workflows that would run automatically.
func (r Report) Triggered() []detector.WorkflowAssessment {
	out := []detector.WorkflowAssessment{}
	for _, w := range r.Workflows {
		if w.AutoTriggered {
			out = append(out, w)
		}
	}
	return out
}

// SummarizeList joins at most max items and notes how many were left out.
func SummarizeList(items []string, max int) string {
	if len(items) == 0 {
		return "none"
	}
	if max <= 0 || len(items) <= max {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s, …(+%d more)", strings.Join(items[:max], ", "), len(items)-max)
}

// FormatChangedFile renders a file as "<status> <path>".
func FormatChangedFile(f changes.File) string {
	if f.Status == changes.StatusRenamed && f.PreviousPath != "" {
		return fmt.Sprintf("renamed %s -> %s", f.PreviousPath, f.Path)
	}
	return fmt.Sprintf("%s %s", f.Status, f.Path)
}

// FormatWorkflow renders a workflow with its matched events.
func FormatWorkflow(a detector.WorkflowAssessment) string {
	events := a.MatchedEvents()
	if len(events) == 0 {
		return fmt.Sprintf("%s (%s)", a.Name, a.Path)
	}
	return fmt.Sprintf("%s (%s) [%s]", a.Name, a.Path, strings.Join(events, ", "))
}

// WriteText prints the triggered workflows for a terminal.
func WriteText(w io.Writer, r Report, useColor bool) error {
	name := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	if !useColor {
		name.DisableColor()
		dim.DisableColor()
	}

	matches := r.Triggered()
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No workflows match the current event and modified files.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Detected %d workflows to run:\n", len(matches)); err != nil {
		return err
	}
	for _, wf := range matches {
		_, err := fmt.Fprintf(w, " - %s %s via %s\n",
			name.Sprint(wf.Name),
			dim.Sprintf("(%s)", wf.Path),
			strings.Join(wf.MatchedEvents(), ", "))
		if err != nil {
			return err
		}
	}
	return nil
}
