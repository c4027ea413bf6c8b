package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/coreeng/action-trigger-audit/internal/detector"
)

// Markdown renders the job summary table.
func Markdown(r Report) string {
	var b strings.Builder

	b.WriteString("## Workflow Trigger Assessment\n\n")
	fmt.Fprintf(&b, "Changed files analysed: **%d** (source: %s)\n\n", len(r.ChangedFiles.Files), r.ChangedFiles.Source)
	fmt.Fprintf(&b, "Workflows automatically triggered: **%d**\n\n", len(r.Triggered()))

	if len(r.Workflows) == 0 {
		b.WriteString("No workflow files were found.\n")
		return b.String()
	}

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Workflow", "Triggered", "Reasons / Matched Files"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, w := range r.Workflows {
		triggered := "No"
		if w.AutoTriggered {
			triggered = "Yes"
		}
		table.Append([]string{cell(w.Name), triggered, cell(details(w))})
	}
	table.Render()
	return b.String()
}

func details(w detector.WorkflowAssessment) string {
	var lines []string
	for _, msg := range w.Errors {
		lines = append(lines, "⚠️ "+msg)
	}
	for _, t := range w.Triggers {
		if t.Matches {
			line := "✅ " + t.Event
			if len(t.MatchedFiles) > 0 {
				line += ": " + SummarizeList(t.MatchedFiles, 5)
			}
			lines = append(lines, line)
			continue
		}
		reason := strings.Join(t.Reasons, "; ")
		if reason == "" {
			reason = "Not triggered"
		}
		lines = append(lines, "❌ "+t.Event+": "+reason)
	}
	if len(lines) == 0 {
		return "Workflow does not define any triggers."
	}
	return strings.Join(lines, "\n")
}

// cell flattens s into a single markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
