package detector

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/coreeng/action-trigger-audit/internal/changes"
)

// WorkflowAssessment is the trigger evaluation of a single workflow file.
type WorkflowAssessment struct {
	Name          string              `json:"name"`
	Path          string              `json:"path"`
	Triggers      []TriggerEvaluation `json:"triggers"`
	AutoTriggered bool                `json:"autoTriggered"`
	Errors        []string            `json:"errors"`
}

// MatchedEvents returns the names of the triggers that matched.
func (a WorkflowAssessment) MatchedEvents() []string {
	var events []string
	for _, t := range a.Triggers {
		if t.Matches {
			events = append(events, t.Event)
		}
	}
	return events
}

// Assess loads every workflow from store and evaluates it against the
// changed files and event context.
func Assess(ctx context.Context, store ContentStore, eventCtx EventContext, files []changes.File, logger *slog.Logger) ([]WorkflowAssessment, error) {
	defs, err := LoadDefinitions(ctx, store, logger)
	if err != nil {
		return nil, err
	}
	return AssessWorkflows(defs, files, eventCtx, logger), nil
}

// AssessWorkflows evaluates each definition in order. A definition that
// fails to parse is reported with its errors and no triggers.
func AssessWorkflows(defs []Definition, files []changes.File, eventCtx EventContext, logger *slog.Logger) []WorkflowAssessment {
	if logger == nil {
		logger = slog.Default()
	}

	changedPaths := ChangedPaths(files)
	logger.Info("evaluating workflows",
		"workflows", len(defs),
		"changed_paths", len(changedPaths),
	)

	assessments := make([]WorkflowAssessment, 0, len(defs))
	for _, def := range defs {
		a := AssessWorkflow(def, changedPaths, eventCtx)
		for _, msg := range a.Errors {
			logger.Warn("workflow parse problem", "path", a.Path, "error", msg)
		}
		logger.Info("workflow assessed",
			"workflow", a.Name,
			"path", a.Path,
			"auto_triggered", a.AutoTriggered,
			"events", strings.Join(a.MatchedEvents(), ","),
		)
		for _, t := range a.Triggers {
			if !t.Matches {
				logger.Debug("trigger not matched", "path", a.Path, "event", t.Event, "reasons", strings.Join(t.Reasons, "; "))
			}
		}
		assessments = append(assessments, a)
	}
	return assessments
}

// AssessWorkflow parses def and evaluates its triggers.
func AssessWorkflow(def Definition, changedPaths []string, eventCtx EventContext) WorkflowAssessment {
	fallback := workflowName("", path.Base(def.Path))

	var (
		tpl  *Template
		errs []string
	)
	if def.Err != nil {
		errs = []string{fmt.Sprintf("%s: %v", def.Path, def.Err)}
	} else {
		tpl, errs = ParseWorkflow(def.Path, def.Content)
	}
	if errs == nil {
		errs = []string{}
	}
	if tpl == nil {
		if len(errs) == 0 {
			errs = append(errs, "Workflow failed to parse.")
		}
		return WorkflowAssessment{
			Name:     fallback,
			Path:     def.Path,
			Triggers: []TriggerEvaluation{},
			Errors:   errs,
		}
	}

	triggers := EvaluateTriggers(tpl, changedPaths, eventCtx)
	auto := false
	for _, t := range triggers {
		if t.Matches {
			auto = true
			break
		}
	}

	return WorkflowAssessment{
		Name:          workflowName(tpl.Name, path.Base(def.Path)),
		Path:          def.Path,
		Triggers:      triggers,
		AutoTriggered: auto,
		Errors:        errs,
	}
}

// ChangedPaths flattens files into unique paths in first-seen order. The
// previous path of a rename counts as changed too.
func ChangedPaths(files []changes.File) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	add := func(p string) {
		if p == "" {
			return
		}
		p = changes.NormalizePath(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, f := range files {
		add(f.Path)
		add(f.PreviousPath)
	}
	return out
}

func workflowName(name, fallback string) string {
	if name != "" {
		return name
	}
	return strings.TrimSuffix(strings.TrimSuffix(fallback, ".yml"), ".yaml")
}
