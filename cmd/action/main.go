package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/google/go-github/v66/github"
	"github.com/spf13/cobra"

	"github.com/coreeng/action-trigger-audit/internal/actions"
	"github.com/coreeng/action-trigger-audit/internal/changes"
	"github.com/coreeng/action-trigger-audit/internal/config"
	"github.com/coreeng/action-trigger-audit/internal/detector"
	"github.com/coreeng/action-trigger-audit/internal/githubapi"
	"github.com/coreeng/action-trigger-audit/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(os.Stdout, os.Stderr, os.Getenv)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	inputs  config.Inputs
	verbose bool
	noColor bool
}

func newRootCommand(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	opts := &options{inputs: config.InputsFromEnv(getenv)}

	cmd := &cobra.Command{
		Use:           "check-workflows",
		Short:         "Report which workflows a change would trigger automatically",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout, stderr, getenv)
		},
	}

	f := cmd.Flags()
	in := &opts.inputs
	f.StringVar(&in.Token, "github-token", in.Token, "token used for GitHub API calls")
	f.StringVar(&in.Repository, "repository", in.Repository, `repository as "owner/repo"`)
	f.StringVar(&in.BaseRef, "base-ref", in.BaseRef, "base commit or ref of the comparison")
	f.StringVar(&in.HeadRef, "head-ref", in.HeadRef, "head commit or ref of the comparison")
	f.StringVar(&in.WorkflowRef, "workflow-ref", in.WorkflowRef, "ref to read workflow files from (defaults to head)")
	f.StringVar(&in.EventName, "event-name", in.EventName, "event to evaluate, e.g. push or pull_request")
	f.StringVar(&in.Ref, "ref", in.Ref, "git ref of the event, e.g. refs/heads/main")
	f.StringVar(&in.BaseBranch, "base-branch", in.BaseBranch, "pull request base branch")
	f.StringVar(&in.HeadBranch, "head-branch", in.HeadBranch, "pull request head branch")
	f.StringVar(&in.Action, "pull-request-action", in.Action, "event action used for types filters")
	f.StringVar(&in.DiffStrategy, "diff-strategy", in.DiffStrategy, "auto, two-dot or three-dot")
	f.StringVar(&in.ModifiedFiles, "modified-files", in.ModifiedFiles, "explicit changed files, JSON array or comma separated")
	f.StringVar(&in.WorkflowSource, "workflow-source", in.WorkflowSource, "read workflows from the api or the local checkout")
	f.BoolVarP(&opts.verbose, "verbose", "v", getenv("RUNNER_DEBUG") == "1", "debug logging")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer, getenv func(string) string) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	runner := actions.FromEnv(stdout, getenv)

	settings, err := config.Resolve(opts.inputs, config.EnvironmentFromEnv(getenv, logger))
	if err != nil {
		return err
	}

	runner.Group("Resolved Inputs")
	logger.Info("resolved inputs",
		"repository", settings.Repository.String(),
		"base_ref", settings.BaseRef,
		"head_ref", settings.HeadRef,
		"workflow_ref", settings.WorkflowRef,
		"diff_strategy", settings.DiffStrategy,
		"requested_diff_strategy", settings.RequestedDiff,
		"workflow_source", settings.WorkflowSource,
	)
	runner.EndGroup()

	ev := settings.Event
	runner.Group("Event Context")
	logger.Info("event context",
		"event", ev.EventName,
		"ref", ev.Ref,
		"branch", ev.BranchName,
		"tag", ev.TagName,
		"base_branch", ev.BaseBranch,
		"head_branch", ev.HeadBranch,
		"action", ev.Action,
	)
	runner.EndGroup()

	var gh *github.Client
	client := func() (*github.Client, error) {
		if gh != nil {
			return gh, nil
		}
		c, err := githubapi.NewGitHubClient(settings.Token, settings.APIURL)
		if err != nil {
			return nil, err
		}
		gh = c
		return gh, nil
	}

	changed, err := resolveChangedFiles(ctx, settings, client, logger)
	if err != nil {
		return err
	}

	runner.Group("Changed Files")
	logger.Info("resolved changed files",
		"files", len(changed.Files),
		"source", changed.Source,
	)
	if changed.Source == changes.SourceGit {
		logger.Info("fell back to local git diff to avoid API truncation")
	}
	if len(changed.Files) > 0 {
		formatted := make([]string, 0, len(changed.Files))
		for _, f := range changed.Files {
			formatted = append(formatted, report.FormatChangedFile(f))
		}
		logger.Info("changed files", "files", report.SummarizeList(formatted, 10))
	} else {
		logger.Info("no changed files detected")
	}
	runner.EndGroup()

	var store detector.ContentStore
	switch settings.WorkflowSource {
	case config.SourceLocal:
		store = detector.LocalStore(settings.Workspace)
	default:
		c, err := client()
		if err != nil {
			return err
		}
		store = githubapi.ContentStore{Client: c, Repo: settings.Repository, Ref: settings.WorkflowRef}
	}

	runner.Group("Workflow Results")
	assessments, err := detector.Assess(ctx, store, settings.Event, changed.Files, logger)
	if err != nil {
		runner.EndGroup()
		return fmt.Errorf("assess workflows: %w", err)
	}
	var triggered []string
	for _, a := range assessments {
		if a.AutoTriggered {
			triggered = append(triggered, report.FormatWorkflow(a))
		}
	}
	logger.Info(fmt.Sprintf("Triggered workflows (%d)", len(triggered)),
		"workflows", report.SummarizeList(triggered, 10),
	)
	runner.EndGroup()
	for _, a := range assessments {
		for _, msg := range a.Errors {
			runner.Warning(a.Path, msg)
		}
	}

	rep := report.Report{
		Repository:   settings.Repository,
		BaseRef:      settings.BaseRef,
		HeadRef:      settings.HeadRef,
		WorkflowRef:  settings.WorkflowRef,
		DiffStrategy: settings.DiffStrategy,
		ChangedFiles: changed,
		Workflows:    assessments,
	}

	if err := report.WriteText(stdout, rep, !opts.noColor && !color.NoColor); err != nil {
		return err
	}
	if err := exportOutputs(runner, rep); err != nil {
		return fmt.Errorf("export outputs: %w", err)
	}
	if err := runner.WriteSummary(report.Markdown(rep)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func resolveChangedFiles(ctx context.Context, settings config.Settings, client func() (*github.Client, error), logger *slog.Logger) (changes.Result, error) {
	if len(settings.ModifiedFiles) > 0 {
		return changes.Result{Files: changes.FromPaths(settings.ModifiedFiles), Source: changes.SourceInput}, nil
	}

	c, err := client()
	if err != nil {
		return changes.Result{}, err
	}
	resolver := &changes.Resolver{
		Comparer: githubapi.Comparer{Client: c},
		Differ:   changes.GitDiffer{Dir: settings.Workspace},
		Logger:   logger,
	}
	return resolver.Resolve(ctx, settings.Repository, settings.BaseRef, settings.HeadRef, settings.DiffStrategy)
}

func exportOutputs(runner *actions.Runner, rep report.Report) error {
	type output struct {
		Name   string   `json:"name"`
		Path   string   `json:"path"`
		Events []string `json:"events"`
	}

	triggered := rep.Triggered()
	summary := make([]output, 0, len(triggered))
	for _, m := range triggered {
		summary = append(summary, output{
			Name:   m.Name,
			Path:   m.Path,
			Events: m.MatchedEvents(),
		})
	}

	values := []struct {
		name  string
		value any
	}{
		{"changed-files", rep.ChangedFiles.Files},
		{"triggered-workflows", triggered},
		{"workflows", summary},
		{"report", rep},
	}
	for _, v := range values {
		blob, err := json.Marshal(v.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", v.name, err)
		}
		if err := runner.SetOutput(v.name, string(blob)); err != nil {
			return err
		}
	}
	return runner.SetOutput("count", fmt.Sprintf("%d", len(triggered)))
}
