// Package config resolves action inputs and runner environment into the
// settings of a single assessment run.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/coreeng/action-trigger-audit/internal/changes"
	"github.com/coreeng/action-trigger-audit/internal/detector"
)

var (
	// ErrMissingRef is returned when base or head cannot be determined.
	ErrMissingRef = errors.New("both `base-ref` and `head-ref` must be provided or derivable from the event context")

	// ErrInvalidDiffStrategy is returned for an unknown diff-strategy input.
	ErrInvalidDiffStrategy = errors.New("diff-strategy must be one of auto, two-dot, three-dot")

	// ErrInvalidWorkflowSource is returned for an unknown workflow-source input.
	ErrInvalidWorkflowSource = errors.New("workflow-source must be one of api, local")

	// ErrInvalidRepository is returned when the repository is not "owner/repo".
	ErrInvalidRepository = changes.ErrInvalidRepository
)

// Workflow sources.
const (
	SourceAPI   = "api"
	SourceLocal = "local"
)

// Inputs are the action inputs. Each field maps to an INPUT_* variable.
type Inputs struct {
	Token          string
	Repository     string
	BaseRef        string
	HeadRef        string
	WorkflowRef    string
	EventName      string
	Ref            string
	BaseBranch     string
	HeadBranch     string
	Action         string
	DiffStrategy   string
	ModifiedFiles  string
	WorkflowSource string
}

// InputsFromEnv reads inputs the way the Actions runner exposes them. The
// underscore spelling of a hyphenated name is accepted as well.
func InputsFromEnv(getenv func(string) string) Inputs {
	in := func(name string) string {
		key := "INPUT_" + strings.ToUpper(name)
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(getenv(strings.ReplaceAll(key, "-", "_")))
	}
	return Inputs{
		Token:          in("github-token"),
		Repository:     in("repository"),
		BaseRef:        in("base-ref"),
		HeadRef:        in("head-ref"),
		WorkflowRef:    in("workflow-ref"),
		EventName:      in("event-name"),
		Ref:            in("ref"),
		BaseBranch:     in("base-branch"),
		HeadBranch:     in("head-branch"),
		Action:         in("pull-request-action"),
		DiffStrategy:   in("diff-strategy"),
		ModifiedFiles:  in("modified-files"),
		WorkflowSource: in("workflow-source"),
	}
}

// Environment is the ambient runner context.
type Environment struct {
	Repository string
	EventName  string
	Ref        string
	SHA        string
	Workspace  string
	APIURL     string
	Payload    Payload
}

// Payload is the subset of the webhook event payload that is used.
type Payload struct {
	Action      string `json:"action"`
	Before      string `json:"before"`
	Ref         string `json:"ref"`
	PullRequest struct {
		Base struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"base"`
		Head struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	MergeGroup struct {
		BaseRef string `json:"base_ref"`
		HeadRef string `json:"head_ref"`
	} `json:"merge_group"`
	WorkflowRun struct {
		HeadBranch string `json:"head_branch"`
	} `json:"workflow_run"`
}

// EnvironmentFromEnv reads the runner variables and the event payload. An
// unreadable or malformed payload is logged and treated as empty.
func EnvironmentFromEnv(getenv func(string) string, logger *slog.Logger) Environment {
	if logger == nil {
		logger = slog.Default()
	}

	env := Environment{
		Repository: strings.TrimSpace(getenv("GITHUB_REPOSITORY")),
		EventName:  strings.TrimSpace(getenv("GITHUB_EVENT_NAME")),
		Ref:        strings.TrimSpace(getenv("GITHUB_REF")),
		SHA:        strings.TrimSpace(getenv("GITHUB_SHA")),
		Workspace:  strings.TrimSpace(getenv("GITHUB_WORKSPACE")),
		APIURL:     strings.TrimSpace(getenv("GITHUB_API_URL")),
	}

	if path := strings.TrimSpace(getenv("GITHUB_EVENT_PATH")); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			err = json.Unmarshal(data, &env.Payload)
		}
		if err != nil {
			env.Payload = Payload{}
			logger.Warn("ignoring event payload", "path", path, "error", err)
		}
	}
	return env
}

// Settings are the resolved parameters of a run.
type Settings struct {
	Token          string
	Repository     changes.Repository
	BaseRef        string
	HeadRef        string
	WorkflowRef    string
	DiffStrategy   changes.DiffStrategy
	RequestedDiff  string
	ModifiedFiles  []string
	WorkflowSource string
	Workspace      string
	APIURL         string
	Event          detector.EventContext
}

// Resolve combines inputs with the environment. Inputs win whenever they
// are set.
func Resolve(in Inputs, env Environment) (Settings, error) {
	repoSpec := firstNonEmpty(in.Repository, env.Repository)
	if repoSpec == "" {
		return Settings{}, fmt.Errorf("%w: unable to determine repository from context", ErrInvalidRepository)
	}
	repo, err := changes.ParseRepository(repoSpec)
	if err != nil {
		return Settings{}, err
	}

	modified, err := ParseModifiedFiles(in.ModifiedFiles)
	if err != nil {
		return Settings{}, fmt.Errorf("parse modified files: %w", err)
	}

	base := firstNonEmpty(in.BaseRef, baseRefFromEvent(env))
	head := firstNonEmpty(in.HeadRef, headRefFromEvent(env))
	if len(modified) == 0 && (base == "" || head == "") {
		return Settings{}, ErrMissingRef
	}

	requested := strings.ToLower(firstNonEmpty(in.DiffStrategy, "auto"))
	strategy, err := resolveDiffStrategy(requested, env.EventName)
	if err != nil {
		return Settings{}, err
	}

	source := strings.ToLower(firstNonEmpty(in.WorkflowSource, SourceAPI))
	if source != SourceAPI && source != SourceLocal {
		return Settings{}, fmt.Errorf("%w: %q", ErrInvalidWorkflowSource, source)
	}

	workflowRef := firstNonEmpty(in.WorkflowRef, head, env.SHA)
	if source == SourceAPI && workflowRef == "" {
		return Settings{}, errors.New("unable to determine the ref to inspect workflows against")
	}

	return Settings{
		Token:          in.Token,
		Repository:     repo,
		BaseRef:        base,
		HeadRef:        head,
		WorkflowRef:    workflowRef,
		DiffStrategy:   strategy,
		RequestedDiff:  requested,
		ModifiedFiles:  modified,
		WorkflowSource: source,
		Workspace:      firstNonEmpty(env.Workspace, "."),
		APIURL:         env.APIURL,
		Event:          buildEventContext(in, env),
	}, nil
}

func baseRefFromEvent(env Environment) string {
	switch env.EventName {
	case "pull_request", "pull_request_target":
		return env.Payload.PullRequest.Base.SHA
	case "push":
		return env.Payload.Before
	}
	return ""
}

func headRefFromEvent(env Environment) string {
	switch env.EventName {
	case "pull_request", "pull_request_target":
		return env.Payload.PullRequest.Head.SHA
	}
	return env.SHA
}

func resolveDiffStrategy(requested, eventName string) (changes.DiffStrategy, error) {
	switch requested {
	case string(changes.TwoDot):
		return changes.TwoDot, nil
	case string(changes.ThreeDot):
		return changes.ThreeDot, nil
	case "auto":
		if eventName == "push" {
			return changes.TwoDot, nil
		}
		return changes.ThreeDot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDiffStrategy, requested)
}

func buildEventContext(in Inputs, env Environment) detector.EventContext {
	p := env.Payload
	return detector.NewEventContext(
		firstNonEmpty(in.EventName, env.EventName, "push"),
		firstNonEmpty(in.Ref, env.Ref, p.Ref),
		firstNonEmpty(in.BaseBranch, p.PullRequest.Base.Ref, p.MergeGroup.BaseRef, p.WorkflowRun.HeadBranch),
		firstNonEmpty(in.HeadBranch, p.PullRequest.Head.Ref, p.MergeGroup.HeadRef),
		firstNonEmpty(in.Action, p.Action),
	)
}

// ParseModifiedFiles accepts a JSON array or a comma/newline separated list.
func ParseModifiedFiles(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, err
		}
		return values, nil
	}

	var parts []string
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
