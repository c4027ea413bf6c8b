package detector

// FilterKinds records which filter kinds a trigger declared.
type FilterKinds struct {
	Branches bool `json:"branches,omitempty"`
	Paths    bool `json:"paths,omitempty"`
	Tags     bool `json:"tags,omitempty"`
	Types    bool `json:"types,omitempty"`
}

// TriggerEvaluation is the verdict for one declared trigger event.
type TriggerEvaluation struct {
	Event            string      `json:"event"`
	Matches          bool        `json:"matches"`
	Reasons          []string    `json:"reasons"`
	MatchedFiles     []string    `json:"matchedFiles"`
	EvaluatedFilters FilterKinds `json:"evaluatedFilters"`
}

func newEvaluation(event string) TriggerEvaluation {
	return TriggerEvaluation{Event: event, Reasons: []string{}, MatchedFiles: []string{}}
}

func (e *TriggerEvaluation) apply(v Verdict) {
	if !v.Matches {
		e.Matches = false
		e.Reasons = append(e.Reasons, v.Reasons...)
	}
}

// EvaluateTriggers evaluates every trigger declared by tpl, in declared
// order, against the changed paths and event context.
func EvaluateTriggers(tpl *Template, changedPaths []string, ctx EventContext) []TriggerEvaluation {
	if len(changedPaths) == 0 {
		e := newEvaluation("unknown")
		e.Reasons = append(e.Reasons, "No changed files were provided for evaluation.")
		return []TriggerEvaluation{e}
	}
	if tpl == nil {
		return []TriggerEvaluation{}
	}

	out := make([]TriggerEvaluation, 0, len(tpl.Triggers))
	for _, trigger := range tpl.Triggers {
		switch t := trigger.(type) {
		case PushTrigger:
			out = append(out, evaluatePush(t, changedPaths, ctx))
		case PullRequestTrigger:
			out = append(out, evaluatePullRequest(t, changedPaths, ctx))
		case MergeGroupTrigger:
			out = append(out, evaluateMergeGroup(t, ctx))
		case DispatchTrigger:
			out = append(out, neverMatches(t.EventName(), "Event requires manual invocation and does not respond to file changes."))
		case CallTrigger:
			out = append(out, neverMatches(t.EventName(), "Triggered by other workflows."))
		default:
			out = append(out, neverMatches(trigger.EventName(), "Event runs independently of repository file changes."))
		}
	}
	return out
}

func evaluatePush(t PushTrigger, changedPaths []string, ctx EventContext) TriggerEvaluation {
	e := newEvaluation(t.EventName())
	e.Matches = true

	if len(t.Branches) > 0 || len(t.BranchesIgnore) > 0 {
		e.EvaluatedFilters.Branches = true
		e.apply(EvaluateBranchFilters(ctx.BranchName, t.Branches, t.BranchesIgnore))
	}

	if ctx.TagName != "" && (len(t.Tags) > 0 || len(t.TagsIgnore) > 0) {
		e.EvaluatedFilters.Tags = true
		e.apply(EvaluateTagFilters(ctx.TagName, t.Tags, t.TagsIgnore))
	}

	e.EvaluatedFilters.Paths = len(t.Paths) > 0 || len(t.PathsIgnore) > 0
	paths := EvaluatePathFilters(changedPaths, t.Paths, t.PathsIgnore)
	e.apply(paths)
	e.MatchedFiles = paths.MatchedFiles

	return e
}

func evaluatePullRequest(t PullRequestTrigger, changedPaths []string, ctx EventContext) TriggerEvaluation {
	e := newEvaluation(t.EventName())
	e.Matches = true

	// Pull request branch filters apply to the target branch.
	if len(t.Branches) > 0 || len(t.BranchesIgnore) > 0 {
		e.EvaluatedFilters.Branches = true
		e.apply(EvaluateBranchFilters(ctx.BaseBranch, t.Branches, t.BranchesIgnore))
	}

	e.EvaluatedFilters.Paths = len(t.Paths) > 0 || len(t.PathsIgnore) > 0
	paths := EvaluatePathFilters(changedPaths, t.Paths, t.PathsIgnore)
	e.apply(paths)
	e.MatchedFiles = paths.MatchedFiles

	if len(t.Types) > 0 {
		e.EvaluatedFilters.Types = true
		e.apply(EvaluateTypesFilter(ctx.Action, t.Types))
	}

	return e
}

// Merge queue events are not driven by files, so paths are never checked.
func evaluateMergeGroup(t MergeGroupTrigger, ctx EventContext) TriggerEvaluation {
	e := newEvaluation(t.EventName())
	e.Matches = true
	e.EvaluatedFilters.Types = len(t.Types) > 0
	if e.EvaluatedFilters.Types {
		e.apply(EvaluateTypesFilter(ctx.Action, t.Types))
	}
	return e
}

func neverMatches(event, reason string) TriggerEvaluation {
	e := newEvaluation(event)
	e.Reasons = append(e.Reasons, reason)
	return e
}
