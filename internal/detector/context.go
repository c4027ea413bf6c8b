package detector

import "strings"

// EventContext captures the minimum information required to evaluate
// GitHub Actions workflow triggers against the current run context.
// Empty fields mean the value is unknown.
type EventContext struct {
	// Ref is the git ref associated with the event, e.g. "refs/heads/main".
	Ref string `json:"ref,omitempty"`

	// RefName is Ref without the leading "refs/", e.g. "heads/main".
	RefName string `json:"refName,omitempty"`

	// BranchName is the branch pushed to. Never set together with TagName.
	BranchName string `json:"branchName,omitempty"`

	// TagName is the tag pushed to. Never set together with BranchName.
	TagName string `json:"tagName,omitempty"`

	// BaseBranch is the target branch for pull request style events.
	BaseBranch string `json:"baseBranch,omitempty"`

	// HeadBranch is the source branch for pull request style events.
	HeadBranch string `json:"headBranch,omitempty"`

	// EventName is the GitHub event name, e.g. "pull_request" or "push".
	EventName string `json:"eventName"`

	// Action is the event subtype for events that support "types" filters.
	// For example "opened", "synchronize", or "closed" for pull requests.
	Action string `json:"action,omitempty"`
}

// NewEventContext derives the ref-dependent fields of an EventContext.
func NewEventContext(eventName, ref, baseBranch, headBranch, action string) EventContext {
	ref = strings.TrimSpace(ref)
	branch, tag := splitRef(ref)
	return EventContext{
		Ref:        ref,
		RefName:    strings.TrimPrefix(ref, "refs/"),
		BranchName: branch,
		TagName:    tag,
		BaseBranch: strings.TrimSpace(baseBranch),
		HeadBranch: strings.TrimSpace(headBranch),
		EventName:  strings.TrimSpace(eventName),
		Action:     strings.TrimSpace(action),
	}
}

func splitRef(ref string) (branch string, tag string) {
	if strings.HasPrefix(ref, "refs/heads/") {
		return strings.TrimPrefix(ref, "refs/heads/"), ""
	}
	if strings.HasPrefix(ref, "refs/tags/") {
		return "", strings.TrimPrefix(ref, "refs/tags/")
	}
	return ref, ""
}
