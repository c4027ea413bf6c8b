package detector

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nektos/act/pkg/model"
	"gopkg.in/yaml.v3"
)

// Template is the trigger-relevant part of a parsed workflow document.
type Template struct {
	Name     string
	Triggers []Trigger
}

// Trigger is one declared event under `on:`. The concrete type selects how
// the event is evaluated.
type Trigger interface {
	EventName() string
}

// PushTrigger holds the filters of a `push` event.
type PushTrigger struct {
	Branches       StringList `yaml:"branches"`
	BranchesIgnore StringList `yaml:"branches-ignore"`
	Tags           StringList `yaml:"tags"`
	TagsIgnore     StringList `yaml:"tags-ignore"`
	Paths          StringList `yaml:"paths"`
	PathsIgnore    StringList `yaml:"paths-ignore"`
}

func (PushTrigger) EventName() string { return "push" }

// PullRequestTrigger holds the filters of `pull_request` and
// `pull_request_target` events.
type PullRequestTrigger struct {
	Event          string     `yaml:"-"`
	Branches       StringList `yaml:"branches"`
	BranchesIgnore StringList `yaml:"branches-ignore"`
	Paths          StringList `yaml:"paths"`
	PathsIgnore    StringList `yaml:"paths-ignore"`
	Types          StringList `yaml:"types"`
}

func (t PullRequestTrigger) EventName() string { return t.Event }

// MergeGroupTrigger holds the filters of a `merge_group` event.
type MergeGroupTrigger struct {
	Types StringList `yaml:"types"`
}

func (MergeGroupTrigger) EventName() string { return "merge_group" }

// DispatchTrigger is `workflow_dispatch`.
type DispatchTrigger struct{}

func (DispatchTrigger) EventName() string { return "workflow_dispatch" }

// CallTrigger is `workflow_call`.
type CallTrigger struct{}

func (CallTrigger) EventName() string { return "workflow_call" }

// OtherTrigger is any event without file or ref filters, e.g. `schedule`.
type OtherTrigger struct {
	Event string
}

func (t OtherTrigger) EventName() string { return t.Event }

// StringList decodes either a single scalar or a sequence of scalars.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected a string, got %s", item.Line, kindName(item.Kind))
			}
			if item.Tag == "!!null" {
				continue
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or list, got %s", value.Line, kindName(value.Kind))
	}
}

// ParseWorkflow parses a workflow document. It returns a nil template when
// the document cannot be read at all, and collects per-event decoding
// problems as errors alongside a partial template.
func ParseWorkflow(name string, content []byte) (*Template, []string) {
	wf, err := model.ReadWorkflow(bytes.NewReader(content), false)
	if err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", name, err)}
	}
	if wf == nil {
		return nil, []string{fmt.Sprintf("%s: workflow document is empty", name)}
	}

	tpl := &Template{Name: strings.TrimSpace(wf.Name)}
	var errs []string
	for _, err := range decodeTriggers(&wf.RawOn, tpl) {
		errs = append(errs, fmt.Sprintf("%s: %v", name, err))
	}
	return tpl, errs
}

func decodeTriggers(on *yaml.Node, tpl *Template) []error {
	var errs []error

	switch on.Kind {
	case 0:
		// No `on:` key.
	case yaml.ScalarNode:
		if on.Tag != "!!null" && on.Value != "" {
			tpl.Triggers = append(tpl.Triggers, newTrigger(on.Value))
		}
	case yaml.SequenceNode:
		for _, item := range on.Content {
			if item.Kind != yaml.ScalarNode || item.Value == "" {
				errs = append(errs, fmt.Errorf("line %d: event name must be a string", item.Line))
				continue
			}
			tpl.Triggers = append(tpl.Triggers, newTrigger(item.Value))
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(on.Content); i += 2 {
			event := on.Content[i].Value
			trigger, err := decodeTrigger(event, on.Content[i+1])
			if err != nil {
				errs = append(errs, fmt.Errorf("event %s: %w", event, err))
				continue
			}
			tpl.Triggers = append(tpl.Triggers, trigger)
		}
	default:
		errs = append(errs, fmt.Errorf("line %d: unsupported `on` value of kind %s", on.Line, kindName(on.Kind)))
	}

	return errs
}

func newTrigger(event string) Trigger {
	trigger, _ := decodeTrigger(event, nil)
	return trigger
}

func decodeTrigger(event string, node *yaml.Node) (Trigger, error) {
	switch event {
	case "push":
		var t PushTrigger
		err := decodeConfig(node, &t, nil)
		return t, err
	case "pull_request", "pull_request_target":
		t := PullRequestTrigger{Event: event}
		err := decodeConfig(node, &t, &t.Types)
		t.Event = event
		return t, err
	case "merge_group":
		var t MergeGroupTrigger
		err := decodeConfig(node, &t, &t.Types)
		return t, err
	case "workflow_dispatch":
		return DispatchTrigger{}, nil
	case "workflow_call":
		return CallTrigger{}, nil
	default:
		return OtherTrigger{Event: event}, nil
	}
}

// decodeConfig decodes an event mapping into out. A bare list or scalar is
// accepted as shorthand for types when the event supports them.
func decodeConfig(node *yaml.Node, out any, types *StringList) error {
	if node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		return node.Decode(out)
	case yaml.SequenceNode, yaml.ScalarNode:
		if types == nil {
			return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
		}
		return node.Decode(types)
	default:
		return errors.New("unsupported configuration")
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
