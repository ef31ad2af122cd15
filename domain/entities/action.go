package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionType represents the type of action the oracle can request
type ActionType string

const (
	ActionClick    ActionType = "click"
	ActionInput    ActionType = "input"
	ActionFill     ActionType = "fill"
	ActionSelect   ActionType = "select"
	ActionNavigate ActionType = "navigate"
	ActionEnter    ActionType = "enter"
	ActionPress    ActionType = "press"
	ActionSubmit   ActionType = "submit"
	ActionAssert   ActionType = "assert"
	ActionVerify   ActionType = "verify"
	ActionEnd      ActionType = "end"
)

// AssertionSubtype represents the check performed by an assert/verify action
type AssertionSubtype string

const (
	AssertNotVisible AssertionSubtype = "not_visible"
	AssertText       AssertionSubtype = "text"
	AssertValue      AssertionSubtype = "assert_value"
	AssertAttribute  AssertionSubtype = "attribute"
	AssertCount      AssertionSubtype = "count"
	AssertURL        AssertionSubtype = "url"
	AssertTitle      AssertionSubtype = "title"
	AssertEnabled    AssertionSubtype = "assert_enabled"
	AssertSelected   AssertionSubtype = "assert_selected"
	AssertVisibility AssertionSubtype = "visibility"
)

// ActionSpec is the flat JSON shape exchanged with the oracle and written to the action log
type ActionSpec struct {
	Type        string `json:"type"`
	Action      string `json:"action,omitempty"`
	Selector    string `json:"selector,omitempty"`
	Index       *int   `json:"index,omitempty"`
	Value       any    `json:"value,omitempty"`
	Key         string `json:"key,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	Expected    any    `json:"expected,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
}

// Kind - returns the action type, preferring "type" over "action"
func (s ActionSpec) Kind() ActionType {
	if s.Type != "" {
		return ActionType(strings.ToLower(strings.TrimSpace(s.Type)))
	}
	return ActionType(strings.ToLower(strings.TrimSpace(s.Action)))
}

// Action is one typed oracle instruction. The concrete variants are
// ClickAction, FillAction, SelectAction, NavigateAction, KeyPressAction,
// SubmitAction, AssertAction, EndAction and UnknownAction.
type Action interface {
	Type() ActionType
	Spec() ActionSpec
}

// Target locates the element an action operates on
type Target struct {
	Selector string
	// Index picks among multiple matches; nil means "first match".
	Index *int
}

type ClickAction struct {
	Target
	Description string
}

type FillAction struct {
	Verb ActionType // input or fill
	Target
	Value       string
	Description string
}

type SelectAction struct {
	Target
	Value       string
	Description string
}

type NavigateAction struct {
	URL         string
	Description string
}

type KeyPressAction struct {
	Verb ActionType // enter or press
	Target
	Key         string
	Description string
}

type SubmitAction struct {
	Target
	Description string
}

type AssertAction struct {
	Verb    ActionType // assert or verify
	Subtype AssertionSubtype
	Target
	Expected    any
	Value       any
	URL         string
	Attribute   string
	Description string
}

// EndAction signals flow completion. Inconclusive marks the synthetic end
// produced when the oracle reply could not be parsed.
type EndAction struct {
	Description  string
	Inconclusive bool
}

// UnknownAction keeps a reply whose type is outside the supported set
type UnknownAction struct {
	Raw ActionSpec
}

func (a ClickAction) Type() ActionType    { return ActionClick }
func (a FillAction) Type() ActionType     { return a.Verb }
func (a SelectAction) Type() ActionType   { return ActionSelect }
func (a NavigateAction) Type() ActionType { return ActionNavigate }
func (a KeyPressAction) Type() ActionType { return a.Verb }
func (a SubmitAction) Type() ActionType   { return ActionSubmit }
func (a AssertAction) Type() ActionType   { return a.Verb }
func (a EndAction) Type() ActionType      { return ActionEnd }
func (a UnknownAction) Type() ActionType  { return a.Raw.Kind() }

func (a ClickAction) Spec() ActionSpec {
	return targetSpec(ActionClick, a.Target, a.Description)
}

func (a FillAction) Spec() ActionSpec {
	s := targetSpec(a.Verb, a.Target, a.Description)
	s.Value = a.Value
	return s
}

func (a SelectAction) Spec() ActionSpec {
	s := targetSpec(ActionSelect, a.Target, a.Description)
	s.Value = a.Value
	return s
}

func (a NavigateAction) Spec() ActionSpec {
	return ActionSpec{
		Type:        string(ActionNavigate),
		Action:      string(ActionNavigate),
		URL:         a.URL,
		Description: a.Description,
	}
}

func (a KeyPressAction) Spec() ActionSpec {
	s := targetSpec(a.Verb, a.Target, a.Description)
	s.Key = a.Key
	return s
}

func (a SubmitAction) Spec() ActionSpec {
	return targetSpec(ActionSubmit, a.Target, a.Description)
}

func (a AssertAction) Spec() ActionSpec {
	s := targetSpec(a.Verb, a.Target, a.Description)
	s.Subtype = string(a.Subtype)
	s.Expected = a.Expected
	s.Value = a.Value
	s.URL = a.URL
	s.Attribute = a.Attribute
	return s
}

func (a EndAction) Spec() ActionSpec {
	return ActionSpec{
		Type:        string(ActionEnd),
		Action:      string(ActionEnd),
		Description: a.Description,
	}
}

func (a UnknownAction) Spec() ActionSpec { return a.Raw }

func targetSpec(verb ActionType, t Target, description string) ActionSpec {
	return ActionSpec{
		Type:        string(verb),
		Action:      string(verb),
		Selector:    t.Selector,
		Index:       t.Index,
		Description: description,
	}
}

// ExpectedValue - returns the value the assertion compares against:
// expected, then value, then url for url assertions
func (a AssertAction) ExpectedValue() any {
	if a.Expected != nil {
		return a.Expected
	}
	if a.Value != nil {
		return a.Value
	}
	if a.Subtype == AssertURL && a.URL != "" {
		return a.URL
	}
	return nil
}

// FromSpec - converts a flat spec into its typed variant
func FromSpec(s ActionSpec) Action {
	target := Target{Selector: strings.TrimSpace(s.Selector), Index: s.Index}

	switch kind := s.Kind(); kind {
	case ActionClick:
		return ClickAction{Target: target, Description: s.Description}
	case ActionInput, ActionFill:
		return FillAction{Verb: kind, Target: target, Value: ValueString(s.Value), Description: s.Description}
	case ActionSelect:
		return SelectAction{Target: target, Value: ValueString(s.Value), Description: s.Description}
	case ActionNavigate:
		return NavigateAction{URL: s.URL, Description: s.Description}
	case ActionEnter, ActionPress:
		return KeyPressAction{Verb: kind, Target: target, Key: s.Key, Description: s.Description}
	case ActionSubmit:
		return SubmitAction{Target: target, Description: s.Description}
	case ActionAssert, ActionVerify:
		return AssertAction{
			Verb:        kind,
			Subtype:     AssertionSubtype(strings.ToLower(strings.TrimSpace(s.Subtype))),
			Target:      target,
			Expected:    s.Expected,
			Value:       s.Value,
			URL:         s.URL,
			Attribute:   s.Attribute,
			Description: s.Description,
		}
	case ActionEnd:
		return EndAction{Description: s.Description}
	default:
		return UnknownAction{Raw: s}
	}
}

// TargetOf - returns the element target of an action, if it has one
func TargetOf(a Action) (Target, bool) {
	switch v := a.(type) {
	case ClickAction:
		return v.Target, true
	case FillAction:
		return v.Target, true
	case SelectAction:
		return v.Target, true
	case KeyPressAction:
		return v.Target, true
	case SubmitAction:
		return v.Target, true
	case AssertAction:
		return v.Target, v.Selector != ""
	case NavigateAction, EndAction, UnknownAction:
		return Target{}, false
	default:
		return Target{}, false
	}
}

// RequiresSelector - reports whether an action cannot run without a selector
func RequiresSelector(a Action) bool {
	switch v := a.(type) {
	case NavigateAction, EndAction, UnknownAction:
		return false
	case AssertAction:
		return v.Subtype != AssertTitle && v.Subtype != AssertURL
	default:
		return true
	}
}

// Description - returns the human description attached to an action
func Description(a Action) string {
	return a.Spec().Description
}

// ValueString - renders a loosely typed JSON value as text
func ValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
