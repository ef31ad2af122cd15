// Package protocol builds oracle prompts and decodes oracle replies into actions.
package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"flow_navigator/domain/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var codeFence = regexp.MustCompile("(?s)```[\\w-]*[ \\t]*\\r?\\n(.*?)\\r?\\n?[ \\t]*```")

var (
	ErrEmptyReply    = errors.New("empty oracle reply")
	ErrInvalidReply  = errors.New("invalid oracle reply")
	ErrMissingAction = errors.New("each action must have a type/action field")
)

// ParseReply - decodes a raw oracle reply into actions. The reply may be one
// object or an array; any item without a type fails the whole reply.
func ParseReply(raw string) ([]entities.Action, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, ErrEmptyReply
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		if actions, ok := embeddedActions(text); ok {
			return actions, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return toActions(parsed)
}

func toActions(parsed any) ([]entities.Action, error) {
	var items []any
	switch v := parsed.(type) {
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%w: reply is neither an object nor an array", ErrInvalidReply)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no actions", ErrInvalidReply)
	}

	actions := make([]entities.Action, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidReply, i)
		}
		spec := specFromMap(obj)
		if spec.Kind() == "" {
			return nil, fmt.Errorf("%w (item %d)", ErrMissingAction, i)
		}
		actions = append(actions, entities.FromSpec(spec))
	}
	return actions, nil
}

// Decode - like ParseReply, but a bad reply becomes a single inconclusive end
// action carrying the diagnostic
func Decode(raw string) []entities.Action {
	actions, err := ParseReply(raw)
	if err != nil {
		return []entities.Action{entities.EndAction{
			Description:  fmt.Sprintf("Invalid oracle response: %v", err),
			Inconclusive: true,
		}}
	}
	return actions
}

func stripFences(text string) string {
	if m := codeFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// embeddedActions - scans prose for the first [...] or {...} value that decodes
// into valid actions, trying every opening bracket in turn
func embeddedActions(text string) ([]entities.Action, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		var parsed any
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&parsed); err != nil {
			continue
		}
		if actions, err := toActions(parsed); err == nil {
			return actions, true
		}
	}
	return nil, false
}

func specFromMap(m map[string]any) entities.ActionSpec {
	return entities.ActionSpec{
		Type:        stringField(m, "type"),
		Action:      stringField(m, "action"),
		Selector:    stringField(m, "selector"),
		Index:       indexField(m["index"]),
		Value:       m["value"],
		Key:         stringField(m, "key"),
		URL:         stringField(m, "url"),
		Description: stringField(m, "description"),
		Subtype:     stringField(m, "subtype"),
		Expected:    m["expected"],
		Attribute:   stringField(m, "attribute"),
	}
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(entities.ValueString(v))
}

func indexField(v any) *int {
	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return nil
		}
		i := int(val)
		return &i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil
		}
		return &i
	}
	return nil
}
