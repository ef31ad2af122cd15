package entities

// HistoryEntry is one step of the transcript shown to the oracle and archived
type HistoryEntry struct {
	Step     int          `json:"step"`
	URL      string       `json:"url"`
	Action   ActionSpec   `json:"action"`
	Snapshot PageSnapshot `json:"dom_snippet"`
}

// ActionLogEntry is the serialization-friendly record of one executed action
type ActionLogEntry struct {
	Step        int    `json:"step"`
	ActionType  string `json:"action_type"`
	Selector    string `json:"selector,omitempty"`
	Index       *int   `json:"index,omitempty"`
	Value       any    `json:"value,omitempty"`
	Key         string `json:"key,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	Expected    any    `json:"expected,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Actual      any    `json:"actual,omitempty"`
}

// NewActionLogEntry - projects an action and its outcome into a log entry
func NewActionLogEntry(step int, url string, action Action, result ExecResult) ActionLogEntry {
	spec := action.Spec()
	entry := ActionLogEntry{
		Step:        step,
		ActionType:  string(action.Type()),
		Selector:    spec.Selector,
		Index:       spec.Index,
		Value:       spec.Value,
		Key:         spec.Key,
		Subtype:     spec.Subtype,
		Expected:    spec.Expected,
		Description: spec.Description,
		URL:         url,
		Success:     result.Success,
		Message:     result.Message,
		Actual:      result.Actual,
	}
	if a, ok := action.(AssertAction); ok {
		entry.Expected = a.ExpectedValue()
	}
	return entry
}
