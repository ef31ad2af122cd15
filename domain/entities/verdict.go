package entities

// Verdict represents the outcome of one assertion
type Verdict struct {
	Subtype     AssertionSubtype `json:"subtype"`
	Selector    string           `json:"selector,omitempty"`
	Success     bool             `json:"success"`
	Actual      any              `json:"actual"`
	Expected    any              `json:"expected"`
	Message     string           `json:"message"`
	Description string           `json:"description"`
}

// ExecResult represents the result of executing an action
type ExecResult struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Actual   any      `json:"actual,omitempty"`
	Attempts int      `json:"attempts"`
	Verdict  *Verdict `json:"verdict,omitempty"`
}

// FromVerdict - wraps an assertion verdict as an execution result
func FromVerdict(v Verdict) ExecResult {
	return ExecResult{
		Success:  v.Success,
		Message:  v.Message,
		Actual:   v.Actual,
		Attempts: 1,
		Verdict:  &v,
	}
}
