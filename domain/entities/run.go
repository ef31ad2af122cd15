package entities

import "fmt"

// RunResult summarizes a finished run
type RunResult struct {
	RunID          string           `json:"run_id"`
	Status         RunStatus        `json:"status"`
	Message        string           `json:"message"`
	StepsTaken     int              `json:"steps_taken"`
	ExpectedSteps  int              `json:"expected_steps"`
	Snapshots      int              `json:"snapshots"`
	DOMHistoryPath string           `json:"dom_history_path,omitempty"`
	ActionLogPath  string           `json:"action_log_path,omitempty"`
	ActionLog      []ActionLogEntry `json:"actions_log"`
}

// PrematureEndError is returned when the oracle ends the flow before every declared step ran
type PrematureEndError struct {
	CompletedSteps int              `json:"completed_steps"`
	ExpectedSteps  int              `json:"expected_steps"`
	ActionLog      []ActionLogEntry `json:"actions_log"`
}

func (e *PrematureEndError) Error() string {
	return fmt.Sprintf("oracle returned 'end' before completing all steps: expected %d, completed %d",
		e.ExpectedSteps, e.CompletedSteps)
}

// Artifacts is what a run persists at its end
type Artifacts struct {
	DOMHistory []PageSnapshot
	ActionLog  []ActionLogEntry
}

// ArtifactPaths tells where the artifacts were written
type ArtifactPaths struct {
	DOMHistory string `json:"dom_history"`
	ActionLog  string `json:"action_log"`
}
