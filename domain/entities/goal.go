package entities

import (
	"regexp"
	"strings"
)

var numberedStep = regexp.MustCompile(`(?m)^\s*\d+\.\s*`)

// Goal represents the user story driving a run
type Goal struct {
	Text string `json:"text"`
	// DeclaredSteps is the number of numbered-list lines ("N. ...") in Text.
	DeclaredSteps int `json:"declared_steps"`
}

// NewGoal - parses goal text and counts its declared steps
func NewGoal(text string) Goal {
	return Goal{
		Text:          text,
		DeclaredSteps: len(numberedStep.FindAllStringIndex(text, -1)),
	}
}

// Mentions - reports whether the goal text contains word, case-insensitively
func (g Goal) Mentions(word string) bool {
	return strings.Contains(strings.ToLower(g.Text), strings.ToLower(word))
}

// RunStatus represents the terminal state of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "ended_complete"
	RunStatusPremature RunStatus = "ended_premature"
	RunStatusCeiling   RunStatus = "step_ceiling_reached"
	RunStatusAborted   RunStatus = "aborted"
)
