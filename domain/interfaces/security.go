package interfaces

import "flow_navigator/domain/entities"

// IntentGuard defines checks applied to oracle actions before execution
type IntentGuard interface {
	// ShouldSkip reports whether the action goes beyond what the goal asked for
	ShouldSkip(goal entities.Goal, action entities.Action) (bool, string)

	// RiskLevel returns the risk level of an action
	RiskLevel(action entities.Action) string
}
