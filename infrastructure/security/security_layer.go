package security

import (
	"strings"

	"github.com/sirupsen/logrus"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var (
	destructiveKeywords = []string{
		"delete", "remove", "удалить", "удаление",
		"cancel", "отменить", "отмена",
		"clear", "очистить",
		"reset", "сброс",
		"trash",
	}
	paymentKeywords = []string{
		"submit", "confirm", "pay", "оплатить", "подтвердить",
		"order", "заказать", "buy", "купить", "checkout",
	}
)

type SecurityLayer struct {
	logger *logrus.Logger
}

// NewSecurityLayer - creates new intent guard
func NewSecurityLayer(logger *logrus.Logger) *SecurityLayer {
	return &SecurityLayer{
		logger: logger,
	}
}

// ShouldSkip - suppresses speculative "close" actions (dismissing popups,
// banners) when the goal never asked to close anything
func (s *SecurityLayer) ShouldSkip(goal entities.Goal, action entities.Action) (bool, string) {
	desc := strings.ToLower(strings.TrimSpace(entities.Description(action)))
	if strings.HasPrefix(desc, "close") && !goal.Mentions("close") {
		s.logger.WithField("description", desc).Debug("Close action not found in goal")
		return true, "speculative close action not found in goal"
	}
	return false, ""
}

// RiskLevel - classifies an action by keyword heuristics on its selector and description
func (s *SecurityLayer) RiskLevel(action entities.Action) string {
	switch action.Type() {
	case entities.ActionNavigate, entities.ActionAssert, entities.ActionVerify, entities.ActionEnd:
		return RiskLow
	case entities.ActionClick, entities.ActionSubmit, entities.ActionEnter, entities.ActionPress:
		if s.matches(action, destructiveKeywords) || s.matches(action, paymentKeywords) {
			return RiskHigh
		}
		return RiskMedium
	case entities.ActionInput, entities.ActionFill, entities.ActionSelect:
		return RiskMedium
	}
	return RiskLow
}

func (s *SecurityLayer) matches(action entities.Action, keywords []string) bool {
	spec := action.Spec()
	lowerSelector := strings.ToLower(spec.Selector)
	lowerDesc := strings.ToLower(spec.Description)

	for _, keyword := range keywords {
		if strings.Contains(lowerSelector, keyword) || strings.Contains(lowerDesc, keyword) {
			return true
		}
	}
	return false
}

// Ensure SecurityLayer implements IntentGuard interface
var _ interfaces.IntentGuard = (*SecurityLayer)(nil)
