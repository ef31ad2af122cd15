// Package executor applies oracle actions to the live page with bounded retries.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"flow_navigator/application/assertion"
	"flow_navigator/application/retry"
	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

const defaultKey = "Enter"

// Settings controls timeouts and the retry budget
type Settings struct {
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	Attempts          int
	RetryDelay        time.Duration
}

// Executor dispatches actions to browser primitives
type Executor struct {
	settings  Settings
	evaluator *assertion.Evaluator
	logger    *logrus.Logger
}

// NewExecutor - creates new action executor
func NewExecutor(settings Settings, evaluator *assertion.Evaluator, logger *logrus.Logger) *Executor {
	if settings.Attempts < 1 {
		settings.Attempts = 1
	}
	return &Executor{
		settings:  settings,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Execute - applies one action and reports the outcome. Errors never escape:
// they end up in the result message.
func (e *Executor) Execute(ctx context.Context, page interfaces.Page, action entities.Action) entities.ExecResult {
	log := e.logger.WithFields(logrus.Fields{
		"action_type": action.Type(),
		"selector":    action.Spec().Selector,
	})

	if _, ok := action.(entities.UnknownAction); ok {
		err := fmt.Errorf("%w: %s", ErrUnknownAction, action.Type())
		log.Error(err.Error())
		return entities.ExecResult{Message: err.Error(), Attempts: 1}
	}

	if entities.RequiresSelector(action) {
		if t, _ := entities.TargetOf(action); t.Selector == "" {
			log.Error(ErrMissingSelector.Error())
			return entities.ExecResult{Message: "No selector provided for action.", Attempts: 1}
		}
	}

	switch a := action.(type) {
	case entities.EndAction:
		return entities.ExecResult{Success: true, Message: "Flow ended.", Attempts: 1}

	case entities.AssertAction:
		var loc interfaces.Locator
		if a.Selector != "" {
			loc = PickFrom(page.Locator(a.Selector), a.Index)
		}
		return entities.FromVerdict(e.evaluator.Evaluate(ctx, page, a, loc))

	case entities.NavigateAction:
		if a.URL == "" {
			log.Error(ErrMissingURL.Error())
			return entities.ExecResult{Message: ErrMissingURL.Error(), Attempts: 1}
		}
		if page.URL() == a.URL {
			log.WithField("url", a.URL).Info("Already at URL, skipping navigation")
			return entities.ExecResult{Success: true, Message: "Already at target URL.", Attempts: 1}
		}
	}

	var message string
	attempts, err := retry.Do(ctx, retry.Policy{
		MaxAttempts: e.settings.Attempts,
		Delay:       e.settings.RetryDelay,
		Retryable:   IsRetryable,
	}, func(attempt int) error {
		msg, err := e.attempt(ctx, page, action)
		message = msg
		return err
	}, func(attempt int, err error, next time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"retry":   next,
		}).WithError(err).Warn("Action attempt failed")
	})

	if err != nil {
		log.WithField("attempts", attempts).WithError(err).Error("Action failed")
		return entities.ExecResult{Message: err.Error(), Attempts: attempts}
	}
	return entities.ExecResult{Success: true, Message: message, Attempts: attempts}
}

func (e *Executor) attempt(ctx context.Context, page interfaces.Page, action entities.Action) (string, error) {
	timeout := e.settings.ActionTimeout

	if nav, ok := action.(entities.NavigateAction); ok {
		if err := page.Goto(ctx, nav.URL, e.settings.NavigationTimeout); err != nil {
			return "", err
		}
		return "Navigation performed successfully.", nil
	}

	target, _ := entities.TargetOf(action)
	loc, err := e.resolve(ctx, page, target)
	if err != nil {
		return "", err
	}

	switch a := action.(type) {
	case entities.ClickAction:
		if err := loc.Click(timeout); err != nil {
			return "", err
		}
		return "Click action performed successfully.", nil

	case entities.FillAction:
		if err := loc.Fill(a.Value, timeout); err != nil {
			return "", err
		}
		return "Fill action performed successfully.", nil

	case entities.SelectAction:
		if err := loc.SelectOption(a.Value, timeout); err != nil {
			return "", err
		}
		return "Select action performed successfully.", nil

	case entities.KeyPressAction:
		key := a.Key
		if key == "" {
			key = defaultKey
		}
		if err := loc.Press(key, timeout); err != nil {
			return "", err
		}
		return "Key press performed successfully.", nil

	case entities.SubmitAction:
		if err := loc.SubmitForm(timeout); err != nil {
			return "", err
		}
		return "Form submitted successfully.", nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownAction, action.Type())
}

// resolve - waits for the selector, then picks and checks the element to act on
func (e *Executor) resolve(ctx context.Context, page interfaces.Page, t entities.Target) (interfaces.Locator, error) {
	if err := page.WaitForSelector(ctx, t.Selector, e.settings.ActionTimeout); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, t.Selector, err)
	}

	base := page.Locator(t.Selector)
	count, err := base.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t.Selector)
	}
	if count > 1 {
		e.logger.WithFields(logrus.Fields{
			"selector": t.Selector,
			"matches":  count,
		}).Warn("Selector matched multiple elements, disambiguating by index")
	}

	loc := Pick(base, count, t.Index)

	ok, err := loc.IsInteractable()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInteractable, t.Selector)
	}
	return loc, nil
}

// Pick - chooses among count matches. A single match is used as is; with
// several, index wins when in range and the first match otherwise.
func Pick(base interfaces.Locator, count int, index *int) interfaces.Locator {
	if count > 1 && index != nil && *index >= 0 && *index < count {
		return base.Nth(*index)
	}
	return base.Nth(0)
}

// PickFrom - like Pick, counting the matches itself
func PickFrom(base interfaces.Locator, index *int) interfaces.Locator {
	count, err := base.Count()
	if err != nil {
		return base.Nth(0)
	}
	return Pick(base, count, index)
}
