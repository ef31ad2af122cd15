package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"flow_navigator/application/executor"
	"flow_navigator/application/protocol"
	"flow_navigator/application/snapshot"
	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

// Settings controls the flow loop
type Settings struct {
	MaxSteps          int
	StepDelay         time.Duration
	NavigationTimeout time.Duration
}

// Dependencies are the collaborators the agent drives
type Dependencies struct {
	Launcher    interfaces.BrowserLauncher
	Snapshotter *snapshot.Snapshotter
	Planner     *protocol.Planner
	Executor    *executor.Executor
	Guard       interfaces.IntentGuard
	Store       interfaces.ArtifactStore
}

// Agent walks a goal through a live page one oracle-planned step at a time
type Agent struct {
	settings Settings
	deps     Dependencies
	logger   *logrus.Logger
}

// NewAgent - creates new agent instance
func NewAgent(settings Settings, deps Dependencies, logger *logrus.Logger) *Agent {
	if settings.MaxSteps <= 0 {
		settings.MaxSteps = 50
	}
	return &Agent{
		settings: settings,
		deps:     deps,
		logger:   logger,
	}
}

// Run - opens url and follows goalText until the oracle ends the flow or the
// step ceiling is hit. A premature end returns the result together with an
// *entities.PrematureEndError. The browser is closed on every path.
func (a *Agent) Run(ctx context.Context, url, goalText string) (*entities.RunResult, error) {
	goal := entities.NewGoal(goalText)
	runID := uuid.NewString()
	log := a.logger.WithField("run_id", runID)

	log.WithFields(logrus.Fields{
		"url":            url,
		"declared_steps": goal.DeclaredSteps,
	}).Info("Starting guided flow")

	session, err := a.deps.Launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser")
		}
	}()

	page := session.Page()
	state := newRunState(goal)
	result := &entities.RunResult{
		RunID:         runID,
		Status:        entities.RunStatusRunning,
		ExpectedSteps: goal.DeclaredSteps,
	}

	if err := page.Goto(ctx, url, a.settings.NavigationTimeout); err != nil {
		return a.abort(result, state, fmt.Errorf("failed to open %s: %w", url, err))
	}
	log.Info("Page loaded")

	var ended *entities.PrematureEndError
	for step := 0; step < a.settings.MaxSteps && state.status == entities.RunStatusRunning; step++ {
		if err := a.pause(ctx); err != nil {
			return a.abort(result, state, err)
		}
		state.steps = step

		stepLog := log.WithField("step", step+1)
		snap := a.deps.Snapshotter.Capture(ctx, page)
		state.domHistory = append(state.domHistory, snap)

		html, err := page.Content(ctx)
		if err != nil {
			stepLog.WithError(err).Debug("Could not read page content for stagnation check")
		}
		if state.observe(newFingerprint(html, snap)) {
			stepLog.Warn("DOM unchanged since previous step, attempting to continue with next action")
		}

		title, err := page.Title(ctx)
		if err != nil {
			stepLog.WithError(err).Debug("Could not read page title")
		}

		actions, err := a.deps.Planner.NextActions(ctx, protocol.PlanRequest{
			Goal:     goal,
			History:  state.history,
			Snapshot: snap,
			Title:    title,
			Step:     step,
		})
		if err != nil {
			if ctx.Err() != nil {
				return a.abort(result, state, ctx.Err())
			}
			stepLog.WithError(err).Warn("Oracle unavailable, skipping step")
			continue
		}

		if end, ok := findEnd(actions); ok {
			if end.Inconclusive {
				stepLog.Warn(end.Description)
				continue
			}

			state.record(step, page.URL(), end, entities.ExecResult{Success: true, Message: end.Description})
			if step+1 < goal.DeclaredSteps {
				stepLog.WithFields(logrus.Fields{
					"completed": step,
					"expected":  goal.DeclaredSteps,
				}).Error("Flow ended prematurely, not all steps completed")
				state.status = entities.RunStatusPremature
				ended = &entities.PrematureEndError{
					CompletedSteps: step,
					ExpectedSteps:  goal.DeclaredSteps,
				}
				break
			}

			stepLog.WithField("description", end.Description).Info("Reached end of flow")
			state.status = entities.RunStatusCompleted
			break
		}

		a.applyBatch(ctx, page, state, step, snap, actions, stepLog)
		state.steps = step + 1
	}

	if state.status == entities.RunStatusRunning {
		log.WithField("max_steps", a.settings.MaxSteps).Warn("Step ceiling reached")
		state.status = entities.RunStatusCeiling
		state.steps = a.settings.MaxSteps
	}

	state.domHistory = append(state.domHistory, a.deps.Snapshotter.Capture(ctx, page))

	paths, err := a.deps.Store.Save(state.artifacts())
	a.fill(result, state)
	result.DOMHistoryPath = paths.DOMHistory
	result.ActionLogPath = paths.ActionLog
	if err != nil {
		result.Message = err.Error()
		return result, fmt.Errorf("failed to persist artifacts: %w", err)
	}

	if ended != nil {
		ended.ActionLog = state.actionLog
		result.Message = ended.Error()
		return result, ended
	}

	log.WithFields(logrus.Fields{
		"status":     result.Status,
		"steps":      result.StepsTaken,
		"snapshots":  result.Snapshots,
		"action_log": result.ActionLogPath,
	}).Info("Flow finished")
	return result, nil
}

// applyBatch - executes the oracle's actions for one step in order.
// A failed assertion abandons the rest of the batch.
func (a *Agent) applyBatch(ctx context.Context, page interfaces.Page, state *runState, step int, snap entities.PageSnapshot, actions []entities.Action, log *logrus.Entry) {
	for _, action := range actions {
		actionLog := log.WithFields(logrus.Fields{
			"action_type": action.Type(),
			"selector":    action.Spec().Selector,
		})

		switch act := action.(type) {
		case entities.AssertAction:
			res := a.deps.Executor.Execute(ctx, page, act)
			state.record(step, page.URL(), act, res)
			state.remember(step, page.URL(), act, snap)
			if !res.Success {
				actionLog.WithField("message", res.Message).Error("Assertion failed, abandoning remaining actions of this step")
				return
			}
			continue

		case entities.NavigateAction:
			if act.URL == page.URL() {
				actionLog.WithField("url", act.URL).Info("Skipping redundant navigation")
				state.remember(step, page.URL(), act, snap)
				continue
			}
		}

		if skip, reason := a.deps.Guard.ShouldSkip(state.goal, action); skip {
			actionLog.WithField("reason", reason).Info("Skipping action")
			continue
		}

		actionLog.WithFields(logrus.Fields{
			"description": entities.Description(action),
			"risk":        a.deps.Guard.RiskLevel(action),
		}).Info("Performing action")

		res := a.deps.Executor.Execute(ctx, page, action)
		state.record(step, page.URL(), action, res)
		if !res.Success {
			actionLog.WithField("message", res.Message).Warn("Skipping failed action")
			continue
		}
		state.remember(step, page.URL(), action, snap)
	}
}

// pause - waits the pacing delay between steps
func (a *Agent) pause(ctx context.Context) error {
	if a.settings.StepDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.settings.StepDelay):
		return nil
	}
}

func (a *Agent) abort(result *entities.RunResult, state *runState, err error) (*entities.RunResult, error) {
	state.status = entities.RunStatusAborted
	a.fill(result, state)
	result.Message = err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return result, fmt.Errorf("flow canceled: %w", err)
	}
	return result, err
}

func (a *Agent) fill(result *entities.RunResult, state *runState) {
	result.Status = state.status
	result.StepsTaken = state.steps
	result.Snapshots = len(state.domHistory)
	result.ActionLog = state.actionLog
}

func findEnd(actions []entities.Action) (entities.EndAction, bool) {
	for _, action := range actions {
		if end, ok := action.(entities.EndAction); ok {
			return end, true
		}
	}
	return entities.EndAction{}, false
}
