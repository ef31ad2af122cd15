package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

// Planner asks the oracle for the next batch of actions
type Planner struct {
	oracle  interfaces.Oracle
	timeout time.Duration
	logger  *logrus.Logger
}

// NewPlanner - creates new planner. A zero timeout leaves the oracle call
// bounded only by ctx.
func NewPlanner(oracle interfaces.Oracle, timeout time.Duration, logger *logrus.Logger) *Planner {
	return &Planner{
		oracle:  oracle,
		timeout: timeout,
		logger:  logger,
	}
}

// NextActions - queries the oracle for the step in req. Transport errors are
// returned; unparseable replies come back as one inconclusive end action.
func (p *Planner) NextActions(ctx context.Context, req PlanRequest) ([]entities.Action, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.logger.WithFields(logrus.Fields{
		"step":         req.Step + 1,
		"prompt_chars": len(prompt),
	}).Debug("Querying oracle")

	raw, err := p.oracle.Query(ctx, prompt, SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("oracle query failed: %w", err)
	}

	p.logger.WithField("step", req.Step+1).Debugf("Raw oracle response: %s", raw)

	actions, err := ParseReply(raw)
	if err != nil {
		p.logger.WithError(err).WithField("step", req.Step+1).Warn("Could not parse oracle response, skipping step")
		return Decode(raw), nil
	}
	return actions, nil
}
