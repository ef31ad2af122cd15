package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"flow_navigator/domain/interfaces"
)

type rateLimitedOracle struct {
	inner   interfaces.Oracle
	limiter *rate.Limiter
}

// NewRateLimited - spaces oracle calls to at most rpm per minute. A non-positive
// rpm returns inner unchanged.
func NewRateLimited(inner interfaces.Oracle, rpm int) interfaces.Oracle {
	if rpm <= 0 {
		return inner
	}
	return &rateLimitedOracle{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (o *rateLimitedOracle) Query(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return o.inner.Query(ctx, userPrompt, systemPrompt)
}
