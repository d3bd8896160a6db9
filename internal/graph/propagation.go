package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obonovai/graphonauts/internal/types"
)

// Propagation configures how an adapter waits for asynchronous schema changes to become
// visible. The zero value does not wait at all.
//
// With a convergence check, Await polls every PollInterval until the check reports true
// or Timeout elapses, then waits Settle so that storage nodes pick up the new metadata
// on their next heartbeat. Without a check, or with PollInterval zero, Await sleeps
// FixedDelay. Await itself treats a zero Timeout as unbounded; Validate rejects that
// combination in configuration.
type Propagation struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" json:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Settle       time.Duration `mapstructure:"settle" yaml:"settle" json:"settle"`
	FixedDelay   time.Duration `mapstructure:"fixed_delay" yaml:"fixed_delay" json:"fixed_delay"`
}

// Validate rejects negative durations and polling without a timeout.
func (p Propagation) Validate(backend string) error {
	for name, d := range map[string]time.Duration{
		"poll_interval": p.PollInterval,
		"timeout":       p.Timeout,
		"settle":        p.Settle,
		"fixed_delay":   p.FixedDelay,
	} {
		if d < 0 {
			return types.NewError(ErrCodeGraphInvalidConfig,
				fmt.Sprintf("%s: propagation %s cannot be negative", backend, name))
		}
	}
	if p.PollInterval > 0 && p.Timeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig,
			backend+": propagation timeout must be positive when poll_interval is set")
	}
	return nil
}

// ConvergenceCheck reports whether a schema change is visible. An error counts as
// "not yet" and is kept for the timeout message.
type ConvergenceCheck func(ctx context.Context) (bool, error)

// Await blocks until step has propagated.
func (p Propagation) Await(ctx context.Context, logger *slog.Logger, step string, check ConvergenceCheck) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	if check == nil || p.PollInterval <= 0 {
		if p.FixedDelay > 0 {
			logger.Debug("waiting fixed propagation delay", "step", step, "delay", p.FixedDelay)
		}
		return sleep(ctx, p.FixedDelay)
	}

	deadline := start.Add(p.Timeout)
	var lastErr error
	for attempt := 1; ; attempt++ {
		ok, err := check(ctx)
		if ok {
			logger.Debug("schema change propagated",
				"step", step,
				"attempts", attempt,
				"elapsed", time.Since(start))
			return sleep(ctx, p.Settle)
		}
		if err != nil {
			lastErr = err
		}

		if p.Timeout > 0 && !time.Now().Add(p.PollInterval).Before(deadline) {
			return types.WrapError(ErrCodeGraphPropagationTimeout,
				fmt.Sprintf("%s did not propagate within %s", step, p.Timeout), lastErr)
		}
		if err := sleep(ctx, p.PollInterval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
