// Package consistency wraps every outbound Account Service call with a
// per-attempt timeout and bounded exponential-backoff retry, and runs
// multi-step settlement sequences in a fixed order. It does not attempt
// two-phase commit: a step that fails after earlier steps succeeded is
// reported with the applied steps so the caller can escalate, never rolled
// back automatically.
package consistency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"auction-market/internal/auctionerrors"
	"auction-market/utils"
)

// Caller applies the retry and timeout policy to a single outbound call
type Caller struct {
	timeout         time.Duration
	maxAttempts     uint64
	initialInterval time.Duration
}

// NewCaller creates a Caller. timeout bounds each attempt, maxAttempts bounds
// the total number of attempts, initialInterval seeds the backoff curve.
func NewCaller(timeout time.Duration, maxAttempts int, initialInterval time.Duration) *Caller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Caller{
		timeout:         timeout,
		maxAttempts:     uint64(maxAttempts),
		initialInterval: initialInterval,
	}
}

// Call invokes fn with retry on transient failures. Validation outcomes from
// the Account Service (insufficient funds, item not owned) are permanent and
// returned on the first attempt; anything else is retried until the attempt
// ceiling, then surfaced as ErrServiceUnavailable.
func (c *Caller) Call(ctx context.Context, op string, fn func(context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		utils.Warn("account call failed, will retry", map[string]any{
			"op":      op,
			"attempt": attempt,
			"error":   err.Error(),
		})
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxAttempts-1), ctx))
	if err == nil {
		return nil
	}
	if isPermanent(err) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s failed after %d attempts: %w: %s", op, attempt, auctionerrors.ErrServiceUnavailable, err.Error())
}

// isPermanent reports whether the error is a definitive Account Service
// answer that retrying cannot change.
func isPermanent(err error) bool {
	return errors.Is(err, auctionerrors.ErrInsufficientFunds) ||
		errors.Is(err, auctionerrors.ErrItemNotOwned)
}

// Step is one outbound call inside an ordered settlement sequence
type Step struct {
	Op string
	Do func(context.Context) error
}

// StepError reports a sequence failure, including which steps had already
// been applied. Applied steps are not rolled back; a non-empty Applied list
// is the signal for an operational alert.
type StepError struct {
	Op      string
	Applied []string
	Err     error
}

func (e *StepError) Error() string {
	if len(e.Applied) == 0 {
		return fmt.Sprintf("step %q failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("step %q failed after applying [%s]: %v", e.Op, strings.Join(e.Applied, ", "), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes the steps in order, each with the Caller's retry policy, and
// stops at the first failure. The step order is chosen by the caller to bias
// failures toward "not yet moved" over "moved twice".
func (c *Caller) Run(ctx context.Context, steps ...Step) error {
	applied := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := c.Call(ctx, step.Op, step.Do); err != nil {
			stepErr := &StepError{Op: step.Op, Applied: applied, Err: err}
			if len(applied) > 0 {
				utils.Error("settlement sequence partially applied", map[string]any{
					"failed_op": step.Op,
					"applied":   strings.Join(applied, ", "),
					"error":     err.Error(),
				})
			}
			return stepErr
		}
		applied = append(applied, step.Op)
	}
	return nil
}
