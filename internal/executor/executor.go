// Package executor runs a list of checks against a fact provider.
//
// Checks are data, not control flow: a check that errors, panics, or times
// out resolves to an outcome instead of aborting the batch. Execution is
// concurrent under a bounded worker pool; the result slice is nevertheless
// returned in the registry's stable order.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Defaults applied when the caller leaves Options fields zero.
const (
	DefaultWorkers      = 6
	DefaultCheckTimeout = 20 * time.Second
	defaultRetryDelay   = 500 * time.Millisecond
)

// Result pairs a check with its outcome.
type Result struct {
	Check   checks.CheckDefinition
	Outcome models.CheckOutcome
}

// Options configures an Executor.
type Options struct {
	// Workers bounds check concurrency. Defaults to DefaultWorkers.
	Workers int

	// CheckTimeout bounds each check's fact calls. Defaults to DefaultCheckTimeout.
	CheckTimeout time.Duration

	// RetryDelay is the backoff before the single retry of a transient
	// provider failure. Defaults to 500ms.
	RetryDelay time.Duration

	Logger zerolog.Logger
}

// Executor runs checks concurrently with per-check isolation.
type Executor struct {
	workers    int
	timeout    time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// New returns an Executor with opts applied over the defaults.
func New(opts Options) *Executor {
	e := &Executor{
		workers:    opts.Workers,
		timeout:    opts.CheckTimeout,
		retryDelay: opts.RetryDelay,
		log:        opts.Logger,
	}
	if e.workers <= 0 {
		e.workers = DefaultWorkers
	}
	if e.timeout <= 0 {
		e.timeout = DefaultCheckTimeout
	}
	if e.retryDelay <= 0 {
		e.retryDelay = defaultRetryDelay
	}
	return e
}

// Run executes defs against provider and returns one Result per completed
// check, in the order of defs. The second return value is true when the run
// was cancelled before every check completed; in-flight checks are allowed to
// finish and their outcomes are kept.
func (e *Executor) Run(
	ctx context.Context,
	defs []checks.CheckDefinition,
	provider facts.Provider,
	target checks.Target,
) ([]Result, bool) {
	type slot struct {
		outcome models.CheckOutcome
		done    bool
	}
	slots := make([]slot, len(defs))

	sem := make(chan struct{}, e.workers)
	g, gctx := errgroup.WithContext(ctx)

CHECKS:
	for i, def := range defs {
		i, def := i, def
		select {
		case sem <- struct{}{}: // acquire worker slot; blocks at capacity
		case <-ctx.Done():
			break CHECKS // cancelled; leave remaining checks unstarted
		}

		g.Go(func() error {
			defer func() { <-sem }()
			// Each slot is written by exactly one goroutine, so no lock is
			// needed around the result fold.
			slots[i] = slot{outcome: e.runOne(gctx, def, provider, target), done: true}
			return nil
		})
	}

	// Workers never return errors; Wait only synchronises completion.
	_ = g.Wait()

	results := make([]Result, 0, len(defs))
	partial := false
	for i, def := range defs {
		if !slots[i].done {
			partial = true
			continue
		}
		results = append(results, Result{Check: def, Outcome: slots[i].outcome})
	}
	return results, partial
}

// runOne executes a single check with timeout, panic recovery, one retry on
// transient provider failure, and error-to-outcome translation.
func (e *Executor) runOne(
	ctx context.Context,
	def checks.CheckDefinition,
	provider facts.Provider,
	target checks.Target,
) models.CheckOutcome {
	outcome, err := e.attempt(ctx, def, provider, target)
	if err != nil && facts.IsTransient(err) && ctx.Err() == nil {
		e.log.Debug().Str("check", def.ID).Err(err).Msg("transient failure, retrying once")
		select {
		case <-time.After(e.retryDelay):
			outcome, err = e.attempt(ctx, def, provider, target)
		case <-ctx.Done():
			// Cancelled while backing off; report the original failure.
		}
	}

	if err != nil {
		outcome = translate(err)
	}
	e.log.Debug().
		Str("check", def.ID).
		Str("category", string(def.Category)).
		Str("status", string(outcome.Status)).
		Msg(outcome.Message)
	return outcome
}

// attempt runs the check function once under the per-check timeout,
// converting panics into errors. The check context is detached from the
// parent's cancellation: on scan cancellation, in-flight checks finish (or
// time out) and their outcomes are kept for the partial report.
func (e *Executor) attempt(
	ctx context.Context,
	def checks.CheckDefinition,
	provider facts.Provider,
	target checks.Target,
) (outcome models.CheckOutcome, err error) {
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return def.Run(checkCtx, target, provider)
}

// translate maps a check-level error onto an outcome: unavailable
// capabilities and exhausted rate limits are SKIPs, missing read access fails
// with a grant hint, timeouts fail with a "timeout" message, and anything
// else is a generic execution failure.
func translate(err error) models.CheckOutcome {
	switch {
	case errors.Is(err, facts.ErrUnavailable):
		return models.CheckOutcome{
			Status:  models.StatusSkip,
			Message: "capability unavailable: " + err.Error(),
		}
	case errors.Is(err, facts.ErrRateLimited):
		return models.CheckOutcome{
			Status:  models.StatusSkip,
			Message: "provider rate limited after retry: " + err.Error(),
		}
	case errors.Is(err, facts.ErrUnauthorized):
		return models.CheckOutcome{
			Status:  models.StatusFail,
			Message: "unauthorized: grant the scanner read access to this signal: " + err.Error(),
		}
	case errors.Is(err, context.DeadlineExceeded):
		return models.CheckOutcome{
			Status:  models.StatusFail,
			Message: "timeout: " + err.Error(),
		}
	default:
		return models.CheckOutcome{
			Status:  models.StatusFail,
			Message: "check execution error: " + err.Error(),
		}
	}
}
