// Package poller drives repeated discovery attempts until the discovery
// service reports a terminal result, and reconciles the discovered catalog
// with a previous stream selection.
//
// A run moves through an explicit state machine:
//
//	pending -> pending | success | error | cancelled
//
// The only suspension point is the wait between two pending attempts, which
// is also where cancellation is observed.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/metrics"
	"github.com/datazip-inc/olake-configurator/reconciler"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/datazip-inc/olake-configurator/utils/logger"
)

type State string

const (
	StatePending   State = "pending"
	StateSuccess   State = "success"
	StateError     State = "error"
	StateCancelled State = "cancelled"
)

func (s State) Terminal() bool {
	return s != StatePending
}

// Discoverer performs one discovery attempt
type Discoverer interface {
	Discover(ctx context.Context, endpoint string, config map[string]any) (*types.PollResult, error)
}

// Outcome is the terminal result of a poll run
type Outcome struct {
	RequestID  string
	State      State
	Streams    []*types.ConfiguredStream
	Summary    reconciler.Summary
	Err        error
	Attempts   int
	Duration   time.Duration
	Superseded bool
}

type Poller struct {
	discoverer       Discoverer
	interval         time.Duration
	timeout          time.Duration
	longLoadingAfter time.Duration
	onAttempt        func(attempt int, result *types.PollResult, err error)
}

type Option func(*Poller)

func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithTimeout bounds a whole run; zero disables the bound
func WithTimeout(timeout time.Duration) Option {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

// WithLongLoadingNotice sets when the "may take a while" notice is logged; zero disables it
func WithLongLoadingNotice(after time.Duration) Option {
	return func(p *Poller) {
		p.longLoadingAfter = after
	}
}

// WithAttemptHook registers fn to observe every attempt
func WithAttemptHook(fn func(attempt int, result *types.PollResult, err error)) Option {
	return func(p *Poller) {
		p.onAttempt = fn
	}
}

func New(discoverer Discoverer, opts ...Option) *Poller {
	p := &Poller{
		discoverer:       discoverer,
		interval:         constants.DefaultPollInterval,
		timeout:          constants.DefaultPollTimeout,
		longLoadingAfter: constants.DefaultLongLoadingAfter,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run polls endpoint until a terminal state. On success the discovered catalog
// is reconciled with previous exactly once.
func (p *Poller) Run(ctx context.Context, endpoint string, config map[string]any, previous []*types.ConfiguredStream) *Outcome {
	startTime := time.Now()
	outcome := &Outcome{State: StatePending}

	pollCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if p.longLoadingAfter > 0 {
		notice := time.AfterFunc(p.longLoadingAfter, func() {
			logger.Info(constants.LongLoadingMessage)
		})
		defer notice.Stop()
	}

	finish := func(state State, err error) *Outcome {
		outcome.State = state
		outcome.Err = err
		outcome.Duration = time.Since(startTime)
		if err != nil {
			metrics.DiscoveryError(discovery.Classify(err))
		}
		metrics.PollDuration(string(state), outcome.Duration.Seconds())
		return outcome
	}

	for {
		outcome.Attempts++
		result, err := p.discoverer.Discover(pollCtx, endpoint, config)
		if p.onAttempt != nil {
			p.onAttempt(outcome.Attempts, result, err)
		}

		if err != nil {
			metrics.PollAttempt(discovery.Classify(err))
			if state, stopErr := p.interrupted(ctx, pollCtx); state != "" {
				return finish(state, stopErr)
			}
			return finish(StateError, err)
		}

		metrics.PollAttempt(result.Kind.String())
		switch result.Kind {
		case types.PollPending:
			logger.Debugf("discovery attempt %d is pending, retrying in %s", outcome.Attempts, p.interval)
			if state, stopErr := p.wait(ctx, pollCtx); state != "" {
				return finish(state, stopErr)
			}
		case types.PollSuccess:
			outcome.Streams = reconciler.Reconcile(previous, result.Streams)
			outcome.Summary = reconciler.Summarize(previous, outcome.Streams)
			metrics.ReconciledStreams("carried", outcome.Summary.Carried)
			metrics.ReconciledStreams("synthesized", outcome.Summary.Synthesized)
			metrics.ReconciledStreams("dropped", outcome.Summary.Dropped)
			return finish(StateSuccess, nil)
		case types.PollError:
			return finish(StateError, &discovery.UpstreamError{Message: result.Message})
		default:
			return finish(StateError, &discovery.InternalError{Reason: "discovery response matched no known shape"})
		}
	}
}

// wait sleeps for the poll interval; a non-empty state means the run must stop
func (p *Poller) wait(ctx, pollCtx context.Context) (State, error) {
	if pollCtx.Err() != nil {
		return p.interrupted(ctx, pollCtx)
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return "", nil
	case <-pollCtx.Done():
		return p.interrupted(ctx, pollCtx)
	}
}

// interrupted distinguishes a cancelled caller from an elapsed poll timeout
func (p *Poller) interrupted(ctx, pollCtx context.Context) (State, error) {
	if ctx.Err() != nil {
		return StateCancelled, ctx.Err()
	}
	if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		return StateError, &discovery.UpstreamError{
			Message: fmt.Sprintf("discovery did not complete within %s", p.timeout),
			Err:     pollCtx.Err(),
		}
	}
	return "", nil
}
