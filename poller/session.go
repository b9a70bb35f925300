package poller

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/datazip-inc/olake-configurator/utils/safego"
	"github.com/mitchellh/hashstructure"
	"github.com/oklog/ulid"
)

// Request is one validation run started through a Session
type Request struct {
	ID string

	configHash uint64
	cancel     context.CancelFunc
	done       chan struct{}
	outcome    *Outcome
}

// Done is closed once the request reached a terminal state
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request finishes or ctx is done
func (r *Request) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops the request at its next retry boundary
func (r *Request) Cancel() {
	r.cancel()
}

// Session serialises validation requests for one source: the latest request
// wins and outcomes of superseded requests are discarded.
type Session struct {
	poller *Poller

	mu        sync.Mutex
	current   *Request
	latest    *Outcome
	validated *Request // last request that finished successfully and is still current
}

func NewSession(p *Poller) *Session {
	return &Session{poller: p}
}

// Start cancels any in-flight request and begins a new one
func (s *Session) Start(ctx context.Context, endpoint string, config map[string]any, previous []*types.ConfiguredStream) (*Request, error) {
	hash, err := hashstructure.Hash(config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to hash connector config: %s", err)
	}

	return s.start(ctx, hash, endpoint, config, previous), nil
}

// Revalidate starts a new request only when config differs from the one
// behind the in-flight or last successful request; otherwise that request is returned.
func (s *Session) Revalidate(ctx context.Context, endpoint string, config map[string]any, previous []*types.ConfiguredStream) (*Request, error) {
	hash, err := hashstructure.Hash(config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to hash connector config: %s", err)
	}

	s.mu.Lock()
	current := s.current
	reusable := current != nil && current.configHash == hash && (s.validated == current || !isDone(current))
	s.mu.Unlock()

	if reusable {
		logger.Debugf("connector config unchanged, reusing request %s", current.ID)
		return current, nil
	}

	return s.start(ctx, hash, endpoint, config, previous), nil
}

// Invalidate forgets the last successful validation so the next Revalidate polls again
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.validated = nil
	s.mu.Unlock()
}

// Latest returns the outcome of the most recent request that was not superseded
func (s *Session) Latest() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close cancels the in-flight request, if any
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
	}
}

func (s *Session) start(ctx context.Context, hash uint64, endpoint string, config map[string]any, previous []*types.ConfiguredStream) *Request {
	reqCtx, cancel := context.WithCancel(ctx)
	req := &Request{
		ID:         ulid.MustNew(ulid.Now(), rand.Reader).String(),
		configHash: hash,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if s.current != nil {
		logger.Debugf("request %s superseded by %s", s.current.ID, req.ID)
		s.current.cancel()
	}
	s.current = req
	s.validated = nil
	s.mu.Unlock()

	safego.Run(func() {
		var outcome *Outcome
		defer func() {
			if outcome == nil {
				outcome = &Outcome{State: StateError, Err: &discovery.InternalError{Reason: "discovery poll aborted"}}
			}
			s.complete(req, outcome)
		}()

		outcome = s.poller.Run(reqCtx, endpoint, config, previous)
	})

	return req
}

func (s *Session) complete(req *Request, outcome *Outcome) {
	outcome.RequestID = req.ID

	s.mu.Lock()
	if s.current == req {
		s.latest = outcome
		if outcome.State == StateSuccess {
			s.validated = req
		}
	} else {
		outcome.Superseded = true
		logger.Debugf("discarding %s outcome of superseded request %s", outcome.State, req.ID)
	}
	req.outcome = outcome
	s.mu.Unlock()

	req.cancel()
	close(req.done)
}

func isDone(req *Request) bool {
	select {
	case <-req.done:
		return true
	default:
		return false
	}
}
