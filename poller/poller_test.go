package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPoller(d Discoverer, opts ...Option) *Poller {
	defaults := []Option{
		WithInterval(time.Millisecond),
		WithTimeout(5 * time.Second),
		WithLongLoadingNotice(0),
	}
	return New(d, append(defaults, opts...)...)
}

func TestPoller_PendingThenSuccess(t *testing.T) {
	users := &types.ConfiguredStream{
		SyncMode:            types.INCREMENTAL,
		DestinationSyncMode: types.APPEND,
		Stream:              types.NewStream("users", nil, types.INCREMENTAL),
	}

	d := &scriptedDiscoverer{steps: []step{
		{result: types.Pending()},
		{result: types.Pending()},
		{result: types.Success([]*types.Stream{
			types.NewStream("users", nil, types.FULLREFRESH, types.INCREMENTAL),
			types.NewStream("orders", nil, types.FULLREFRESH),
		})},
	}}

	var seen []types.PollResultKind
	p := newTestPoller(d, WithAttemptHook(func(_ int, result *types.PollResult, _ error) {
		seen = append(seen, result.Kind)
	}))

	outcome := p.Run(context.Background(), "/catalog", map[string]any{}, []*types.ConfiguredStream{users})

	assert.Equal(t, StateSuccess, outcome.State)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, d.Calls())
	assert.Equal(t, []types.PollResultKind{types.PollPending, types.PollPending, types.PollSuccess}, seen)

	require.Len(t, outcome.Streams, 2)
	assert.Same(t, users, outcome.Streams[0])
	assert.Equal(t, types.OVERWRITE, outcome.Streams[1].DestinationSyncMode)
	assert.Equal(t, 1, outcome.Summary.Carried)
	assert.Equal(t, 1, outcome.Summary.Synthesized)
}

func TestPoller_TerminalErrors(t *testing.T) {
	testCases := []struct {
		name         string
		step         step
		wantType     string
		wantAttempts int
	}{
		{
			name:         "service message",
			step:         step{result: types.Failure("bad credentials")},
			wantType:     discovery.ErrorTypeUpstream,
			wantAttempts: 1,
		},
		{
			name:         "validation failure",
			step:         step{err: &discovery.ValidationError{Field: "name", Index: 0, Reason: "is not a string"}},
			wantType:     discovery.ErrorTypeValidation,
			wantAttempts: 1,
		},
		{
			name:         "transport failure",
			step:         step{err: &discovery.UpstreamError{Err: errors.New("connection refused")}},
			wantType:     discovery.ErrorTypeUpstream,
			wantAttempts: 1,
		},
		{
			name:         "unknown shape",
			step:         step{result: &types.PollResult{}},
			wantType:     discovery.ErrorTypeInternal,
			wantAttempts: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := &scriptedDiscoverer{steps: []step{{result: types.Pending()}, tc.step}}
			outcome := newTestPoller(d).Run(context.Background(), "/catalog", nil, nil)

			assert.Equal(t, StateError, outcome.State)
			require.Error(t, outcome.Err)
			assert.Equal(t, tc.wantType, discovery.Classify(outcome.Err))
			assert.Equal(t, tc.wantAttempts+1, outcome.Attempts)
			assert.Nil(t, outcome.Streams, "reconciler must not run on failure")
		})
	}
}

func TestPoller_ServiceMessageSurfacedVerbatim(t *testing.T) {
	d := &scriptedDiscoverer{steps: []step{{result: types.Failure("Connection is not configured")}}}
	outcome := newTestPoller(d).Run(context.Background(), "/catalog", nil, nil)

	require.Error(t, outcome.Err)
	assert.Equal(t, "Connection is not configured", outcome.Err.Error())
}

func TestPoller_PendingDoesNotReconcile(t *testing.T) {
	d := &scriptedDiscoverer{steps: []step{{result: types.Pending()}}}
	ctx, cancel := context.WithCancel(context.Background())

	p := newTestPoller(d, WithAttemptHook(func(attempt int, _ *types.PollResult, _ error) {
		if attempt == 3 {
			cancel()
		}
	}))
	outcome := p.Run(ctx, "/catalog", nil, nil)

	assert.Equal(t, StateCancelled, outcome.State)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Nil(t, outcome.Streams)
}

func TestPoller_Timeout(t *testing.T) {
	d := &scriptedDiscoverer{steps: []step{{result: types.Pending()}}}
	outcome := newTestPoller(d, WithTimeout(30*time.Millisecond), WithInterval(5*time.Millisecond)).
		Run(context.Background(), "/catalog", nil, nil)

	assert.Equal(t, StateError, outcome.State)
	assert.Equal(t, discovery.ErrorTypeUpstream, discovery.Classify(outcome.Err))
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, outcome.Attempts, 1)
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateError.Terminal())
	assert.True(t, StateCancelled.Terminal())
}
