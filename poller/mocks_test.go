package poller

import (
	"context"
	"sync"

	"github.com/datazip-inc/olake-configurator/types"
)

type step struct {
	result *types.PollResult
	err    error
}

// scriptedDiscoverer replays steps in order and repeats the last one
type scriptedDiscoverer struct {
	mu      sync.Mutex
	steps   []step
	calls   int
	configs []map[string]any
}

func (d *scriptedDiscoverer) Discover(_ context.Context, _ string, config map[string]any) (*types.PollResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.configs = append(d.configs, config)
	idx := d.calls
	if idx >= len(d.steps) {
		idx = len(d.steps) - 1
	}
	d.calls++

	return d.steps[idx].result, d.steps[idx].err
}

func (d *scriptedDiscoverer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// gatedDiscoverer stays pending for a config until its gate is released
type gatedDiscoverer struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string]*types.PollResult
}

func newGatedDiscoverer() *gatedDiscoverer {
	return &gatedDiscoverer{
		gates:   map[string]chan struct{}{},
		results: map[string]*types.PollResult{},
	}
}

func (d *gatedDiscoverer) prepare(key string, result *types.PollResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gates[key] = make(chan struct{})
	d.results[key] = result
}

func (d *gatedDiscoverer) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	close(d.gates[key])
}

func (d *gatedDiscoverer) Discover(_ context.Context, _ string, config map[string]any) (*types.PollResult, error) {
	key, _ := config["key"].(string)

	d.mu.Lock()
	gate := d.gates[key]
	result := d.results[key]
	d.mu.Unlock()

	select {
	case <-gate:
		return result, nil
	default:
		return types.Pending(), nil
	}
}
