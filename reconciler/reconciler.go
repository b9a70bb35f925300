// Package reconciler merges a freshly discovered catalog with a previously
// persisted stream selection.
package reconciler

import (
	"github.com/datazip-inc/olake-configurator/types"
)

// identityKey is a comparable form of types.StreamIdentifier
type identityKey struct {
	name         string
	namespace    string
	hasNamespace bool
}

func keyOf(id types.StreamIdentifier) identityKey {
	if id.Namespace == nil {
		return identityKey{name: id.Name}
	}
	return identityKey{name: id.Name, namespace: *id.Namespace, hasNamespace: true}
}

// Reconcile returns one selected stream per discovered stream, in discovered order.
// A discovered stream matching a previous selection by (name, namespace) yields that
// previous entry unchanged; any other gets its first supported sync mode and the
// default destination sync mode. Selections missing from discovered are dropped.
// Neither input is modified.
func Reconcile(previous []*types.ConfiguredStream, discovered []*types.Stream) []*types.ConfiguredStream {
	selected := make(map[identityKey]*types.ConfiguredStream, len(previous))
	for _, stream := range previous {
		if stream == nil || stream.Stream == nil {
			continue
		}
		key := keyOf(stream.Identifier())
		// first match wins
		if _, exists := selected[key]; !exists {
			selected[key] = stream
		}
	}

	reconciled := make([]*types.ConfiguredStream, 0, len(discovered))
	for _, stream := range discovered {
		if previousStream, found := selected[keyOf(stream.Identifier())]; found {
			reconciled = append(reconciled, previousStream)
			continue
		}
		reconciled = append(reconciled, types.NewConfiguredStream(stream))
	}

	return reconciled
}

// Summary counts how a reconciliation treated each stream
type Summary struct {
	Carried     int `json:"carried"`
	Synthesized int `json:"synthesized"`
	Dropped     int `json:"dropped"`
}

// Summarize compares a reconciliation result with the selection it started from
func Summarize(previous, reconciled []*types.ConfiguredStream) Summary {
	kept := make(map[*types.ConfiguredStream]struct{}, len(previous))
	for _, stream := range previous {
		kept[stream] = struct{}{}
	}

	summary := Summary{}
	carried := make(map[*types.ConfiguredStream]struct{}, len(reconciled))
	for _, stream := range reconciled {
		if _, found := kept[stream]; found {
			summary.Carried++
			carried[stream] = struct{}{}
			continue
		}
		summary.Synthesized++
	}

	for _, stream := range previous {
		if _, found := carried[stream]; !found {
			summary.Dropped++
		}
	}

	return summary
}
