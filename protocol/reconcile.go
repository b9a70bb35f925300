package protocol

import (
	"fmt"
	"os"
	"time"

	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/poller"
	"github.com/datazip-inc/olake-configurator/reconciler"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/spf13/cobra"
)

var catalogResponsePath string

// reconcileCmd merges a saved discovery response without contacting the backend
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "merge a saved discovery response with the saved stream selection",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if catalogResponsePath == "" {
			return fmt.Errorf("--catalog-response not passed")
		}

		var err error
		previousStreams, err = loadPreviousStreams(streamsPath)
		return err
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		defer flushMetrics()

		body, err := os.ReadFile(catalogResponsePath)
		if err != nil {
			return fmt.Errorf("failed to read catalog response: %s", err)
		}

		return reportOutcome(reconcileResponse(body, previousStreams))
	},
}

// reconcileResponse runs a single decoded response through the same terminal
// states a poll run ends in; a pending response cannot be resolved offline.
func reconcileResponse(body []byte, previous []*types.ConfiguredStream) *poller.Outcome {
	startTime := time.Now()
	outcome := &poller.Outcome{Attempts: 1, State: poller.StateError}
	defer func() {
		outcome.Duration = time.Since(startTime)
	}()

	result, err := discovery.DecodeResponse(body)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	switch result.Kind {
	case types.PollSuccess:
		outcome.State = poller.StateSuccess
		outcome.Streams = reconciler.Reconcile(previous, result.Streams)
		outcome.Summary = reconciler.Summarize(previous, outcome.Streams)
	case types.PollError:
		outcome.Err = &discovery.UpstreamError{Message: result.Message}
	case types.PollPending:
		outcome.Err = &discovery.InternalError{Reason: "catalog response is still pending"}
	default:
		outcome.Err = &discovery.InternalError{Reason: "catalog response matched no known shape"}
	}

	return outcome
}

func init() {
	reconcileCmd.Flags().StringVarP(&catalogResponsePath, "catalog-response", "", "", "(Required) Saved discovery response to reconcile")
}
