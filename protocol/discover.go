package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/poller"
	"github.com/datazip-inc/olake-configurator/telemetry"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/datazip-inc/olake-configurator/utils"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/spf13/cobra"
)

var (
	connectorConfig map[string]any
	previousStreams []*types.ConfiguredStream
	discoveryOpts   *DiscoveryOptions
)

// discoverCmd polls the discovery endpoint and reconciles the catalog
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "validate the source config and merge discovered streams with the saved selection",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "" {
			return fmt.Errorf("--config not passed")
		}

		return utils.ErrExecSequential(
			utils.ErrExecFormat("failed to load connector config: %w", func() error {
				var err error
				connectorConfig, err = loadConnectorConfig(configPath)
				return err
			}),
			utils.ErrExecFormat("failed to load previous streams: %w", func() error {
				var err error
				previousStreams, err = loadPreviousStreams(streamsPath)
				return err
			}),
			func() error {
				var err error
				discoveryOpts, err = discoveryOptionsFromViper()
				return err
			},
		)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer flushMetrics()

		session := poller.NewSession(discoveryOpts.newPoller())
		defer session.Close()

		logger.Infof("validating the source configuration against %s", discoveryOpts.Endpoint)
		req, err := session.Start(cmd.Context(), discoveryOpts.Endpoint, connectorConfig, previousStreams)
		if err != nil {
			return err
		}

		outcome, err := req.Wait(cmd.Context())
		if err != nil {
			return err
		}

		sendDiscoverEvent(outcome)
		return reportOutcome(outcome)
	},
}

// reportOutcome logs the terminal state of a validation the way the editor shows it
func reportOutcome(outcome *poller.Outcome) error {
	switch outcome.State {
	case poller.StateSuccess:
		logger.Infof("discovered %d streams (%d kept from the previous selection, %d new, %d removed)",
			len(outcome.Streams), outcome.Summary.Carried, outcome.Summary.Synthesized, outcome.Summary.Dropped)
		types.LogConnectionStatus(nil)
		types.LogCatalog(outcome.Streams)
		return nil
	case poller.StateCancelled:
		logger.Warnf("validation request %s was cancelled", outcome.RequestID)
		return outcome.Err
	default:
		err := outcome.Err
		if err == nil {
			err = &discovery.InternalError{Reason: fmt.Sprintf("validation ended in state %s", outcome.State)}
		}
		logger.Errorf("%s: %s", constants.ValidationFailedMsg, describeError(err))
		types.LogConnectionStatus(err)
		return err
	}
}

func describeError(err error) string {
	var validationErr *discovery.ValidationError
	switch discovery.Classify(err) {
	case discovery.ErrorTypeValidation:
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("field %q is invalid: %s", validationErr.Field, err)
		}
		return err.Error()
	case discovery.ErrorTypeUpstream:
		return fmt.Sprintf("Connection is not configured. %s", err)
	default:
		return fmt.Sprintf("Internal error. Please, file an issue. %s", err)
	}
}

func sendDiscoverEvent(outcome *poller.Outcome) {
	client := telemetry.GetInstance()
	props := map[string]any{
		"duration_sec": outcome.Duration.Seconds(),
		"success":      outcome.State == poller.StateSuccess,
		"stream_count": len(outcome.Streams),
		"attempts":     outcome.Attempts,
		"endpoint":     discoveryOpts.Endpoint,
		"sent_at":      time.Now().UTC().Format(time.RFC3339),
	}
	if outcome.Err != nil {
		props["error_type"] = discovery.Classify(outcome.Err)
	}

	if err := client.SendEvent("DiscoverCompleted", props); err != nil {
		logger.Debugf("failed to send discover event: %s", err)
	}
	client.Flush()
}
