package protocol

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/discovery"
	"github.com/datazip-inc/olake-configurator/poller"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/datazip-inc/olake-configurator/utils"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/spf13/viper"
)

// DiscoveryOptions are the resolved settings of a discover run
type DiscoveryOptions struct {
	BaseURL      string        `json:"base_url" validate:"required,url"`
	Endpoint     string        `json:"endpoint" validate:"required"`
	ProjectID    string        `json:"project_id" validate:"required"`
	Proxy        bool          `json:"proxy"`
	PollInterval time.Duration `json:"poll_interval" validate:"gt=0"`
	Timeout      time.Duration `json:"timeout" validate:"gte=0"`
}

func discoveryOptionsFromViper() (*DiscoveryOptions, error) {
	opts := &DiscoveryOptions{
		BaseURL:      viper.GetString(constants.BaseURL),
		Endpoint:     viper.GetString(constants.Endpoint),
		ProjectID:    viper.GetString(constants.ProjectID),
		Proxy:        viper.GetBool(constants.Proxy),
		PollInterval: viper.GetDuration(constants.PollInterval),
		Timeout:      viper.GetDuration(constants.PollTimeout),
	}

	if err := utils.Validate(opts); err != nil {
		return nil, fmt.Errorf("invalid discovery options: %s", err)
	}

	return opts, nil
}

func (o *DiscoveryOptions) newPoller() *poller.Poller {
	client := discovery.NewClient(
		&http.Client{Timeout: constants.DefaultRequestTimeout},
		o.BaseURL,
		discovery.WithProjectID(o.ProjectID),
		discovery.WithProxy(o.Proxy),
	)

	return poller.New(client,
		poller.WithInterval(o.PollInterval),
		poller.WithTimeout(o.Timeout),
		poller.WithAttemptHook(func(attempt int, result *types.PollResult, err error) {
			if err == nil {
				logger.Debugf("discovery attempt %d: %s", attempt, result.Kind)
			}
		}),
	)
}

// loadPreviousStreams reads the persisted selection; a missing path means none
func loadPreviousStreams(path string) ([]*types.ConfiguredStream, error) {
	if path == "" {
		return []*types.ConfiguredStream{}, nil
	}

	source := &types.SourceData{}
	if err := utils.UnmarshalFile(path, source, false); err != nil {
		return nil, err
	}

	previous := source.PreviouslySelected()
	if err := utils.ValidateEach(previous, "streams"); err != nil {
		return nil, fmt.Errorf("invalid previously selected streams: %s", err)
	}

	logger.Infof("loaded %d previously selected streams from %s", len(previous), path)
	return previous, nil
}

func loadConnectorConfig(path string) (map[string]any, error) {
	config := map[string]any{}
	if err := utils.UnmarshalFile(path, &config, true); err != nil {
		return nil, err
	}
	return config, nil
}
