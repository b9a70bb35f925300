package constants

import "time"

// viper keys
const (
	ConfigFolder     = "CONFIG_FOLDER"
	StreamsPath      = "STREAMS_PATH"
	EncryptionKey    = "ENCRYPTION_KEY"
	NoSave           = "NO_SAVE"
	Verbose          = "VERBOSE"
	BaseURL          = "BASE_URL"
	Endpoint         = "ENDPOINT"
	ProjectID        = "PROJECT_ID"
	Proxy            = "PROXY"
	PollInterval     = "POLL_INTERVAL"
	PollTimeout      = "POLL_TIMEOUT"
	MetricsFile      = "METRICS_FILE"
	TelemetryEnabled = "TELEMETRY_ENABLED"
	TelemetryKey     = "TELEMETRY_SEGMENT_API_KEY"
	EnvPrefix        = "OLAKE"
)

const (
	DefaultPollInterval     = 2 * time.Second
	DefaultPollTimeout      = 3 * time.Minute
	DefaultLongLoadingAfter = 10 * time.Second
	DefaultRequestTimeout   = time.Minute

	// proxied backend requests are served under this path prefix
	ProxyPathPrefix = "/proxy"
	ProjectIDParam  = "project_id"

	StreamsFileName     = "streams"
	JSONFileExt         = ".json"
	LogFileName         = "olake-configurator.log"
	PendingStatus       = "pending"
	ServiceName         = "olake-configurator"
	ValidationFailedMsg = "Source configuration validation failed"
	LongLoadingMessage  = "This operation may take up to 3 minutes if you are configuring streams of this source type for the first time."
)
