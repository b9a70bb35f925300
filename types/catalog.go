package types

import (
	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

// Message is a dto for output row representation
type Message struct {
	Type             MessageType `json:"type"`
	Log              *Log        `json:"log,omitempty"`
	ConnectionStatus *StatusRow  `json:"connectionStatus,omitempty"`
	Catalog          *Catalog    `json:"catalog,omitempty"`
}

type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Catalog is the list of selected streams with their sync modes
type Catalog struct {
	Streams []*ConfiguredStream `json:"streams"`
}

// SourceConfig is the "config" section of a persisted source document
type SourceConfig struct {
	Catalog *Catalog `json:"catalog,omitempty"`
}

// SourceData is a persisted source document. Selections may live under
// config.catalog, under catalog, or (for files written by this tool) at the top level.
type SourceData struct {
	Config  *SourceConfig       `json:"config,omitempty"`
	Catalog *Catalog            `json:"catalog,omitempty"`
	Streams []*ConfiguredStream `json:"streams,omitempty"`
}

// PreviouslySelected returns the persisted selection, empty when there is none
func (s *SourceData) PreviouslySelected() []*ConfiguredStream {
	if s == nil {
		return []*ConfiguredStream{}
	}
	if s.Config != nil && s.Config.Catalog != nil && s.Config.Catalog.Streams != nil {
		return s.Config.Catalog.Streams
	}
	if s.Catalog != nil && s.Catalog.Streams != nil {
		return s.Catalog.Streams
	}
	if s.Streams != nil {
		return s.Streams
	}
	return []*ConfiguredStream{}
}

// LogCatalog prints the catalog message and stores it as the streams file
func LogCatalog(streams []*ConfiguredStream) {
	message := Message{
		Type:    CatalogMessage,
		Catalog: &Catalog{Streams: streams},
	}

	if data, err := json.Marshal(message); err == nil {
		logger.Info(string(data))
	} else {
		logger.Errorf("failed to marshal catalog message: %s", err)
	}

	var err error
	if path := viper.GetString(constants.StreamsPath); path != "" {
		err = logger.FileLoggerWithPath(message.Catalog, path)
	} else {
		err = logger.FileLogger(message.Catalog, constants.StreamsFileName, constants.JSONFileExt)
	}
	if err != nil {
		logger.Errorf("failed to create streams file: %s", err)
	}
}

// LogConnectionStatus prints the outcome of a discovery validation
func LogConnectionStatus(err error) {
	status := &StatusRow{Status: ConnectionSucceed}
	if err != nil {
		status.Status = ConnectionFailed
		status.Message = err.Error()
	}

	data, mErr := json.Marshal(Message{Type: ConnectionStatusMessage, ConnectionStatus: status})
	if mErr != nil {
		logger.Errorf("failed to marshal connection status: %s", mErr)
		return
	}
	logger.Info(string(data))
}
