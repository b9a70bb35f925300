package types

// ConfiguredStream is a stream selected for sync together with the chosen modes
type ConfiguredStream struct {
	SyncMode            SyncMode            `json:"sync_mode"`
	DestinationSyncMode DestinationSyncMode `json:"destination_sync_mode"`
	Stream              *Stream             `json:"stream" validate:"required"`

	// persisted selection details; carried forward untouched
	CursorField []string   `json:"cursor_field,omitempty"`
	PrimaryKey  [][]string `json:"primary_key,omitempty"`
}

// NewConfiguredStream selects stream with default modes: its first supported
// sync mode and the default destination sync mode.
func NewConfiguredStream(stream *Stream) *ConfiguredStream {
	return &ConfiguredStream{
		SyncMode:            stream.DefaultSyncMode(),
		DestinationSyncMode: DefaultDestinationSyncMode,
		Stream:              stream,
	}
}

func (s *ConfiguredStream) Identifier() StreamIdentifier {
	return s.Stream.Identifier()
}

func (s *ConfiguredStream) ID() string {
	return s.Stream.ID()
}

func (s *ConfiguredStream) Name() string {
	return s.Stream.Name
}

func (s *ConfiguredStream) Namespace() *string {
	return s.Stream.Namespace
}

func (s *ConfiguredStream) GetStream() *Stream {
	return s.Stream
}
