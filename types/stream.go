package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

type SyncMode string

const (
	FULLREFRESH SyncMode = "full_refresh"
	INCREMENTAL SyncMode = "incremental"
)

type DestinationSyncMode string

const (
	OVERWRITE   DestinationSyncMode = "overwrite"
	APPEND      DestinationSyncMode = "append"
	APPENDDEDUP DestinationSyncMode = "append_dedup"
)

// DefaultDestinationSyncMode is assigned to streams that had no previous selection
const DefaultDestinationSyncMode = OVERWRITE

// StreamIdentifier is the identity of a stream: a name plus an optional namespace.
// A nil Namespace means "no namespace" and differs from an empty one.
type StreamIdentifier struct {
	Name      string
	Namespace *string
}

func (s StreamIdentifier) Equal(other StreamIdentifier) bool {
	if s.Name != other.Name {
		return false
	}
	if s.Namespace == nil || other.Namespace == nil {
		return s.Namespace == nil && other.Namespace == nil
	}
	return *s.Namespace == *other.Namespace
}

func (s StreamIdentifier) String() string {
	if s.Namespace == nil {
		return s.Name
	}
	return fmt.Sprintf("%s.%s", *s.Namespace, s.Name)
}

// Stream is a stream as reported by the discovery service
type Stream struct {
	Name               string         `json:"name"`
	Namespace          *string        `json:"namespace,omitempty"`
	JSONSchema         map[string]any `json:"json_schema"`
	SupportedSyncModes []SyncMode     `json:"supported_sync_modes"`

	// fields the discovery service returned beyond the ones above; kept verbatim
	AdditionalProperties map[string]any `json:"-"`
}

var knownStreamFields = map[string]struct{}{
	"name":                 {},
	"namespace":            {},
	"json_schema":          {},
	"supported_sync_modes": {},
}

func NewStream(name string, namespace *string, modes ...SyncMode) *Stream {
	return &Stream{
		Name:               name,
		Namespace:          namespace,
		JSONSchema:         map[string]any{},
		SupportedSyncModes: modes,
	}
}

func (s *Stream) Identifier() StreamIdentifier {
	return StreamIdentifier{Name: s.Name, Namespace: s.Namespace}
}

func (s *Stream) ID() string {
	return s.Identifier().String()
}

// DefaultSyncMode is the first supported sync mode, empty when none is supported
func (s *Stream) DefaultSyncMode() SyncMode {
	if len(s.SupportedSyncModes) == 0 {
		return ""
	}
	return s.SupportedSyncModes[0]
}

func (s *Stream) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.AdditionalProperties)+len(knownStreamFields))
	for key, value := range s.AdditionalProperties {
		out[key] = value
	}

	out["name"] = s.Name
	if s.Namespace != nil {
		out["namespace"] = *s.Namespace
	}
	out["json_schema"] = s.JSONSchema
	out["supported_sync_modes"] = s.SupportedSyncModes

	return json.Marshal(out)
}

func (s *Stream) UnmarshalJSON(data []byte) error {
	type Alias Stream
	aux := (*Alias)(s)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key := range knownStreamFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		s.AdditionalProperties = raw
	}

	return nil
}

// Namespace returns a pointer to ns; convenience for literals
func Namespace(ns string) *string {
	return &ns
}
