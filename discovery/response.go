package discovery

import (
	"fmt"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/types"
	"github.com/goccy/go-json"
)

// DecodeResponse turns a discovery response body into a typed poll result.
//
// A truthy "message" is an error reported by the service, status "pending"
// asks for another attempt and anything else must carry a well-formed
// catalog. A malformed catalog fails as a whole with a *ValidationError.
func DecodeResponse(body []byte) (*types.PollResult, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, newFieldError("response", "is not valid JSON")
	}

	response, ok := decoded.(map[string]any)
	if !ok {
		return nil, newFieldError("response", "is not an object")
	}

	if message, found := response["message"]; found && truthy(message) {
		return types.Failure(messageText(message)), nil
	}

	if status, _ := response["status"].(string); status == constants.PendingStatus {
		return types.Pending(), nil
	}

	streams, err := decodeCatalog(response)
	if err != nil {
		return nil, err
	}

	return types.Success(streams), nil
}

func decodeCatalog(response map[string]any) ([]*types.Stream, error) {
	catalog, ok := response["catalog"].(map[string]any)
	if !ok {
		return nil, newFieldError("catalog", "is not an object")
	}

	rawStreams, ok := catalog["streams"].([]any)
	if !ok {
		return nil, newFieldError("catalog.streams", "is not an array of objects")
	}

	streams := make([]*types.Stream, 0, len(rawStreams))
	for idx, raw := range rawStreams {
		object, ok := raw.(map[string]any)
		if !ok {
			return nil, newFieldError("catalog.streams", "is not an array of objects")
		}

		stream, err := decodeStream(idx, object)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	}

	return streams, nil
}

func decodeStream(idx int, object map[string]any) (*types.Stream, error) {
	name, ok := object["name"].(string)
	if !ok {
		return nil, newStreamFieldError(idx, "name", "is not a string")
	}

	// absent and null both mean "no namespace"
	var namespace *string
	if raw, found := object["namespace"]; found && raw != nil {
		ns, ok := raw.(string)
		if !ok {
			return nil, newStreamFieldError(idx, "namespace", "is not a string or undefined")
		}
		namespace = &ns
	}

	schema, ok := object["json_schema"].(map[string]any)
	if !ok {
		return nil, newStreamFieldError(idx, "json_schema", "is not an object")
	}

	rawModes, ok := object["supported_sync_modes"].([]any)
	if !ok {
		return nil, newStreamFieldError(idx, "supported_sync_modes", "is not an array of strings")
	}
	if len(rawModes) == 0 {
		return nil, newStreamFieldError(idx, "supported_sync_modes", "is empty")
	}

	modes := make([]types.SyncMode, 0, len(rawModes))
	for _, rawMode := range rawModes {
		mode, ok := rawMode.(string)
		if !ok {
			return nil, newStreamFieldError(idx, "supported_sync_modes", "is not an array of strings")
		}
		modes = append(modes, types.SyncMode(mode))
	}

	stream := &types.Stream{
		Name:               name,
		Namespace:          namespace,
		JSONSchema:         schema,
		SupportedSyncModes: modes,
	}

	for key, value := range object {
		switch key {
		case "name", "namespace", "json_schema", "supported_sync_modes":
			continue
		}
		if stream.AdditionalProperties == nil {
			stream.AdditionalProperties = map[string]any{}
		}
		stream.AdditionalProperties[key] = value
	}

	return stream, nil
}

// truthy follows the loose truthiness the backend contract relies on
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

func messageText(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	if data, err := json.Marshal(value); err == nil {
		return string(data)
	}
	return fmt.Sprint(value)
}
