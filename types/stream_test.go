package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamIdentifier_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a     StreamIdentifier
		b     StreamIdentifier
		equal bool
	}{
		{
			name:  "no namespaces",
			a:     StreamIdentifier{Name: "users"},
			b:     StreamIdentifier{Name: "users"},
			equal: true,
		},
		{
			name:  "same namespace",
			a:     StreamIdentifier{Name: "users", Namespace: Namespace("public")},
			b:     StreamIdentifier{Name: "users", Namespace: Namespace("public")},
			equal: true,
		},
		{
			name:  "different names",
			a:     StreamIdentifier{Name: "users"},
			b:     StreamIdentifier{Name: "orders"},
			equal: false,
		},
		{
			name:  "absent vs empty namespace",
			a:     StreamIdentifier{Name: "users"},
			b:     StreamIdentifier{Name: "users", Namespace: Namespace("")},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestStream_ID(t *testing.T) {
	assert.Equal(t, "users", NewStream("users", nil).ID())
	assert.Equal(t, "public.users", NewStream("users", Namespace("public")).ID())
}

func TestStream_DefaultSyncMode(t *testing.T) {
	assert.Equal(t, INCREMENTAL, NewStream("users", nil, INCREMENTAL, FULLREFRESH).DefaultSyncMode())
	assert.Equal(t, SyncMode(""), NewStream("users", nil).DefaultSyncMode())
}

func TestStream_JSONKeepsAdditionalProperties(t *testing.T) {
	raw := `{"name":"users","namespace":"public","json_schema":{"type":"object"},"supported_sync_modes":["full_refresh"],"source_defined_primary_key":[["id"]]}`

	stream := &Stream{}
	require.NoError(t, json.Unmarshal([]byte(raw), stream))

	assert.Equal(t, "users", stream.Name)
	require.NotNil(t, stream.Namespace)
	assert.Equal(t, "public", *stream.Namespace)
	assert.Equal(t, []SyncMode{FULLREFRESH}, stream.SupportedSyncModes)
	assert.Contains(t, stream.AdditionalProperties, "source_defined_primary_key")
	assert.NotContains(t, stream.AdditionalProperties, "name")

	out, err := json.Marshal(stream)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestStream_JSONWithoutNamespace(t *testing.T) {
	stream := &Stream{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"users","namespace":null,"json_schema":{},"supported_sync_modes":[]}`), stream))
	assert.Nil(t, stream.Namespace)
	assert.Nil(t, stream.AdditionalProperties)

	out, err := json.Marshal(stream)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "namespace")
}
