package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledTelemetry(t *testing.T) {
	client := GetInstance()

	assert.False(t, client.Enabled(), "telemetry must stay off without an api key")
	assert.NoError(t, client.SendEvent("DiscoverCompleted", map[string]any{"success": true}))
	assert.NotPanics(t, client.Flush)
}

func TestAnonymousIDIsStable(t *testing.T) {
	first := GetAnonymousID()
	second := GetAnonymousID()

	assert.Len(t, first, 32)
	assert.Equal(t, first, second)
}
