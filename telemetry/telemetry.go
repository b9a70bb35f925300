package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	analytics "github.com/segmentio/analytics-go/v3"
	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Telemetry
	idLock   sync.Mutex
)

const (
	anonymousIDFile = "telemetry_id"
	version         = "0.0.0"
)

type Telemetry struct {
	client      analytics.Client
	serviceName string
	enabled     bool
	platform    platformInfo
}

type platformInfo struct {
	OS        string
	Arch      string
	Version   string
	DeviceCPU string
}

func createTelemetry() {
	enabled := viper.GetBool(constants.TelemetryEnabled)
	apiKey := viper.GetString(constants.TelemetryKey)

	instance = &Telemetry{
		serviceName: constants.ServiceName,
		enabled:     enabled && apiKey != "",
		platform: platformInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Version:   version,
			DeviceCPU: fmt.Sprintf("%d cores", runtime.NumCPU()),
		},
	}

	if instance.enabled {
		instance.client = analytics.New(apiKey)
		logger.Debug("telemetry enabled")
	}
}

// Init prepares the shared instance from viper settings
func Init() {
	GetInstance()
}

func GetInstance() *Telemetry {
	once.Do(createTelemetry)
	return instance
}

func (t *Telemetry) Enabled() bool {
	return t.enabled
}

func (t *Telemetry) Flush() {
	if t.client == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		logger.Warnf("failed to flush telemetry: %s", err)
	}
}

func (t *Telemetry) SendEvent(eventName string, properties map[string]any) error {
	if !t.enabled {
		logger.Debugf("telemetry disabled, not sending event: %s", eventName)
		return nil
	}

	if t.client == nil {
		return fmt.Errorf("telemetry client is nil")
	}

	anonymousID := GetAnonymousID()
	props := analytics.Properties{
		"anonymous_id": anonymousID,
		"os":           t.platform.OS,
		"arch":         t.platform.Arch,
		"version":      t.platform.Version,
		"num_cpu":      t.platform.DeviceCPU,
		"service":      t.serviceName,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range properties {
		props[k] = v
	}

	if err := t.client.Enqueue(analytics.Track{
		UserId:     anonymousID,
		Event:      eventName,
		Properties: props,
	}); err != nil {
		return fmt.Errorf("failed to queue telemetry event %s: %s", eventName, err)
	}

	return nil
}

// GetAnonymousID returns the persisted installation id, creating it on first use
func GetAnonymousID() string {
	idLock.Lock()
	defer idLock.Unlock()

	configDir := getConfigDir()
	idPath := filepath.Join(configDir, anonymousIDFile)

	if idBytes, err := os.ReadFile(idPath); err == nil {
		return string(idBytes)
	}

	newID := generateID()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		logger.Debugf("failed to create telemetry dir: %s", err)
	}
	if err := os.WriteFile(idPath, []byte(newID), 0o600); err != nil {
		logger.Debugf("failed to write anonymous id: %s", err)
	}
	return newID
}

func getConfigDir() string {
	return filepath.Join(os.TempDir(), constants.ServiceName)
}

func generateID() string {
	hash := sha256.New()
	hash.Write([]byte(time.Now().String()))
	return hex.EncodeToString(hash.Sum(nil))[:32]
}
