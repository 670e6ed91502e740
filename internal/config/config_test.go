// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sampleConfig = `
[system]
log_level = "debug"

[mqtt]
address = "mqtt.local"
username = "hik"
password = "pass"

[[camera]]
name = "Front Door"
address = "192.168.1.10"
username = "admin"
password = "camerapass"

[[camera]]
name = "Back Garden"
address = "192.168.1.11"
port = 8080
username = "admin"
password = "camerapass"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.System.LogLevel)
	assert.Equal(t, "mqtt.local", cfg.Mqtt.Address)
	assert.Equal(t, uint16(1883), cfg.Mqtt.Port)
	assert.Equal(t, DefaultBaseTopic, cfg.Mqtt.BaseTopic)
	assert.Equal(t, DefaultHomeAssistantTopic, cfg.Mqtt.HomeAssistantTopic)

	require.Len(t, cfg.Cameras, 2)
	assert.Equal(t, "front_door", cfg.Cameras[0].Identifier())
	assert.Equal(t, "http://192.168.1.10", cfg.Cameras[0].BaseURL())
	assert.Equal(t, "back_garden", cfg.Cameras[1].Identifier())
	assert.Equal(t, "http://192.168.1.11:8080", cfg.Cameras[1].BaseURL())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[mqtt]\naddress = \"localhost\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.System.LogLevel)
	assert.Equal(t, uint16(1883), cfg.Mqtt.Port)
	assert.Empty(t, cfg.Cameras)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HIKSINK_MQTT_ADDRESS", "broker.example")
	t.Setenv("HIKSINK_MQTT_PORT", "8883")
	t.Setenv("HIKSINK_MQTT_BASE_TOPIC", "cams")
	t.Setenv("HIKSINK_SYSTEM_LOG_LEVEL", "trace")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "broker.example", cfg.Mqtt.Address)
	assert.Equal(t, uint16(8883), cfg.Mqtt.Port)
	assert.Equal(t, "cams", cfg.Mqtt.BaseTopic)
	assert.Equal(t, "trace", cfg.System.LogLevel)
}

func TestLoadEnvBadPort(t *testing.T) {
	t.Setenv("HIKSINK_MQTT_PORT", "not-a-port")
	_, err := Load(writeConfig(t, sampleConfig))
	assert.Error(t, err)
}

// Identifiers key MQTT topics, so two cameras must never collapse to the
// same one.
func TestLoadRejectsDuplicateIdentifiers(t *testing.T) {
	_, err := Load(writeConfig(t, `
[[camera]]
name = "Front Door"
address = "a"

[[camera]]
name = "front door"
address = "b"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ID")
}

func TestLoadRejectsEmptyIdentifier(t *testing.T) {
	_, err := Load(writeConfig(t, `
[[camera]]
name = "!!!"
address = "a"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty identifier")
}

func TestDeriveIdentifier(t *testing.T) {
	for name, want := range map[string]string{
		"Front Door":    "front_door",
		"Garage":        "garage",
		"cam_2":         "cam_2",
		"Café Entrée":   "café_entrée",
		"Weird!@#Name":  "weirdname",
		"  padded  ":    "__padded__",
		"ALL CAPS CAM3": "all_caps_cam3",
	} {
		assert.Equal(t, want, DeriveIdentifier(name), "name %q", name)
	}
}

func TestCameraIdentifierWithoutLoad(t *testing.T) {
	cam := Camera{Name: "Side Gate"}
	assert.Equal(t, "side_gate", cam.Identifier())
}
