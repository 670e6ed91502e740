// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseTopic          = "hikvision_cameras"
	DefaultHomeAssistantTopic = "homeassistant"
	DefaultLogLevel           = "info"

	envPrefix = "HIKSINK_"
)

type Config struct {
	System  System   `toml:"system"`
	Mqtt    Mqtt     `toml:"mqtt"`
	Cameras []Camera `toml:"camera"`
}

type System struct {
	LogLevel string `toml:"log_level"`
	// MetricsListen enables the prometheus endpoint when set, e.g. ":9105".
	MetricsListen string `toml:"metrics_listen"`
}

type Mqtt struct {
	Address            string `toml:"address"`
	Port               uint16 `toml:"port"`
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	BaseTopic          string `toml:"base_topic"`
	HomeAssistantTopic string `toml:"home_assistant_topic"`
}

type Camera struct {
	Name     string `toml:"name"`
	Address  string `toml:"address"`
	Port     uint16 `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	generatedID string
}

// Identifier is the deterministic id derived from the configured name, used
// in MQTT topics and discovery unique_ids.
func (c *Camera) Identifier() string {
	if c.generatedID == "" {
		return DeriveIdentifier(c.Name)
	}
	return c.generatedID
}

// BaseURL is the camera's HTTP endpoint root, without a trailing slash.
func (c *Camera) BaseURL() string {
	if c.Port != 0 {
		return fmt.Sprintf("http://%s:%d", c.Address, c.Port)
	}
	return fmt.Sprintf("http://%s", c.Address)
}

// Load reads the TOML file at path, applies HIKSINK_-prefixed environment
// overrides and derives the per-camera identifiers. Duplicate identifiers
// are a fatal configuration error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		System: System{LogLevel: DefaultLogLevel},
		Mqtt: Mqtt{
			Port:               1883,
			BaseTopic:          DefaultBaseTopic,
			HomeAssistantTopic: DefaultHomeAssistantTopic,
		},
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays any configuration key set as HIKSINK_<SECTION>_<KEY>.
func (c *Config) applyEnv() error {
	for key, dst := range map[string]*string{
		"SYSTEM_LOG_LEVEL":          &c.System.LogLevel,
		"SYSTEM_METRICS_LISTEN":     &c.System.MetricsListen,
		"MQTT_ADDRESS":              &c.Mqtt.Address,
		"MQTT_USERNAME":             &c.Mqtt.Username,
		"MQTT_PASSWORD":             &c.Mqtt.Password,
		"MQTT_BASE_TOPIC":           &c.Mqtt.BaseTopic,
		"MQTT_HOME_ASSISTANT_TOPIC": &c.Mqtt.HomeAssistantTopic,
	} {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "MQTT_PORT"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%sMQTT_PORT %q is not a port number: %w", envPrefix, v, err)
		}
		c.Mqtt.Port = uint16(port)
	}
	return nil
}

func (c *Config) finalize() error {
	seen := make(map[string]string, len(c.Cameras))
	for i := range c.Cameras {
		cam := &c.Cameras[i]
		cam.generatedID = DeriveIdentifier(cam.Name)
		if cam.generatedID == "" {
			return fmt.Errorf("camera %q produces an empty identifier", cam.Name)
		}
		if other, ok := seen[cam.generatedID]; ok {
			return fmt.Errorf("camera %q has duplicate ID %q (also produced by %q)",
				cam.Name, cam.generatedID, other)
		}
		seen[cam.generatedID] = cam.Name
	}
	return nil
}

// DeriveIdentifier lowercases the name, keeps alphanumerics and underscores,
// turns spaces into underscores and drops everything else.
func DeriveIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
