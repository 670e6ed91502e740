// internal/manager/topics.go
package manager

import (
	"fmt"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/core"
)

// Topics derives every MQTT topic as a pure function of (camera id, trigger
// identifier). The canonical EventType spelling is part of the topic
// contract: subscribers key on it.
type Topics struct {
	Base          string
	HomeAssistant string
}

func NewTopics(base, homeAssistant string) Topics {
	return Topics{Base: base, HomeAssistant: homeAssistant}
}

func DefaultTopics() Topics {
	return Topics{
		Base:          config.DefaultBaseTopic,
		HomeAssistant: config.DefaultHomeAssistantTopic,
	}
}

func (t Topics) GlobalAvailability() string {
	return t.Base + "/availability"
}

func (t Topics) GlobalStats() string {
	return t.Base + "/stats"
}

func (t Topics) cameraBase(camID string) string {
	return fmt.Sprintf("%s/device_%s", t.Base, camID)
}

func (t Topics) CameraAvailability(camID string) string {
	return t.cameraBase(camID) + "/availability"
}

func (t Topics) CameraLog(camID string) string {
	return t.cameraBase(camID) + "/log"
}

// TriggerState is both the state topic and the json_attributes_topic of a
// trigger's binary sensor.
func (t Topics) TriggerState(camID string, id core.EventIdentifier) string {
	if id.Channel != "" {
		return fmt.Sprintf("%s/ch%s/%s", t.cameraBase(camID), id.Channel, id.Type)
	}
	return fmt.Sprintf("%s/%s", t.cameraBase(camID), id.Type)
}

// TriggerDiscoveryID is the per-trigger discovery object id, also the stem
// of the Home Assistant unique_id.
func (t Topics) TriggerDiscoveryID(camID string, id core.EventIdentifier) string {
	channel := ""
	if id.Channel != "" {
		channel = "_ch" + id.Channel
	}
	return fmt.Sprintf("device_%s%s_%s", camID, channel, id.Type)
}

func (t Topics) TriggerDiscovery(camID string, id core.EventIdentifier) string {
	return fmt.Sprintf("%s/binary_sensor/hiksink/%s/config",
		t.HomeAssistant, t.TriggerDiscoveryID(camID, id))
}

func (t Topics) GlobalStatsDiscovery(key string) string {
	return fmt.Sprintf("%s/sensor/hiksink/%s/config", t.HomeAssistant, key)
}
