// internal/manager/discovery.go
package manager

import (
	"fmt"

	"github.com/sua-org/hik-sink/internal/core"
)

// Home Assistant MQTT discovery payloads. Field names follow the discovery
// schema; retained on the <ha>/... config topics so the controller recreates
// its entities after a restart.

type availabilityRef struct {
	Topic string `json:"topic"`
}

type deviceBlock struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name"`
	SwVersion    string   `json:"sw_version"`
}

type triggerDiscoveryPayload struct {
	Availability        []availabilityRef `json:"availability"`
	Device              deviceBlock       `json:"device"`
	DeviceClass         string            `json:"device_class,omitempty"`
	Icon                string            `json:"icon,omitempty"`
	JSONAttributesTopic string            `json:"json_attributes_topic"`
	Name                string            `json:"name"`
	PayloadOff          bool              `json:"payload_off"`
	PayloadOn           bool              `json:"payload_on"`
	StateTopic          string            `json:"state_topic"`
	UniqueID            string            `json:"unique_id"`
	ValueTemplate       string            `json:"value_template"`
}

type statsDiscoveryPayload struct {
	Availability        []availabilityRef `json:"availability"`
	Device              deviceBlock       `json:"device"`
	JSONAttributesTopic string            `json:"json_attributes_topic"`
	Name                string            `json:"name"`
	StateTopic          string            `json:"state_topic"`
	UniqueID            string            `json:"unique_id"`
	UnitOfMeasurement   string            `json:"unit_of_measurement"`
	ValueTemplate       string            `json:"value_template"`
}

type statsPayload struct {
	CamerasConnected    int `json:"cameras_connected"`
	CamerasDisconnected int `json:"cameras_disconnected"`
	CamerasTotal        int `json:"cameras_total"`
	TriggersTotal       int `json:"triggers_total"`
}

// cameraDiscovery returns one discovery descriptor per trigger. Discovery
// needs the device info block, so nothing is produced before the first
// Connected event.
func (m *Manager) cameraDiscovery(cam *CameraDetails) []Message {
	if cam.Info == nil {
		return nil
	}
	messages := make([]Message, 0, len(cam.Triggers))
	for _, trigger := range cam.Triggers {
		messages = append(messages, m.triggerDiscovery(cam, trigger, cam.Info))
	}
	return messages
}

func (m *Manager) triggerDiscovery(cam *CameraDetails, trigger *TriggerDetails, info *core.DeviceInfo) Message {
	camID := cam.Config.Identifier()
	identifier := trigger.Trigger.Identifier
	stateTopic := m.topics.TriggerState(camID, identifier)

	payload := triggerDiscoveryPayload{
		Availability: []availabilityRef{
			{Topic: m.topics.GlobalAvailability()},
			{Topic: m.topics.CameraAvailability(camID)},
		},
		Device: deviceBlock{
			Identifiers: []string{
				camID + "_hiksink",
				info.SerialNumber,
				info.MacAddress,
			},
			Manufacturer: "Hikvision",
			Name:         cam.Config.Name,
			SwVersion: fmt.Sprintf("HikSink v%s / Camera Firmware %s (%s)",
				Version, info.FirmwareVersion, info.FirmwareReleaseDate),
			Model: fmt.Sprintf("%s (%s)", info.Model, info.DeviceType),
		},
		DeviceClass:         identifier.Type.DeviceClass(),
		Icon:                identifier.Type.Icon(),
		JSONAttributesTopic: stateTopic,
		Name:                fmt.Sprintf("%s %s", cam.Config.Name, identifier.Display()),
		PayloadOff:          false,
		PayloadOn:           true,
		StateTopic:          stateTopic,
		UniqueID:            m.topics.TriggerDiscoveryID(camID, identifier) + "_hiksink",
		ValueTemplate:       "{{ value_json.alerting }}",
	}

	return newJSONMessage(m.topics.TriggerDiscovery(camID, identifier), payload)
}

func (m *Manager) globalStats() Message {
	connected := 0
	triggers := 0
	for _, cam := range m.cameras {
		if cam.Connected {
			connected++
		}
		triggers += len(cam.Triggers)
	}
	return newJSONMessage(m.topics.GlobalStats(), statsPayload{
		CamerasConnected:    connected,
		CamerasDisconnected: len(m.cameras) - connected,
		CamerasTotal:        len(m.cameras),
		TriggersTotal:       triggers,
	})
}

// globalStatsDiscovery publishes the four bridge-level sensors.
func (m *Manager) globalStatsDiscovery() []Message {
	sensor := func(key, name, unit string) Message {
		return newJSONMessage(m.topics.GlobalStatsDiscovery(key), statsDiscoveryPayload{
			Availability: []availabilityRef{
				{Topic: m.topics.GlobalAvailability()},
			},
			Device: deviceBlock{
				Identifiers:  []string{"hiksink_bridge"},
				Manufacturer: "Hiksink",
				Name:         "HikSink Bridge",
				SwVersion:    "v" + Version,
			},
			JSONAttributesTopic: m.topics.GlobalStats(),
			Name:                name,
			StateTopic:          m.topics.GlobalStats(),
			UniqueID:            "hiksink_stat_" + key,
			UnitOfMeasurement:   unit,
			ValueTemplate:       fmt.Sprintf("{{ value_json.%s }}", key),
		})
	}

	return []Message{
		sensor("cameras_connected", "Cameras Connected", "Cameras"),
		sensor("cameras_disconnected", "Cameras Disconnected", "Cameras"),
		sensor("cameras_total", "Total Cameras", "Cameras"),
		sensor("triggers_total", "Total Triggers", "Triggers"),
	}
}
