// internal/manager/manager.go
package manager

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/core"
)

// Version is stamped into discovery sw_version strings.
const Version = "1.2.0"

// Manager holds the authoritative in-memory model of every configured
// camera and folds bus events into the minimal set of retained MQTT
// messages that keeps subscribers coherent. It is owned by a single
// goroutine and needs no locking.
type Manager struct {
	cameras []*CameraDetails
	topics  Topics

	// SilentUnlisted lists event types that are dropped without a warning
	// when an alert arrives for a trigger the camera never enumerated.
	// VideoLoss is delivered on the stream of non-NVR devices even though
	// it never appears in their trigger list.
	SilentUnlisted map[core.EventType]struct{}
}

// CameraDetails is the cached model for one configured camera. It exists
// for the full process lifetime; only its contents change.
type CameraDetails struct {
	Config    config.Camera
	Info      *core.DeviceInfo
	Triggers  []*TriggerDetails
	Connected bool
	// Log carries either connection info or the last connection error.
	Log string
}

// TriggerDetails is the cached state of one trigger. Rebuilt wholesale on
// every Connected event.
type TriggerDetails struct {
	Trigger   core.TriggerItem
	Alerting  bool
	Regions   []core.DetectionRegion
	LastAlert time.Time
}

func New(cameras []config.Camera, topics Topics) *Manager {
	details := make([]*CameraDetails, 0, len(cameras))
	for _, cam := range cameras {
		details = append(details, &CameraDetails{
			Config: cam,
			Log:    "Initial connection in progress...",
		})
	}
	return &Manager{
		cameras: details,
		topics:  topics,
		SilentUnlisted: map[core.EventType]struct{}{
			core.EventVideoLoss: {},
		},
	}
}

// LWT is the Last-Will registered with the broker: if the bridge dies, the
// broker flips the global availability to offline on its behalf.
func (m *Manager) LWT() Message {
	return newMessage(m.topics.GlobalAvailability(), "offline")
}

// ConnectionEstablished is called after every successful broker connection.
// The returned batch republishes every retained state the manager holds plus
// all discovery descriptors, so a fresh broker converges to the current
// truth.
func (m *Manager) ConnectionEstablished() []Message {
	var messages []Message

	for _, cam := range m.cameras {
		messages = append(messages, m.cameraRefresh(cam)...)
	}

	messages = append(messages, newMessage(m.topics.GlobalAvailability(), "online"))
	messages = append(messages, m.globalStats())

	for _, cam := range m.cameras {
		messages = append(messages, m.cameraDiscovery(cam)...)
	}
	messages = append(messages, m.globalStatsDiscovery()...)

	return messages
}

// HandleEvent folds one bus event into the model and returns the messages
// to publish, in order.
func (m *Manager) HandleEvent(ev core.CameraEvent) []Message {
	cam := m.findCamera(ev.CameraID)
	if cam == nil {
		// Sessions are only started for configured cameras, so this branch
		// is a programmer error; it must not crash the bridge.
		logrus.WithField("id", ev.CameraID).Error("camera event for unknown camera id")
		return nil
	}

	switch {
	case ev.Connected != nil:
		return m.handleConnected(cam, ev.Connected)
	case ev.Disconnected != nil:
		return m.handleDisconnected(cam, ev.Disconnected)
	case ev.Alert != nil:
		return m.handleAlert(cam, ev.Alert)
	default:
		logrus.WithField("id", ev.CameraID).Error("camera event carries no payload")
		return nil
	}
}

func (m *Manager) handleConnected(cam *CameraDetails, ev *core.ConnectedEvent) []Message {
	// Triggers are rebuilt from scratch; transient alerting state is lost,
	// which is fine because the stream also starts fresh. Triggers removed
	// across reconnects keep their stale discovery entries.
	cam.Triggers = make([]*TriggerDetails, 0, len(ev.Triggers))
	for _, trigger := range ev.Triggers {
		cam.Triggers = append(cam.Triggers, &TriggerDetails{
			Trigger:   trigger,
			LastAlert: time.Now().UTC(),
		})
	}
	info := ev.Info
	cam.Info = &info
	cam.Log = "Connected"
	cam.Connected = true

	var messages []Message
	messages = append(messages, m.cameraRefresh(cam)...)
	messages = append(messages, m.cameraDiscovery(cam)...)
	messages = append(messages, m.globalStats())
	return messages
}

func (m *Manager) handleDisconnected(cam *CameraDetails, ev *core.DisconnectedEvent) []Message {
	cam.Connected = false
	cam.Log = fmt.Sprintf("Connection Error: %s", ev.Error)
	// Trigger states stay retained on the broker; the camera availability
	// topic is referenced by every trigger's discovery descriptor, so
	// subscribers mark the entities unavailable on their own.
	return []Message{
		m.cameraLog(cam),
		m.cameraAvailability(cam),
	}
}

func (m *Manager) handleAlert(cam *CameraDetails, alert *core.AlertItem) []Message {
	trigger := cam.findTrigger(alert.Identifier)
	if trigger == nil {
		if _, silent := m.SilentUnlisted[alert.Identifier.Type]; !silent {
			logrus.WithFields(logrus.Fields{
				"id":      cam.Config.Identifier(),
				"trigger": alert.Identifier.Display(),
			}).Warn("camera sent an alert for a trigger which does not exist")
		}
		return nil
	}

	// Only publish on change, to avoid spamming the broker with the
	// repeated heartbeat alerts cameras emit while a trigger stays active.
	if trigger.Alerting == alert.Active && core.RegionsEqual(trigger.Regions, alert.Regions) {
		return nil
	}
	trigger.Alerting = alert.Active
	trigger.Regions = alert.Regions
	trigger.LastAlert = time.Now().UTC()
	return []Message{m.triggerState(cam, trigger)}
}

func (m *Manager) findCamera(id string) *CameraDetails {
	for _, cam := range m.cameras {
		if cam.Config.Identifier() == id {
			return cam
		}
	}
	return nil
}

func (c *CameraDetails) findTrigger(id core.EventIdentifier) *TriggerDetails {
	for _, t := range c.Triggers {
		if t.Trigger.Identifier == id {
			return t
		}
	}
	return nil
}

// cameraRefresh republishes everything retained about one camera: all
// trigger states, the log and the availability.
func (m *Manager) cameraRefresh(cam *CameraDetails) []Message {
	messages := make([]Message, 0, len(cam.Triggers)+2)
	for _, trigger := range cam.Triggers {
		messages = append(messages, m.triggerState(cam, trigger))
	}
	messages = append(messages, m.cameraLog(cam))
	messages = append(messages, m.cameraAvailability(cam))
	return messages
}

func (m *Manager) cameraAvailability(cam *CameraDetails) Message {
	payload := "offline"
	if cam.Connected {
		payload = "online"
	}
	return newMessage(m.topics.CameraAvailability(cam.Config.Identifier()), payload)
}

func (m *Manager) cameraLog(cam *CameraDetails) Message {
	return newMessage(m.topics.CameraLog(cam.Config.Identifier()), cam.Log)
}

func (m *Manager) triggerState(cam *CameraDetails, trigger *TriggerDetails) Message {
	regions := trigger.Regions
	if regions == nil {
		regions = []core.DetectionRegion{}
	}
	return newJSONMessage(
		m.topics.TriggerState(cam.Config.Identifier(), trigger.Trigger.Identifier),
		triggerStatePayload{
			Alerting: trigger.Alerting,
			Regions:  regions,
		},
	)
}

type triggerStatePayload struct {
	Alerting bool                   `json:"alerting"`
	Regions  []core.DetectionRegion `json:"regions"`
}
