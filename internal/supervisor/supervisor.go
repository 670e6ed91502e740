// internal/supervisor/supervisor.go
package supervisor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/core"
	"github.com/sua-org/hik-sink/internal/hikvision"
	"github.com/sua-org/hik-sink/internal/manager"
	"github.com/sua-org/hik-sink/internal/metrics"
	"github.com/sua-org/hik-sink/internal/mqttclient"
)

// busCapacity bounds the event queue between all camera sessions and the
// manager. A camera spamming alerts briefly blocks its own goroutine
// instead of growing memory or dropping events.
const busCapacity = 20

// Supervisor wires the whole pipeline: one session goroutine per configured
// camera producing onto the bus, a single loop folding bus events through
// the manager, and the MQTT client publishing the result. The manager is
// touched by that one loop only, so no state is shared.
type Supervisor struct {
	cfg  *config.Config
	mgr  *manager.Manager
	mqtt *mqttclient.Client
	log  *logrus.Entry

	events     chan core.CameraEvent
	connNotify chan struct{}
}

func New(cfg *config.Config) *Supervisor {
	mgr := manager.New(cfg.Cameras,
		manager.NewTopics(cfg.Mqtt.BaseTopic, cfg.Mqtt.HomeAssistantTopic))

	s := &Supervisor{
		cfg:        cfg,
		mgr:        mgr,
		log:        logrus.WithField("component", "supervisor"),
		events:     make(chan core.CameraEvent, busCapacity),
		connNotify: make(chan struct{}, 1),
	}

	will := mgr.LWT()
	s.mqtt = mqttclient.New(mqttclient.Options{
		Config:    cfg.Mqtt,
		Will:      &will,
		OnConnect: s.notifyConnected,
	})
	return s
}

// notifyConnected runs on the paho callback goroutine; pending
// notifications coalesce since one full replay covers them all.
func (s *Supervisor) notifyConnected() {
	select {
	case s.connNotify <- struct{}{}:
	default:
	}
}

// Run starts all camera sessions and serializes events through the manager
// until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	for _, cam := range s.cfg.Cameras {
		session := hikvision.NewSession(cam)
		go session.Run(ctx, s.events)
	}

	for {
		select {
		case <-ctx.Done():
			s.drain()
			s.mqtt.Close()
			return nil
		case ev := <-s.events:
			metrics.CameraEvents.WithLabelValues(ev.CameraID, eventKind(ev)).Inc()
			s.publishAll(s.mgr.HandleEvent(ev))
		case <-s.connNotify:
			s.publishAll(s.mgr.ConnectionEstablished())
		}
	}
}

// drain folds whatever the sessions already queued before shutdown so their
// final Disconnected states still reach the broker.
func (s *Supervisor) drain() {
	for {
		select {
		case ev := <-s.events:
			s.publishAll(s.mgr.HandleEvent(ev))
		default:
			return
		}
	}
}

func (s *Supervisor) publishAll(messages []manager.Message) {
	for _, msg := range messages {
		metrics.MqttPublishes.Inc()
		if err := s.mqtt.Publish(msg); err != nil {
			metrics.MqttPublishErrors.Inc()
			s.log.WithError(err).WithField("topic", msg.Topic).Error("unable to publish MQTT message")
		}
	}
}

func eventKind(ev core.CameraEvent) string {
	switch {
	case ev.Connected != nil:
		return "connected"
	case ev.Disconnected != nil:
		return "disconnected"
	case ev.Alert != nil:
		return "alert"
	default:
		return "unknown"
	}
}
