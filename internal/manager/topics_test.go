// internal/manager/topics_test.go
package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sua-org/hik-sink/internal/core"
)

func TestTopics(t *testing.T) {
	topics := DefaultTopics()

	assert.Equal(t, "hikvision_cameras/availability", topics.GlobalAvailability())
	assert.Equal(t, "hikvision_cameras/stats", topics.GlobalStats())
	assert.Equal(t, "hikvision_cameras/device_cam1/availability", topics.CameraAvailability("cam1"))
	assert.Equal(t, "hikvision_cameras/device_cam1/log", topics.CameraLog("cam1"))

	withChannel := core.NewEventIdentifier("1", core.EventMotion)
	withoutChannel := core.NewEventIdentifier("", core.EventDiskFull)

	assert.Equal(t, "hikvision_cameras/device_cam1/ch1/Motion",
		topics.TriggerState("cam1", withChannel))
	assert.Equal(t, "hikvision_cameras/device_cam1/DiskFull",
		topics.TriggerState("cam1", withoutChannel))

	assert.Equal(t, "device_cam1_ch1_Motion", topics.TriggerDiscoveryID("cam1", withChannel))
	assert.Equal(t, "device_cam1_DiskFull", topics.TriggerDiscoveryID("cam1", withoutChannel))

	assert.Equal(t, "homeassistant/binary_sensor/hiksink/device_cam1_ch1_Motion/config",
		topics.TriggerDiscovery("cam1", withChannel))
	assert.Equal(t, "homeassistant/sensor/hiksink/cameras_total/config",
		topics.GlobalStatsDiscovery("cameras_total"))
}

func TestTopicsCustomBase(t *testing.T) {
	topics := NewTopics("cams", "ha")
	assert.Equal(t, "cams/availability", topics.GlobalAvailability())
	assert.Equal(t, "ha/sensor/hiksink/triggers_total/config",
		topics.GlobalStatsDiscovery("triggers_total"))
}
