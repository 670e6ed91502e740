// internal/hikvision/device_info.go
package hikvision

import (
	"fmt"

	"github.com/sua-org/hik-sink/internal/core"
)

// ParseDeviceInfo decodes the /ISAPI/System/deviceInfo response.
func ParseDeviceInfo(s string) (core.DeviceInfo, error) {
	root, err := parseXML(s)
	if err != nil {
		return core.DeviceInfo{}, fmt.Errorf("device info XML invalid: %w", err)
	}
	if root.name != "DeviceInfo" {
		return core.DeviceInfo{}, &RootNodeIncorrectError{Name: root.name}
	}

	var info core.DeviceInfo
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"deviceName", &info.DeviceName},
		{"deviceID", &info.DeviceID},
		{"model", &info.Model},
		{"serialNumber", &info.SerialNumber},
		{"macAddress", &info.MacAddress},
		{"firmwareVersion", &info.FirmwareVersion},
		{"firmwareReleasedDate", &info.FirmwareReleaseDate},
		{"deviceType", &info.DeviceType},
	} {
		v, err := root.requiredText(f.name)
		if err != nil {
			return core.DeviceInfo{}, err
		}
		*f.dst = v
	}
	return info, nil
}
