// internal/hikvision/device_info_test.go
package hikvision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/hik-sink/internal/core"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(body)
}

func TestParseDeviceInfo(t *testing.T) {
	info, err := ParseDeviceInfo(fixture(t, "device_info_ptz.xml"))
	require.NoError(t, err)

	assert.Equal(t, core.DeviceInfo{
		DeviceName:          "PTZ",
		DeviceID:            "7ccc4404-e05d-4376-8ebf-81127da67c11",
		Model:               "DS-2DE4A425IW-DE",
		SerialNumber:        "DS-2DE4A425IW-DE20180101AAWRC52000000W",
		MacAddress:          "ff:ff:ff:ff:ff:ff",
		FirmwareVersion:     "V5.5.71",
		FirmwareReleaseDate: "build 180725",
		DeviceType:          "IPDome",
	}, info)
}

func TestParseDeviceInfoWrongRoot(t *testing.T) {
	_, err := ParseDeviceInfo(`<NotDeviceInfo><deviceName>x</deviceName></NotDeviceInfo>`)
	var rootErr *RootNodeIncorrectError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, "NotDeviceInfo", rootErr.Name)
}

func TestParseDeviceInfoMissingField(t *testing.T) {
	_, err := ParseDeviceInfo(`<DeviceInfo><deviceName>cam</deviceName></DeviceInfo>`)
	var missing *FieldMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "deviceID", missing.Field)
}

func TestParseDeviceInfoEmptyDocument(t *testing.T) {
	_, err := ParseDeviceInfo("")
	assert.Error(t, err)
}
