// internal/core/types.go
package core

import "fmt"

// DeviceInfo is the camera metadata from /ISAPI/System/deviceInfo.
// Immutable after parse.
type DeviceInfo struct {
	DeviceName          string `json:"device_name"`
	DeviceID            string `json:"device_id"`
	Model               string `json:"model"`
	SerialNumber        string `json:"serial_number"`
	MacAddress          string `json:"mac_address"`
	FirmwareVersion     string `json:"firmware_version"`
	FirmwareReleaseDate string `json:"firmware_release_date"`
	DeviceType          string `json:"device_type"`
}

// TriggerItem is one configured event source on a device, from
// /ISAPI/Event/triggers.
type TriggerItem struct {
	Identifier  EventIdentifier `json:"identifier"`
	VendorID    string          `json:"vendor_id"`
	Description string          `json:"description"`
}

// SyntheticTrigger builds a TriggerItem from a bare identifier, for alerts
// that never appear in the initial trigger list (VideoLoss on non-NVR
// devices being the usual case).
func SyntheticTrigger(id EventIdentifier) TriggerItem {
	vendorID := id.Type.String()
	if id.Channel != "" {
		vendorID = fmt.Sprintf("%s-%s", vendorID, id.Channel)
	}
	return TriggerItem{Identifier: id, VendorID: vendorID}
}

// RegionCoordinates is one vertex of a detection region polygon.
type RegionCoordinates struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

// DetectionRegion is one region attached to an alert.
type DetectionRegion struct {
	ID          string              `json:"id"`
	Sensitivity uint8               `json:"sensitivity"`
	Coordinates []RegionCoordinates `json:"coordinates"`
}

// AlertItem is one parsed EventNotificationAlert from the alert stream.
type AlertItem struct {
	Identifier  EventIdentifier   `json:"identifier"`
	Active      bool              `json:"active"`
	Regions     []DetectionRegion `json:"regions"`
	PostCount   uint64            `json:"post_count"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
}

// RegionsEqual compares two region lists element-wise; a nil slice equals an
// empty one.
func RegionsEqual(a, b []DetectionRegion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Sensitivity != b[i].Sensitivity {
			return false
		}
		if len(a[i].Coordinates) != len(b[i].Coordinates) {
			return false
		}
		for j := range a[i].Coordinates {
			if a[i].Coordinates[j] != b[i].Coordinates[j] {
				return false
			}
		}
	}
	return true
}

// ConnectedEvent signals a fully established camera session.
type ConnectedEvent struct {
	Info     DeviceInfo
	Triggers []TriggerItem
}

// DisconnectedEvent signals a failed or dropped camera session.
type DisconnectedEvent struct {
	Error string
}

// CameraEvent is what camera sessions put on the bus. Exactly one of
// Connected, Disconnected and Alert is set.
type CameraEvent struct {
	CameraID     string
	Connected    *ConnectedEvent
	Disconnected *DisconnectedEvent
	Alert        *AlertItem
}
