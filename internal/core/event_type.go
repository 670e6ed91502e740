// internal/core/event_type.go
package core

import "fmt"

// EventType is a Hikvision alert trigger kind. The value of a known type is
// its canonical upper-camel-case spelling, which is stable because it is used
// in MQTT topics and Home Assistant unique_ids. Unknown but well-formed types
// keep the spelling the camera sent.
type EventType string

const (
	EventIo                   EventType = "Io"
	EventMotion               EventType = "Motion"
	EventLineDetection        EventType = "LineDetection"
	EventUnattendedBaggage    EventType = "UnattendedBaggage"
	EventAttendedBaggage      EventType = "AttendedBaggage"
	EventRegionEntrance       EventType = "RegionEntrance"
	EventRegionExiting        EventType = "RegionExiting"
	EventSceneChangeDetection EventType = "SceneChangeDetection"
	EventFieldDetection       EventType = "FieldDetection"
	EventFaceDetection        EventType = "FaceDetection"
	EventFaceSnap             EventType = "FaceSnap"
	EventAudioException       EventType = "AudioException"
	EventVideoLoss            EventType = "VideoLoss"
	EventTamper               EventType = "Tamper"
	EventVideoMismatch        EventType = "VideoMismatch"
	EventBadVideo             EventType = "BadVideo"
	EventStorageDetection     EventType = "StorageDetection"
	EventRecordingFailure     EventType = "RecordingFailure"
	EventDiskFull             EventType = "DiskFull"
	EventDiskError            EventType = "DiskError"
	EventNicBroken            EventType = "NicBroken"
	EventIpConflict           EventType = "IpConflict"
	EventIllegalAccess        EventType = "IllegalAccess"
)

// KnownEventTypes lists every closed variant, in declaration order.
var KnownEventTypes = []EventType{
	EventIo,
	EventMotion,
	EventLineDetection,
	EventUnattendedBaggage,
	EventAttendedBaggage,
	EventRegionEntrance,
	EventRegionExiting,
	EventSceneChangeDetection,
	EventFieldDetection,
	EventFaceDetection,
	EventFaceSnap,
	EventAudioException,
	EventVideoLoss,
	EventTamper,
	EventVideoMismatch,
	EventBadVideo,
	EventStorageDetection,
	EventRecordingFailure,
	EventDiskFull,
	EventDiskError,
	EventNicBroken,
	EventIpConflict,
	EventIllegalAccess,
}

// Cameras are inconsistent with the case of event types, even within the same
// model, so lookups go through this lowercased table. The vendor also uses a
// few spellings that differ from the canonical one ("vmd", "shelteralarm",
// "illaccess").
var eventTypeLookup = map[string]EventType{
	"io":                   EventIo,
	"vmd":                  EventMotion,
	"linedetection":        EventLineDetection,
	"unattendedbaggage":    EventUnattendedBaggage,
	"attendedbaggage":      EventAttendedBaggage,
	"regionentrance":       EventRegionEntrance,
	"regionexiting":        EventRegionExiting,
	"scenechangedetection": EventSceneChangeDetection,
	"fielddetection":       EventFieldDetection,
	"facedetection":        EventFaceDetection,
	"facesnap":             EventFaceSnap,
	"audioexception":       EventAudioException,
	"videoloss":            EventVideoLoss,
	"tamperdetection":      EventTamper,
	"shelteralarm":         EventTamper,
	"videomismatch":        EventVideoMismatch,
	"badvideo":             EventBadVideo,
	"storagedetection":     EventStorageDetection,
	"recordingfailure":     EventRecordingFailure,
	"diskfull":             EventDiskFull,
	"diskerror":            EventDiskError,
	"nicbroken":            EventNicBroken,
	"ipconflict":           EventIpConflict,
	"illaccess":            EventIllegalAccess,
}

// ParseEventType maps a raw eventType string to its canonical EventType.
// Unknown strings are accepted as-is so new firmware event kinds still show
// up downstream, but only if they are purely alphanumeric; anything else is
// rejected as malformed.
func ParseEventType(s string) (EventType, error) {
	if et, ok := eventTypeLookup[lowerASCII(s)]; ok {
		return et, nil
	}
	for _, c := range []byte(s) {
		if !isAlnumASCII(c) {
			return "", fmt.Errorf("event type %q contains non-alphanumeric characters", s)
		}
	}
	return EventType(s), nil
}

var knownEventTypes = func() map[EventType]struct{} {
	m := make(map[EventType]struct{}, len(KnownEventTypes))
	for _, et := range KnownEventTypes {
		m[et] = struct{}{}
	}
	return m
}()

// Known reports whether the type is one of the closed variants.
func (e EventType) Known() bool {
	_, ok := knownEventTypes[e]
	return ok
}

func (e EventType) String() string { return string(e) }

// IsVideoLoss reports whether this is the VideoLoss event, which non-NVR
// devices deliver on the alert stream without listing it as a trigger.
func (e EventType) IsVideoLoss() bool { return e == EventVideoLoss }

// FriendlyName is the human-readable name used in discovery entity names.
func (e EventType) FriendlyName() string {
	switch e {
	case EventIo:
		return "I/O Port"
	case EventMotion:
		return "Motion"
	case EventLineDetection:
		return "Line Crossing"
	case EventUnattendedBaggage:
		return "Unattended Baggage"
	case EventAttendedBaggage:
		return "Attended Baggage"
	case EventRegionEntrance:
		return "Region Entering"
	case EventRegionExiting:
		return "Region Exiting"
	case EventSceneChangeDetection:
		return "Scene Change"
	case EventFieldDetection:
		return "Field Detection"
	case EventFaceDetection:
		return "Face Detection"
	case EventFaceSnap:
		return "Face Snapshot"
	case EventAudioException:
		return "Audio Exception"
	case EventVideoLoss:
		return "Video Loss"
	case EventTamper:
		return "Tamper"
	case EventVideoMismatch:
		return "Video Mismatch"
	case EventBadVideo:
		return "Bad Video"
	case EventStorageDetection:
		return "Storage Detection"
	case EventRecordingFailure:
		return "Recording Failure"
	case EventDiskFull:
		return "Disk Full"
	case EventDiskError:
		return "Disk Error"
	case EventNicBroken:
		return "Network Card Broken"
	case EventIpConflict:
		return "IP Address Conflict"
	case EventIllegalAccess:
		return "Illegal Access"
	default:
		return string(e)
	}
}

// DeviceClass maps to a Home Assistant binary sensor device class.
// See https://www.home-assistant.io/integrations/binary_sensor/#device-class
// Empty means the discovery payload omits the field.
func (e EventType) DeviceClass() string {
	switch e {
	case EventIo:
		return ""
	case EventVideoLoss, EventTamper, EventVideoMismatch, EventBadVideo,
		EventStorageDetection, EventRecordingFailure, EventDiskFull,
		EventDiskError, EventNicBroken, EventIpConflict, EventIllegalAccess:
		return "problem"
	default:
		// Scene and behaviour detections, plus anything unknown.
		return "motion"
	}
}

// Icon maps to a Material Design icon. Empty means the entity keeps the
// device-class default.
func (e EventType) Icon() string {
	switch e {
	case EventIo:
		return "mdi:electric-switch"
	case EventUnattendedBaggage, EventAttendedBaggage:
		return "mdi:bag-suitcase"
	case EventRegionEntrance:
		return "mdi:import"
	case EventRegionExiting:
		return "mdi:export"
	case EventFaceDetection, EventFaceSnap:
		return "mdi:face-recognition"
	case EventAudioException:
		return "mdi:microphone"
	case EventVideoLoss, EventVideoMismatch, EventBadVideo:
		return "mdi:camera-off"
	case EventStorageDetection, EventRecordingFailure, EventDiskFull, EventDiskError:
		return "mdi:harddisk"
	case EventNicBroken, EventIpConflict:
		return "mdi:lan-disconnect"
	case EventIllegalAccess:
		return "mdi:account-alert"
	default:
		return ""
	}
}

// EventIdentifier keys a trigger within a camera. Channel distinguishes
// multi-sensor devices (NVRs, multi-lens cameras); it is empty for
// single-channel devices.
type EventIdentifier struct {
	Channel string    `json:"channel,omitempty"`
	Type    EventType `json:"event_type"`
}

func NewEventIdentifier(channel string, et EventType) EventIdentifier {
	return EventIdentifier{Channel: channel, Type: et}
}

// Display renders the identifier for entity names, e.g. "CH2 Motion".
func (e EventIdentifier) Display() string {
	if e.Channel != "" {
		return fmt.Sprintf("CH%s %s", e.Channel, e.Type.FriendlyName())
	}
	return e.Type.FriendlyName()
}

func lowerASCII(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func isAlnumASCII(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
