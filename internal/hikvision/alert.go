// internal/hikvision/alert.go
package hikvision

import (
	"fmt"
	"strconv"

	"github.com/sua-org/hik-sink/internal/core"
)

// ParseAlert decodes one EventNotificationAlert document from the alert
// stream.
func ParseAlert(s string) (core.AlertItem, error) {
	root, err := parseXML(s)
	if err != nil {
		return core.AlertItem{}, fmt.Errorf("alert XML invalid: %w", err)
	}
	if root.name != "EventNotificationAlert" {
		return core.AlertItem{}, &FieldMissingError{Field: "EventNotificationAlert"}
	}

	rawType, err := root.requiredText("eventType")
	if err != nil {
		return core.AlertItem{}, err
	}
	eventType, err := core.ParseEventType(rawType)
	if err != nil {
		return core.AlertItem{}, &EventTypeInvalidError{Provided: rawType, Err: err}
	}

	state, err := root.requiredText("eventState")
	if err != nil {
		return core.AlertItem{}, err
	}
	var active bool
	switch state {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		return core.AlertItem{}, &EventStateInvalidError{Found: state}
	}

	description, err := root.requiredText("eventDescription")
	if err != nil {
		return core.AlertItem{}, err
	}
	date, err := root.requiredText("dateTime")
	if err != nil {
		return core.AlertItem{}, err
	}

	rawCount, err := root.requiredText("activePostCount")
	if err != nil {
		return core.AlertItem{}, err
	}
	postCount, err := strconv.ParseUint(rawCount, 10, 64)
	if err != nil {
		return core.AlertItem{}, &NumberExpectedError{Field: "activePostCount", Err: err}
	}

	var channel string
	if c := root.firstChild("channelID", "dynChannelID"); c != nil {
		channel = c.Text()
	}

	regions, err := parseRegionList(root)
	if err != nil {
		return core.AlertItem{}, err
	}

	return core.AlertItem{
		Identifier:  core.NewEventIdentifier(channel, eventType),
		Active:      active,
		Regions:     regions,
		PostCount:   postCount,
		Description: description,
		Date:        date,
	}, nil
}

func parseRegionList(root *xmlElement) ([]core.DetectionRegion, error) {
	container := root.child("DetectionRegionList")
	if container == nil {
		return nil, nil
	}

	var regions []core.DetectionRegion
	for _, entry := range container.children {
		if entry.name != "DetectionRegionEntry" {
			return nil, &InvalidChildError{Expected: "DetectionRegionEntry", Found: entry.name}
		}
		id, err := entry.requiredText("regionID")
		if err != nil {
			return nil, err
		}
		rawSensitivity, err := entry.requiredText("sensitivityLevel")
		if err != nil {
			return nil, err
		}
		sensitivity, err := strconv.ParseUint(rawSensitivity, 10, 8)
		if err != nil {
			return nil, &NumberExpectedError{Field: "sensitivityLevel", Err: err}
		}

		var coordinates []core.RegionCoordinates
		if list := entry.child("RegionCoordinatesList"); list != nil {
			for _, coord := range list.children {
				x, err := coordValue(coord, "positionX")
				if err != nil {
					return nil, err
				}
				y, err := coordValue(coord, "positionY")
				if err != nil {
					return nil, err
				}
				coordinates = append(coordinates, core.RegionCoordinates{X: x, Y: y})
			}
		}
		regions = append(regions, core.DetectionRegion{
			ID:          id,
			Sensitivity: uint8(sensitivity),
			Coordinates: coordinates,
		})
	}
	return regions, nil
}

func coordValue(coord *xmlElement, field string) (uint32, error) {
	raw, err := coord.requiredText(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &NumberExpectedError{Field: field, Err: err}
	}
	return uint32(v), nil
}
