// internal/hikvision/triggers.go
package hikvision

import (
	"fmt"

	"github.com/sua-org/hik-sink/internal/core"
)

// ParseTriggers decodes the /ISAPI/Event/triggers response into the list of
// configured triggers. Some firmwares nest the list under
// EventNotification/EventTriggerList, others put the trigger elements
// directly at the root, so both shapes are accepted.
func ParseTriggers(s string) ([]core.TriggerItem, error) {
	root, err := parseXML(s)
	if err != nil {
		return nil, fmt.Errorf("triggers XML invalid: %w", err)
	}

	container := root
	if c := container.child("EventNotification"); c != nil {
		container = c
	}
	if c := container.child("EventTriggerList"); c != nil {
		container = c
	} else {
		container = root
	}

	var triggers []core.TriggerItem
	for _, trigger := range container.children {
		vendorID, err := trigger.requiredText("id")
		if err != nil {
			return nil, err
		}
		rawType, err := trigger.requiredText("eventType")
		if err != nil {
			return nil, err
		}
		eventType, err := core.ParseEventType(rawType)
		if err != nil {
			return nil, &EventTypeInvalidError{Provided: rawType, Err: err}
		}

		var description string
		if d := trigger.child("eventDescription"); d != nil {
			description = d.Text()
		}
		var channel string
		if c := trigger.firstChild(
			"videoInputChannelID",
			"dynVideoInputChannelID",
			"inputIOPortID",
			"dynInputIOPortID",
		); c != nil {
			channel = c.Text()
		}

		triggers = append(triggers, core.TriggerItem{
			Identifier:  core.NewEventIdentifier(channel, eventType),
			VendorID:    vendorID,
			Description: description,
		})
	}
	return triggers, nil
}
