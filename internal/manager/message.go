// internal/manager/message.go
package manager

import "encoding/json"

// QoS mirrors the MQTT quality-of-service levels.
type QoS byte

const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

// Message is one MQTT publish the manager wants performed. The manager only
// ever produces retained QoS-1 messages: subscribers reconstruct the full
// state from what the broker retained.
type Message struct {
	Topic   string
	QoS     QoS
	Retain  bool
	Payload []byte
}

func newMessage(topic, payload string) Message {
	return Message{
		Topic:   topic,
		QoS:     AtLeastOnce,
		Retain:  true,
		Payload: []byte(payload),
	}
}

func newJSONMessage(topic string, v any) Message {
	payload, err := json.Marshal(v)
	if err != nil {
		// All payload types here are plain structs of strings, bools and
		// numbers; marshalling them cannot fail.
		panic(err)
	}
	return Message{
		Topic:   topic,
		QoS:     AtLeastOnce,
		Retain:  true,
		Payload: payload,
	}
}
