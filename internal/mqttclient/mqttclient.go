// internal/mqttclient/mqttclient.go
package mqttclient

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/manager"
)

// ClientID is fixed so the broker resumes the same (persistent) session
// across bridge restarts.
const ClientID = "hik-sink"

const (
	keepAlive         = 5 * time.Second
	reconnectInterval = 1 * time.Second
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // ms, paho flush window on Close
)

type Client struct {
	client mqtt.Client
	log    *logrus.Entry
}

// Options carries everything needed to open the broker connection.
type Options struct {
	Config   config.Mqtt
	ClientID string
	// Will, when set, is registered as the broker Last-Will.
	Will *manager.Message
	// OnConnect runs after every successful (re)connection, including the
	// first. The manager uses it to replay full state and discovery.
	OnConnect func()
}

// New builds the client and starts connecting. Connection and reconnection
// both retry forever with a bounded delay; a broker outage pauses
// publishing rather than failing the bridge.
func New(opts Options) *Client {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = ClientID
	}
	log := logrus.WithField("component", "mqtt")

	copts := mqtt.NewClientOptions()
	copts.AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Config.Address, opts.Config.Port))
	copts.SetClientID(clientID)
	// The session must survive broker restarts so retained subscriptions
	// and queued QoS-1 messages are not lost.
	copts.SetCleanSession(false)
	copts.SetKeepAlive(keepAlive)
	copts.SetAutoReconnect(true)
	copts.SetMaxReconnectInterval(reconnectInterval)
	copts.SetConnectRetry(true)
	copts.SetConnectRetryInterval(reconnectInterval)
	copts.SetConnectTimeout(connectTimeout)
	copts.SetOrderMatters(true)

	if opts.Config.Username != "" {
		copts.SetUsername(opts.Config.Username)
		copts.SetPassword(opts.Config.Password)
	}
	if opts.Will != nil {
		copts.SetBinaryWill(opts.Will.Topic, opts.Will.Payload, byte(opts.Will.QoS), opts.Will.Retain)
	}

	copts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("connected to MQTT broker")
		if opts.OnConnect != nil {
			opts.OnConnect()
		}
	})
	copts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	c := &Client{client: mqtt.NewClient(copts), log: log}
	c.client.Connect()
	return c
}

// Publish hands one message to the broker and waits for the client to accept
// it. Failures are returned, not fatal: the caller logs and moves on.
func (c *Client) Publish(msg manager.Message) error {
	token := c.client.Publish(msg.Topic, byte(msg.QoS), msg.Retain, msg.Payload)
	token.Wait()
	return token.Error()
}

// Subscribe registers a handler; used by the debug subscriber.
func (c *Client) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Topic(), m.Payload())
	})
	token.Wait()
	return token.Error()
}

func (c *Client) Close() {
	if c.client != nil && c.client.IsConnectionOpen() {
		c.client.Disconnect(disconnectQuiesce)
	}
}
