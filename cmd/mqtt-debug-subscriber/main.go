// cmd/mqtt-debug-subscriber/main.go
//
// Small operator tool: subscribes to everything the bridge publishes
// (including the retained state a fresh subscriber would see) and
// pretty-prints it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/mqttclient"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "mqtt-debug-subscriber",
		Short:         "Dump every topic the HikSink bridge publishes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.toml",
		"Path to the bridge configuration file (for broker address and topics).")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cli := mqttclient.New(mqttclient.Options{
		Config:   cfg.Mqtt,
		ClientID: "hik-sink-debug-subscriber",
	})
	defer cli.Close()

	topics := []string{
		cfg.Mqtt.BaseTopic + "/#",
		cfg.Mqtt.HomeAssistantTopic + "/binary_sensor/hiksink/#",
		cfg.Mqtt.HomeAssistantTopic + "/sensor/hiksink/#",
	}
	// The client may still be in its initial connect; subscribe retries
	// until it goes through.
	for _, topic := range topics {
		for attempt := 0; ; attempt++ {
			if err := cli.Subscribe(topic, 1, handleMessage); err == nil {
				logrus.WithField("topic", topic).Info("subscribed")
				break
			} else if attempt > 30 {
				return fmt.Errorf("subscribing to %s: %w", topic, err)
			}
			time.Sleep(time.Second)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logrus.Info("signal received, shutting down")
		cancel()
	}()

	<-ctx.Done()
	return nil
}

func handleMessage(topic string, payload []byte) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		// Availability and log topics carry plain strings.
		fmt.Printf("%s  %s\n", topic, payload)
		return
	}
	pretty, _ := json.MarshalIndent(raw, "", "  ")
	fmt.Printf("%s\n%s\n", topic, pretty)
}
