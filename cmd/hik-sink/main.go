// cmd/hik-sink/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/metrics"
	"github.com/sua-org/hik-sink/internal/supervisor"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "hik-sink",
		Short:         "Hiksink camera events to MQTT service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(),
		"Path to configuration file. See sample_config.toml for format.")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath honours HIKSINK_CONFIG when the flag is not given.
func defaultConfigPath() string {
	if v := os.Getenv("HIKSINK_CONFIG"); v != "" {
		return v
	}
	return "config.toml"
}

func run(configPath string) error {
	// A .env next to the binary is an optional convenience for the
	// HIKSINK_ overrides.
	if err := godotenv.Load(); err == nil {
		logrus.Debug(".env loaded")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.System.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid system.log_level %q: %w", cfg.System.LogLevel, err)
	}
	logrus.SetLevel(level)

	logrus.Info("HikSink MQTT bridge running")
	logrus.Tracef("config: %+v", cfg)

	if cfg.System.MetricsListen != "" {
		go func() {
			if err := metrics.Serve(cfg.System.MetricsListen); err != nil {
				logrus.WithError(err).Error("metrics listener stopped")
			}
		}()
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

	return supervisor.New(cfg).Run(ctx)
}
