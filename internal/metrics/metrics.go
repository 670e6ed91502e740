// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bridge counters. Registration is global; the HTTP endpoint is only started
// when system.metrics_listen is configured.

var (
	CameraEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hiksink_camera_events_total",
		Help: "Camera lifecycle and alert events received on the bus.",
	}, []string{"camera", "kind"})

	CameraReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hiksink_camera_reconnects_total",
		Help: "Camera session reconnection attempts after a failure.",
	}, []string{"camera"})

	MqttPublishes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hiksink_mqtt_publishes_total",
		Help: "MQTT messages handed to the broker.",
	})

	MqttPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hiksink_mqtt_publish_errors_total",
		Help: "MQTT publishes that failed.",
	})
)

// Serve blocks serving /metrics on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
