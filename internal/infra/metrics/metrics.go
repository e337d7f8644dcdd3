// Package metrics exposes the command loop's counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice-grbl/internal/domain"
)

const namespace = "voicegrbl"

// Collector implements application.Metrics on its own registry.
type Collector struct {
	registry       *prometheus.Registry
	commands       *prometheus.CounterVec
	transcriptions prometheus.Counter
	deviceErrors   prometheus.Counter
	cycles         prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Interpreted commands by kind.",
		}, []string{"kind"}),
		transcriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_failures_total",
			Help:      "Utterances that produced no usable transcript.",
		}),
		deviceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_errors_total",
			Help:      "Protocol lines the controller link failed to deliver.",
		}),
		cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_seconds",
			Help:      "Time from utterance to device reply.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}

	c.registry.MustRegister(
		c.commands,
		c.transcriptions,
		c.deviceErrors,
		c.cycles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveCommand(kind domain.CommandKind) {
	c.commands.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) ObserveTranscriptionFailure() {
	c.transcriptions.Inc()
}

func (c *Collector) ObserveDeviceError() {
	c.deviceErrors.Inc()
}

func (c *Collector) ObserveCycle(d time.Duration) {
	c.cycles.Observe(d.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NewServer mounts Handler at /metrics.
func (c *Collector) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", c.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
