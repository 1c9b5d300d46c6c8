// Package metrics exposes Prometheus metrics for the sign-in handshake.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/layer-3/walletauth/core"
)

// Metrics records handshake outcomes and stage latencies.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	StagesTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// New creates the handshake metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletauth_handshakes_total",
				Help: "Total number of sign-in handshakes by result code",
			},
			[]string{"code"},
		),
		StagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletauth_stages_total",
				Help: "Total number of handshake stage executions by stage and result code",
			},
			[]string{"stage", "code"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletauth_stage_duration_seconds",
				Help:    "Handshake stage latency, including time spent waiting on the wallet",
				Buckets: []float64{.005, .025, .1, .5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
	}

	reg.MustRegister(m.RunsTotal, m.StagesTotal, m.StageDuration)

	return m
}

// NewRegistry returns a registry with the Go and process collectors registered
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// ObserveStage records one stage execution. An empty code means success.
func (m *Metrics) ObserveStage(stage core.Stage, d time.Duration, code string) {
	m.StagesTotal.WithLabelValues(string(stage), resultLabel(code)).Inc()
	m.StageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// ObserveRun records the outcome of a whole handshake
func (m *Metrics) ObserveRun(code string) {
	m.RunsTotal.WithLabelValues(resultLabel(code)).Inc()
}

func resultLabel(code string) string {
	if code == "" {
		return "OK"
	}
	return code
}
