package exporter

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics exposes reporter activity to Prometheus.
// It satisfies reporter.Observer.
type Metrics struct {
	registry    *prometheus.Registry
	reports     *prometheus.CounterVec
	retries     prometheus.Counter
	lastSuccess prometheus.Gauge
	cpuLoad     prometheus.Gauge
	ramLoad     prometheus.Gauge
	now         func() time.Time

	mu          sync.RWMutex
	lastReport  time.Time
	lastOK      time.Time
	lastFailure string
}

// NewMetrics initializes collectors labelled with the reporter identity.
func NewMetrics(probeID, nodeID, replicaID string) *Metrics {
	reg := prometheus.NewRegistry()
	identity := prometheus.Labels{"probe": probeID, "node": nodeID, "replica": replicaID}

	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vigil_reporter_reports_total",
		Help:        "Report attempts by outcome",
		ConstLabels: identity,
	}, []string{"outcome"})

	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "vigil_reporter_retries_total",
		Help:        "Report attempts made after a failed report",
		ConstLabels: identity,
	})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "vigil_reporter_last_success_timestamp_seconds",
		Help:        "Unix time of the last accepted report",
		ConstLabels: identity,
	})

	cpuLoad := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "vigil_reporter_load_cpu",
		Help:        "Last sampled load average per logical core",
		ConstLabels: identity,
	})

	ramLoad := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "vigil_reporter_load_ram",
		Help:        "Last sampled fraction of memory in use",
		ConstLabels: identity,
	})

	reg.MustRegister(reports, retries, lastSuccess, cpuLoad, ramLoad)

	// expose both series from the first scrape
	reports.WithLabelValues(outcomeSuccess)
	reports.WithLabelValues(outcomeFailure)

	return &Metrics{
		registry:    reg,
		reports:     reports,
		retries:     retries,
		lastSuccess: lastSuccess,
		cpuLoad:     cpuLoad,
		ramLoad:     ramLoad,
		now:         time.Now,
	}
}

// Handler returns the HTTP handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LoadSampled records the load figures of the current cycle.
func (m *Metrics) LoadSampled(cpu, ram float64) {
	m.cpuLoad.Set(cpu)
	m.ramLoad.Set(ram)
}

// ReportFinished records the outcome of one delivery attempt.
func (m *Metrics) ReportFinished(retry bool, err error) {
	now := m.now()
	if retry {
		m.retries.Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReport = now
	if err != nil {
		m.reports.WithLabelValues(outcomeFailure).Inc()
		m.lastFailure = err.Error()
		return
	}
	m.reports.WithLabelValues(outcomeSuccess).Inc()
	m.lastSuccess.Set(float64(now.Unix()))
	m.lastOK = now
	m.lastFailure = ""
}

// Status summarises the latest delivery for the health endpoint.
type Status struct {
	Status      string    `json:"status"`
	LastReport  time.Time `json:"lastReport"`
	LastSuccess time.Time `json:"lastSuccess"`
	LastError   string    `json:"lastError,omitempty"`
}

// Status returns "initializing" before the first attempt, then "ok" or "failing"
// depending on the latest attempt.
func (m *Metrics) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := Status{
		Status:      "ok",
		LastReport:  m.lastReport,
		LastSuccess: m.lastOK,
		LastError:   m.lastFailure,
	}
	switch {
	case m.lastReport.IsZero():
		status.Status = "initializing"
	case m.lastFailure != "":
		status.Status = "failing"
	}
	return status
}
