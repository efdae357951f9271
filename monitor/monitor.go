// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedPlayers  prometheus.Gauge
	GamesStarted      prometheus.Counter
	RequestsReceived  prometheus.Counter
	RequestsRejected  prometheus.Counter
	MissionsCompleted prometheus.Counter
	RequestLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of players with a live connection",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Total number of games started",
		}),
		RequestsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_received_total",
			Help:      "Total number of game requests received",
		}),
		RequestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Total number of game requests rejected by validation",
		}),
		MissionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missions_completed_total",
			Help:      "Total number of missions resolved",
		}),
		RequestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_seconds",
			Help:      "Game request processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedPlayers,
		m.GamesStarted,
		m.RequestsReceived,
		m.RequestsRejected,
		m.MissionsCompleted,
		m.RequestLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

// StartServer serves /metrics plus expvar on its own address.
func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) SetConnectedPlayers(count int) {
	m.metrics.ConnectedPlayers.Set(float64(count))
}

func (m *Monitor) IncGamesStarted() {
	m.metrics.GamesStarted.Inc()
}

func (m *Monitor) IncRequestsReceived() {
	m.metrics.RequestsReceived.Inc()
}

func (m *Monitor) IncRequestsRejected() {
	m.metrics.RequestsRejected.Inc()
}

func (m *Monitor) IncMissionsCompleted() {
	m.metrics.MissionsCompleted.Inc()
}

func (m *Monitor) ObserveRequestLatency(duration time.Duration) {
	m.metrics.RequestLatency.Observe(duration.Seconds())
}
