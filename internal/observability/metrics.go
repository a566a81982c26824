package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Message scopes used as the "scope" label of messages sent.
const (
	ScopeDirect = "direct"
	ScopeRoom   = "room"
)

// Metrics holds the Prometheus collectors for the game server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	connectionsActive *prometheus.GaugeVec
	connectionsTotal  *prometheus.CounterVec
	commandsTotal     *prometheus.CounterVec
	messagesSent      *prometheus.CounterVec
	messagesDropped   prometheus.Counter
	queueDepth        prometheus.Gauge
	playersOnline     prometheus.Gauge
}

// NewMetrics creates the game collectors and registers them with reg.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wsmud_connections_active",
			Help: "Number of open client connections by transport.",
		}, []string{"transport"}),
		connectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsmud_connections_total",
			Help: "Total connections accepted since server start.",
		}, []string{"transport"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsmud_commands_total",
			Help: "Total input lines interpreted, by resulting action kind.",
		}, []string{"kind"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wsmud_messages_sent_total",
			Help: "Total messages enqueued to connections, by delivery scope.",
		}, []string{"scope"}),
		messagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wsmud_messages_dropped_total",
			Help: "Total messages dropped because a connection was closed or full.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wsmud_queue_depth",
			Help: "Events waiting in the game engine queue.",
		}),
		playersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wsmud_players_online",
			Help: "Number of players registered in the session registry.",
		}),
	}

	reg.MustRegister(
		m.connectionsActive,
		m.connectionsTotal,
		m.commandsTotal,
		m.messagesSent,
		m.messagesDropped,
		m.queueDepth,
		m.playersOnline,
	)
	return m
}

// ConnectionOpened records a new connection on transport.
func (m *Metrics) ConnectionOpened(transport string) {
	if m == nil {
		return
	}
	m.connectionsTotal.WithLabelValues(transport).Inc()
	m.connectionsActive.WithLabelValues(transport).Inc()
}

// ConnectionClosed records the end of a connection on transport.
func (m *Metrics) ConnectionClosed(transport string) {
	if m == nil {
		return
	}
	m.connectionsActive.WithLabelValues(transport).Dec()
}

// CommandHandled counts one interpreted line by its action kind.
func (m *Metrics) CommandHandled(kind string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(kind).Inc()
}

// MessageSent counts one enqueued message in scope.
func (m *Metrics) MessageSent(scope string) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(scope).Inc()
}

// MessageDropped counts one message that could not be enqueued.
func (m *Metrics) MessageDropped() {
	if m == nil {
		return
	}
	m.messagesDropped.Inc()
}

// SetQueueDepth records the number of pending engine events.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// SetPlayersOnline records the number of registered players.
func (m *Metrics) SetPlayersOnline(n int) {
	if m == nil {
		return
	}
	m.playersOnline.Set(float64(n))
}

// Handler returns an http.Handler exposing everything gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
