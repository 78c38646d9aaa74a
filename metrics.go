package smpp

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codcod/smpp/pdu"
)

// Metrics collects Prometheus counters and gauges for sessions and PDU
// traffic. A nil *Metrics is valid everywhere it's used — every method has
// a nil receiver guard, so wiring metrics is opt-in.
type Metrics struct {
	sessionsOpen  *prometheus.GaugeVec
	pduSentTotal  *prometheus.CounterVec
	pduRecvTotal  *prometheus.CounterVec
	bindFailures  prometheus.Counter
	throttleTotal prometheus.Counter
}

// NewMetrics registers the SMPP collectors on reg and returns a Metrics
// ready to pass into SessionConf.Metrics. Pass a dedicated *prometheus.Registry
// to avoid collisions when running multiple engines in one process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "smpp",
			Name:      "sessions_open",
			Help:      "Number of currently open SMPP sessions by type.",
		}, []string{"type"}),
		pduSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smpp",
			Name:      "pdu_sent_total",
			Help:      "Number of PDUs sent by command.",
		}, []string{"command"}),
		pduRecvTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smpp",
			Name:      "pdu_received_total",
			Help:      "Number of PDUs received by command.",
		}, []string{"command"}),
		bindFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpp",
			Name:      "bind_failures_total",
			Help:      "Number of failed bind attempts.",
		}),
		throttleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpp",
			Name:      "throttled_requests_total",
			Help:      "Number of requests rejected with ESME_RTHROTTLED.",
		}),
	}
	reg.MustRegister(m.sessionsOpen, m.pduSentTotal, m.pduRecvTotal, m.bindFailures, m.throttleTotal)
	return m
}

func (m *Metrics) sessionOpened(t SessionType) {
	if m == nil {
		return
	}
	m.sessionsOpen.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) sessionClosed(t SessionType) {
	if m == nil {
		return
	}
	m.sessionsOpen.WithLabelValues(t.String()).Dec()
}

func (m *Metrics) pduSent(id pdu.CommandID) {
	if m == nil {
		return
	}
	m.pduSentTotal.WithLabelValues(id.String()).Inc()
}

func (m *Metrics) pduReceived(id pdu.CommandID) {
	if m == nil {
		return
	}
	m.pduRecvTotal.WithLabelValues(id.String()).Inc()
}

func (m *Metrics) bindFailed() {
	if m == nil {
		return
	}
	m.bindFailures.Inc()
}

func (m *Metrics) throttled() {
	if m == nil {
		return
	}
	m.throttleTotal.Inc()
}
