// Package observability implements invoke.Instrumentation with
// Prometheus counters/histograms and OpenTelemetry spans (SPEC_FULL
// "Observability"), so the core itself stays free of any metrics or
// tracing dependency.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// Metrics implements invoke.Instrumentation with Prometheus collectors
// and, when a tracer is supplied, one OpenTelemetry span per invocation
// spanning from its first observed transition to its terminal one.
type Metrics struct {
	stateTransitions  *prometheus.CounterVec
	producerOutcomes  *prometheus.CounterVec
	stateDwellSeconds *prometheus.HistogramVec

	tracer trace.Tracer

	mu    sync.Mutex
	spans map[*invoke.InvocationContext]spanState
}

type spanState struct {
	start time.Time
	span  trace.Span
}

// NewMetrics builds a Metrics instrumentation instance and registers its
// collectors with reg. tracer is typically
// otel.Tracer("invoke-core/pipeline"); pass nil to disable spans and keep
// metrics only.
func NewMetrics(reg prometheus.Registerer, tracer trace.Tracer) *Metrics {
	m := &Metrics{
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoke_core",
			Name:      "state_transitions_total",
			Help:      "Count of InvocationContext state transitions, by previous and next state.",
		}, []string{"from", "to"}),
		producerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoke_core",
			Name:      "producer_dispositions_total",
			Help:      "Count of ResultProducer dispositions, by whether the result was produced or discarded.",
		}, []string{"disposition"}),
		stateDwellSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invoke_core",
			Name:      "state_dwell_seconds",
			Help:      "Time spent in each state before transitioning out of it.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
		tracer: tracer,
		spans:  make(map[*invoke.InvocationContext]spanState),
	}
	reg.MustRegister(m.stateTransitions, m.producerOutcomes, m.stateDwellSeconds)
	return m
}

// OnStateChange records the transition, observes how long ctx dwelled in
// prev, and — if a tracer was configured — opens a span on the first
// transition seen for ctx and closes it on the terminal one.
func (m *Metrics) OnStateChange(ctx *invoke.InvocationContext, prev, next invoke.State) {
	m.stateTransitions.WithLabelValues(prev.String(), next.String()).Inc()

	now := time.Now()
	m.mu.Lock()
	st, seen := m.spans[ctx]
	if !seen {
		st = spanState{start: now}
		if m.tracer != nil {
			_, st.span = m.tracer.Start(context.Background(), "invoke."+ctx.GetInvokedMethod().Name)
		}
	}
	prevStart := st.start
	st.start = now
	if next.IsTerminal() {
		delete(m.spans, ctx)
	} else {
		m.spans[ctx] = st
	}
	m.mu.Unlock()

	if seen {
		m.stateDwellSeconds.WithLabelValues(prev.String()).Observe(now.Sub(prevStart).Seconds())
	}
	if st.span != nil {
		st.span.AddEvent(next.String())
		if next.IsTerminal() {
			st.span.End()
		}
	}
}

// OnProducerDisposition records whether a ResultProducer was produced or
// discarded.
func (m *Metrics) OnProducerDisposition(_ *invoke.InvocationContext, produced bool) {
	label := "discarded"
	if produced {
		label = "produced"
	}
	m.producerOutcomes.WithLabelValues(label).Inc()
}
