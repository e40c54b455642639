package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

func TestMetrics_OnStateChange_CountsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, nil)

	ctx := invoke.New(invoke.Options{
		Locator:         invoke.Locator{Namespace: "ns", Identity: "id"},
		Method:          invoke.MethodDescriptor{Name: "Do"},
		Instrumentation: m,
	})

	m.OnStateChange(ctx, invoke.StateWaiting, invoke.StateReady)
	m.OnStateChange(ctx, invoke.StateReady, invoke.StateDone)

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() != "invoke_core_state_transitions_total" {
			continue
		}
		found = true
		var total float64
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		if total != 2 {
			t.Fatalf("expected 2 transitions recorded, got %v", total)
		}
	}
	if !found {
		t.Fatal("state_transitions_total metric not found")
	}
}

func TestMetrics_OnProducerDisposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, nil)

	m.OnProducerDisposition(nil, true)
	m.OnProducerDisposition(nil, false)
	m.OnProducerDisposition(nil, false)

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var produced, discarded float64
	for _, mf := range metricFamilies {
		if mf.GetName() != "invoke_core_producer_dispositions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "disposition" {
					v := metric.GetCounter().GetValue()
					if l.GetValue() == "produced" {
						produced = v
					} else if l.GetValue() == "discarded" {
						discarded = v
					}
				}
			}
		}
	}
	if produced != 1 || discarded != 2 {
		t.Fatalf("expected produced=1 discarded=2, got produced=%v discarded=%v", produced, discarded)
	}
}
