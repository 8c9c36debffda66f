package observability

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestBackendRequestsTotal(t *testing.T) {
	before := counterValue(t, "openaicompat", "test-model", "success")
	BackendRequestsTotal.WithLabelValues("openaicompat", "test-model", "success").Inc()
	after := counterValue(t, "openaicompat", "test-model", "success")

	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestToolExecutionsTotal(t *testing.T) {
	ToolExecutionsTotal.WithLabelValues("get_weather", "error").Inc()

	m := &dto.Metric{}
	c, err := ToolExecutionsTotal.GetMetricWithLabelValues("get_weather", "error")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Write(m); err != nil {
		t.Fatal(err)
	}
	if m.GetCounter().GetValue() < 1 {
		t.Errorf("counter = %v, want >= 1", m.GetCounter().GetValue())
	}
}

func TestBackendLatencyObserve(t *testing.T) {
	// Must not panic with the registered label set.
	BackendLatency.WithLabelValues("lmstudio", "test-model").Observe(0.42)
	TurnIterations.Observe(3)
}

func counterValue(t *testing.T, labels ...string) float64 {
	t.Helper()
	c, err := BackendRequestsTotal.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatal(err)
	}
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}
