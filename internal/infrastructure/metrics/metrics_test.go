package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.TransactionOperations == nil || m.Reconciliations == nil || m.StatisticsDuration == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.Reconciliations.Inc()
	m.TransactionOperations.WithLabelValues("create").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.Reconciliations); got != 1 {
		t.Fatalf("expected 1 reconciliation, got %v", got)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
