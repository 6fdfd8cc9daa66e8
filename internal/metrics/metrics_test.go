package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ItemsRejected.WithLabelValues("missing_field").Inc()
	m.BatchesTotal.WithLabelValues(OutcomeStored).Inc()
	m.WriteDuration.Observe(0.01)

	if got := testutil.CollectAndCount(m.ItemsRejected); got != 1 {
		t.Fatalf("expected 1 rejected series, got %d", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"seclog_items_received_total",
		"seclog_items_rejected_total",
		"seclog_timestamp_fallback_total",
		"seclog_records_written_total",
		"seclog_batches_total",
		"seclog_write_duration_seconds",
		"seclog_archive_failures_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	New(reg)
}
