package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.RecordResolution(OutcomeMatch)
	m.RecordResolution(OutcomeMatch)
	m.RecordResolution(OutcomeRedirect)
	m.RecordRedirect()
	m.RecordLoad(LoadMiss)
	m.RecordLoad(LoadHit)
	m.ObserveLoad(15 * time.Millisecond)
	m.SetCachedViews(3)
	m.RecordNavigation(OutcomeMounted)

	if got := testutil.ToFloat64(m.resolutions.WithLabelValues(OutcomeMatch)); got != 2 {
		t.Errorf("resolutions{match} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.redirects); got != 1 {
		t.Errorf("redirects = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.loads.WithLabelValues(LoadHit)); got != 1 {
		t.Errorf("loads{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cachedViews); got != 3 {
		t.Errorf("cached_views = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(m.loadDuration); got != 1 {
		t.Errorf("load_duration collectors = %d, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_navigations_total" {
			found = true
		}
	}
	if !found {
		t.Error("test_navigations_total not registered")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordResolution(OutcomeMatch)
	m.RecordRedirect()
	m.RecordLoad(LoadHit)
	m.ObserveLoad(time.Second)
	m.SetCachedViews(1)
	m.RecordNavigation(OutcomeMounted)
}

func TestStartEnd(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	ctx, span := Start(context.Background(), tracer, "resolve", AttrPath.String("/dashboard"))
	if ctx == nil || span == nil {
		t.Fatal("Start returned nil")
	}
	End(span, errors.New("boom"))

	_, span = Start(context.Background(), nil, "load")
	End(span, nil)
}
