package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		if m.GetName() != name {
			continue
		}
		mm := m.GetMetric()[0]
		if c := mm.GetCounter(); c != nil {
			return c.GetValue(), true
		}
		if g := mm.GetGauge(); g != nil {
			return g.GetValue(), true
		}
		if h := mm.GetHistogram(); h != nil {
			return float64(h.GetSampleCount()), true
		}
	}
	return 0, false
}

func TestCollector_Counter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter("tree_records_total", 5)
	c.IncCounter("tree_records_total", 3)

	val, ok := gatherValue(t, reg, "tree_records_total")
	if !ok {
		t.Fatal("counter not registered")
	}
	if val != 8 {
		t.Errorf("counter value = %v, want 8", val)
	}
}

func TestCollector_Gauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge("tree_nodes", 42)

	val, ok := gatherValue(t, reg, "tree_nodes")
	if !ok {
		t.Fatal("gauge not registered")
	}
	if val != 42 {
		t.Errorf("gauge value = %v, want 42", val)
	}
}

func TestCollector_Histogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram("sink_write_seconds", 0.5)
	c.ObserveHistogram("sink_write_seconds", 1.5)

	count, ok := gatherValue(t, reg, "sink_write_seconds")
	if !ok {
		t.Fatal("histogram not registered")
	}
	if count != 2 {
		t.Errorf("histogram count = %v, want 2", count)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preexisting",
		Help: "preexisting",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter("preexisting", 5)

	val, ok := gatherValue(t, reg, "preexisting")
	if !ok {
		t.Fatal("counter not found")
	}
	if val != 105 {
		t.Errorf("counter value = %v, want 105", val)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncCounter("concurrent_total", 1)
				c.SetGauge("concurrent_gauge", int64(j))
			}
		}()
	}
	wg.Wait()

	val, ok := gatherValue(t, reg, "concurrent_total")
	if !ok {
		t.Fatal("counter not found")
	}
	if val != 1000 {
		t.Errorf("counter value = %v, want 1000", val)
	}
}
