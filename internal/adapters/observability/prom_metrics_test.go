package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg, zerolog.Nop())

	obs.IncCounter(ports.MetricReadingsStored, 5)
	if got := testutil.ToFloat64(obs.counters[ports.MetricReadingsStored]); got != 5 {
		t.Fatalf("expected stored counter 5, got %f", got)
	}

	obs.IncCounter(ports.MetricInsertErrors, 2)
	if got := testutil.ToFloat64(obs.counters[ports.MetricInsertErrors]); got != 2 {
		t.Fatalf("expected insert error counter 2, got %f", got)
	}

	obs.SetGauge(ports.MetricLastRainMM, 42)
	if got := testutil.ToFloat64(obs.gauges[ports.MetricLastRainMM]); got != 42 {
		t.Fatalf("expected rain gauge 42, got %f", got)
	}

	obs.ObserveLatency(ports.MetricInsertLatency, 0.5)
	hCollector := obs.histos[ports.MetricInsertLatency].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.IncCounter("unknown_metric", 1)
	obs.SetGauge("unknown_gauge", 1)

	if n, err := testutil.GatherAndCount(reg); err != nil || n != 8 {
		t.Fatalf("expected 8 registered metric families, got %d (%v)", n, err)
	}
}

func TestPromObsRecordRejected(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPromObs(prometheus.NewRegistry(), zerolog.New(&buf))

	obs.RecordRejected("RAIN=abc,LEVEL=정상,SERVO=ON", errors.New("bad rain"))

	if got := testutil.ToFloat64(obs.counters[ports.MetricParseErrors]); got != 1 {
		t.Fatalf("expected parse error counter 1, got %f", got)
	}
	out := buf.String()
	if !strings.Contains(out, "parse_failed") || !strings.Contains(out, "RAIN=abc") || !strings.Contains(out, "bad rain") {
		t.Fatalf("expected rejected line and cause in log, got %s", out)
	}
}

func TestPromObsLogFields(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPromObs(prometheus.NewRegistry(), zerolog.New(&buf))

	obs.LogInfo("reading_stored", ports.Field{Key: "rain_mm", Value: 23})
	obs.LogCritical("serial_read_failed", errors.New("eof"))

	out := buf.String()
	if !strings.Contains(out, `"rain_mm":23`) {
		t.Fatalf("expected structured field in log, got %s", out)
	}
	if !strings.Contains(out, `"level":"fatal"`) || !strings.Contains(out, "eof") {
		t.Fatalf("expected critical entry, got %s", out)
	}
}
