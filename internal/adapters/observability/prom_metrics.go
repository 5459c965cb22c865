package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// PromObs logs through zerolog and records pipeline metrics in Prometheus.
type PromObs struct {
	log      zerolog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the pipeline collectors with reg. A nil reg means
// prometheus.DefaultRegisterer.
func NewPromObs(reg prometheus.Registerer, log zerolog.Logger) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	received := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricLinesReceived,
		Help: "Non-empty lines read from the serial link.",
	})
	stored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricReadingsStored,
		Help: "Readings committed to the store.",
	})
	parseErrs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricParseErrors,
		Help: "Lines rejected by the record parser.",
	})
	insertErrs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricInsertErrors,
		Help: "Readings dropped because the insert failed.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricReconnects,
		Help: "Database reconnects after a dead connection was detected.",
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricDBConnected,
		Help: "1 while the ingestion loop holds a live database connection.",
	})
	lastRain := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricLastRainMM,
		Help: "Water level of the most recently stored reading, in millimetres.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricInsertLatency,
		Help:    "Time spent committing one reading.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	reg.MustRegister(received, stored, parseErrs, insertErrs, reconnects, connected, lastRain, latency)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			ports.MetricLinesReceived:  received,
			ports.MetricReadingsStored: stored,
			ports.MetricParseErrors:    parseErrs,
			ports.MetricInsertErrors:   insertErrs,
			ports.MetricReconnects:     reconnects,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricDBConnected: connected,
			ports.MetricLastRainMM:  lastRain,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricInsertLatency: latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	withFields(p.log.Info(), fields).Msg(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	withFields(p.log.Error().Err(err), fields).Msg(msg)
}

// LogCritical never exits the process; callers decide whether to stop.
func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	withFields(p.log.WithLevel(zerolog.FatalLevel).Err(err), fields).Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordRejected(line string, err error) {
	p.IncCounter(ports.MetricParseErrors, 1)
	p.log.Warn().Err(err).Str("line", line).Msg("parse_failed")
}

func withFields(e *zerolog.Event, fields []ports.Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

var _ ports.Observability = (*PromObs)(nil)
