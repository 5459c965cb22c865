package floodbarrier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/observability"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/serial"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/store"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/app/pipeline"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/logging"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	source        LineSource
	store         Store
	observability Observability
	registry      *prometheus.Registry
	logger        *zerolog.Logger
}

// WithLineSource replaces the serial port, e.g. with a simulator or a replay file.
func WithLineSource(src LineSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = src
	}
}

// WithStore injects a custom store instead of the configured database.
func WithStore(s Store) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.store = s
	}
}

// WithObservability plugs in a custom logging and metrics backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRegistry registers the pipeline metrics on reg and serves them from it.
func WithRegistry(reg *prometheus.Registry) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registry = reg
	}
}

// WithLogger overrides the logger built from Config.Log.
func WithLogger(log zerolog.Logger) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.logger = &log
	}
}

// Runtime wires the serial source, the ingestion loop, the store and the
// metrics endpoint together.
type Runtime struct {
	cfg        *Config
	log        zerolog.Logger
	obs        ports.Observability
	store      ports.Store
	source     ports.LineSource
	registry   *prometheus.Registry
	metricsSrv *http.Server
}

// NewRuntime builds the default adapters from cfg. Nothing is opened until Run.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	log := logging.New(cfg.Log)
	if overrides.logger != nil {
		log = *overrides.logger
	}

	reg := overrides.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(reg, log)
	}

	st := overrides.store
	if st == nil {
		gw, err := store.NewGateway(cfg.Database, obs)
		if err != nil {
			return nil, err
		}
		st = gw
	}

	return &Runtime{
		cfg:      cfg,
		log:      log,
		obs:      obs,
		store:    st,
		source:   overrides.source,
		registry: reg,
	}, nil
}

// Run opens the serial port, starts the metrics endpoint and blocks in the
// ingestion loop until ctx is cancelled or the serial link fails. A port that
// cannot be opened yields *SerialOpenError before anything else starts.
func (r *Runtime) Run(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	if r.source == nil {
		src, err := serial.Open(r.cfg.Serial)
		if err != nil {
			r.obs.LogCritical("serial_open_failed", err, ports.Field{Key: "port", Value: r.cfg.Serial.Port})
			return err
		}
		r.source = src
	}
	r.obs.LogInfo("serial_opened",
		ports.Field{Key: "port", Value: r.cfg.Serial.Port},
		ports.Field{Key: "baud_rate", Value: r.cfg.Serial.BaudRate})

	r.startMetrics()

	runErr := pipeline.RunIngestPipeline(ctx, r.source, r.store, r.cfg.Policy(), r.obs)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(runErr, r.Shutdown(shutdownCtx))
}

// Shutdown stops the metrics server and releases the serial port.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.source != nil {
		if err := r.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close serial: %w", err))
		}
		r.source = nil
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:              r.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := r.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server exited")
		}
	}()
}
