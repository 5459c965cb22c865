package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// RunIngestPipeline reads lines from src and appends every well-formed
// reading to the store, one line at a time, until ctx is cancelled.
//
// A malformed line is logged and dropped. A failed insert is logged and
// the reading is dropped; if the connection turns out to be dead the loop
// reconnects before reading the next line. Database outages never end the
// loop. It returns nil on cancellation and an error only when the line
// source fails. The store connection is always closed on return; src is
// owned by the caller.
func RunIngestPipeline(ctx context.Context, src ports.LineSource, store ports.Store, pol ports.Policy, obs ports.Observability) error {
	conn, err := establish(ctx, store, pol, obs)
	if err != nil {
		return shutdownErr(err)
	}
	defer func() {
		obs.SetGauge(ports.MetricDBConnected, 0)
		if conn != nil {
			closeConn(conn, obs)
		}
	}()

	obs.LogInfo("ingest_started", ports.Field{Key: "store", Value: store.Name()})

	for {
		if ctx.Err() != nil {
			obs.LogInfo("ingest_stopping")
			return nil
		}

		raw, err := src.ReadLine(ctx)
		if err != nil {
			obs.LogCritical("serial_read_failed", err)
			return fmt.Errorf("read line: %w", err)
		}
		if len(raw) == 0 {
			continue
		}

		line := domain.DecodeLine(raw)
		if line == "" {
			continue
		}
		obs.IncCounter(ports.MetricLinesReceived, 1)
		obs.LogInfo("line_received", ports.Field{Key: "line", Value: line})

		reading, err := domain.ParseReading(line)
		if err != nil {
			obs.RecordRejected(line, err)
			continue
		}

		// A write that has started is allowed to finish even if a stop was
		// requested meanwhile.
		writeCtx := context.WithoutCancel(ctx)
		start := time.Now()
		if err := conn.Insert(writeCtx, reading); err != nil {
			obs.IncCounter(ports.MetricInsertErrors, 1)
			obs.LogError("insert_failed", err, ports.Field{Key: "line", Value: line})
			if conn.IsConnected(writeCtx) {
				continue
			}

			obs.SetGauge(ports.MetricDBConnected, 0)
			closeConn(conn, obs)
			conn, err = establish(ctx, store, pol, obs)
			if err != nil {
				return shutdownErr(err)
			}
			obs.IncCounter(ports.MetricReconnects, 1)
			continue
		}

		obs.ObserveLatency(ports.MetricInsertLatency, time.Since(start).Seconds())
		obs.IncCounter(ports.MetricReadingsStored, 1)
		obs.SetGauge(ports.MetricLastRainMM, float64(reading.RainMM))
		obs.LogInfo("reading_stored",
			ports.Field{Key: "rain_mm", Value: reading.RainMM},
			ports.Field{Key: "level", Value: reading.Level},
			ports.Field{Key: "servo", Value: domain.ServoLabel(reading.ServoOn)})
	}
}

// establish connects and prepares the schema, retrying the pair until both
// succeed or ctx is done.
func establish(ctx context.Context, store ports.Store, pol ports.Policy, obs ports.Observability) (ports.StoreConn, error) {
	for {
		conn, err := store.Connect(ctx)
		if err != nil {
			return nil, err
		}
		if err := conn.EnsureSchema(context.WithoutCancel(ctx)); err != nil {
			obs.LogError("ensure_schema_failed", err)
			closeConn(conn, obs)
			if !sleepCtx(ctx, pol.ReconnectDelay) {
				return nil, ctx.Err()
			}
			continue
		}
		obs.SetGauge(ports.MetricDBConnected, 1)
		return conn, nil
	}
}

func closeConn(conn ports.StoreConn, obs ports.Observability) {
	if err := conn.Close(); err != nil {
		obs.LogError("db_close_failed", err)
	}
}

func shutdownErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
