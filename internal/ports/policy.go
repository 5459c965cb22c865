package ports

import "time"

// Metric names shared by the pipeline and the Prometheus adapter.
const (
	MetricLinesReceived  = "floodbarrier_lines_received_total"
	MetricReadingsStored = "floodbarrier_readings_stored_total"
	MetricParseErrors    = "floodbarrier_parse_errors_total"
	MetricInsertErrors   = "floodbarrier_insert_errors_total"
	MetricReconnects     = "floodbarrier_db_reconnects_total"
	MetricInsertLatency  = "floodbarrier_insert_latency_seconds"
	MetricDBConnected    = "floodbarrier_db_connected"
	MetricLastRainMM     = "floodbarrier_last_rain_mm"
)

// Policy holds the pipeline's timing knobs.
type Policy struct {
	// ReconnectDelay is the fixed wait between database connection attempts.
	ReconnectDelay time.Duration
}
