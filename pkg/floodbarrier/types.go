package floodbarrier

import (
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/serial"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// Reading is one parsed telemetry line.
type Reading = domain.Reading

// Row is a persisted reading as returned by the store.
type Row = domain.Row

// LineSource yields raw lines; the serial port in production.
type LineSource = ports.LineSource

// Store opens connections to the reading log.
type Store = ports.Store

// StoreConn is one live connection held by the ingestion loop.
type StoreConn = ports.StoreConn

// RowReader fetches the most recent rows for display.
type RowReader = ports.RowReader

// Observability emits logs and metrics about the ingestion loop.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Policy tunes the ingestion loop.
type Policy = ports.Policy

// SerialOpenError is returned by Runtime.Run when the serial device cannot be
// opened. It is the only fatal startup error.
type SerialOpenError = serial.OpenError

// ParseReading parses one RAIN=..,LEVEL=..,SERVO=.. line.
func ParseReading(line string) (Reading, error) {
	return domain.ParseReading(line)
}

// Parse error classes, for errors.Is.
var (
	ErrFieldCount    = domain.ErrFieldCount
	ErrFieldFormat   = domain.ErrFieldFormat
	ErrNumericFormat = domain.ErrNumericFormat
)
