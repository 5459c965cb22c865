package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

const livenessTimeout = 2 * time.Second

// ErrClosed is returned by operations on a closed Conn.
var ErrClosed = errors.New("store: connection closed")

// InsertError reports a reading that was not persisted.
type InsertError struct {
	Reading domain.Reading
	Err     error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert reading (%s): %v", e.Reading, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// Conn is a live handle to the reading log. It is not shared between
// the writer and readers.
type Conn struct {
	db      *sql.DB
	dialect dialect
	table   string
	charset string
}

// EnsureSchema creates the reading log table if it does not exist.
func (c *Conn) EnsureSchema(ctx context.Context) error {
	if c.db == nil {
		return ErrClosed
	}
	if _, err := c.db.ExecContext(ctx, c.dialect.schema(c.table, c.charset)); err != nil {
		return fmt.Errorf("ensure table %s: %w", c.table, err)
	}
	return nil
}

// Insert appends one reading. The statement runs in autocommit mode, so a
// nil error means the row is durable.
func (c *Conn) Insert(ctx context.Context, r domain.Reading) error {
	if c.db == nil {
		return &InsertError{Reading: r, Err: ErrClosed}
	}
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(c.dialect.insert, c.table),
		r.RainMM,
		r.Level,
		c.dialect.servoArg(r.ServoOn),
	)
	if err != nil {
		return &InsertError{Reading: r, Err: err}
	}
	return nil
}

// IsConnected pings the database.
func (c *Conn) IsConnected(ctx context.Context) bool {
	if c.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()
	return c.db.PingContext(ctx) == nil
}

// Recent returns up to limit rows, newest first.
func (c *Conn) Recent(ctx context.Context, limit int) ([]domain.Row, error) {
	if c.db == nil {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(c.dialect.recent, c.table), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent rows: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Row, 0, limit)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent rows: %w", err)
	}
	return out, nil
}

func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// scanRow converts raw driver values into a domain.Row. Drivers disagree on
// how timestamps and the servo flag come back, so both are scanned loosely
// and normalised here.
func scanRow(rows *sql.Rows) (domain.Row, error) {
	var (
		id    int64
		ts    any
		rain  sql.NullInt64
		level sql.NullString
		servo any
	)
	if err := rows.Scan(&id, &ts, &rain, &level, &servo); err != nil {
		return domain.Row{}, fmt.Errorf("scan row: %w", err)
	}

	recordedAt, err := toTime(ts)
	if err != nil {
		return domain.Row{}, fmt.Errorf("row %d ts: %w", id, err)
	}
	servoOn, err := toBool(servo)
	if err != nil {
		return domain.Row{}, fmt.Errorf("row %d servo: %w", id, err)
	}

	return domain.Row{
		ID:         id,
		RecordedAt: recordedAt,
		RainMM:     int(rain.Int64),
		Level:      level.String,
		ServoOn:    servoOn,
	}, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateTime,
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case nil:
		return time.Time{}, nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case nil:
		return false, nil
	case []byte:
		return parseBoolText(string(b))
	case string:
		return parseBoolText(b)
	default:
		return false, fmt.Errorf("unsupported type %T", v)
	}
}

func parseBoolText(s string) (bool, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, nil
	}
	return strconv.ParseBool(s)
}

var (
	_ ports.StoreConn = (*Conn)(nil)
	_ ports.RowReader = (*Conn)(nil)
)
