package store

import (
	"context"
	"sync"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// Reader is the viewer's read-only access to the reading log. It keeps its
// own connection, dials lazily and redials on the next call after a failure.
type Reader struct {
	gw *Gateway

	mu   sync.Mutex
	conn *Conn
}

func NewReader(gw *Gateway) *Reader {
	return &Reader{gw: gw}
}

func (r *Reader) Recent(ctx context.Context, limit int) ([]domain.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		conn, err := r.gw.Dial(ctx)
		if err != nil {
			return nil, err
		}
		r.conn = conn
	}

	rows, err := r.conn.Recent(ctx, limit)
	if err != nil {
		if !r.conn.IsConnected(ctx) {
			_ = r.conn.Close()
			r.conn = nil
		}
		return nil, err
	}
	return rows, nil
}

// Connected reports whether the reader currently holds a connection.
func (r *Reader) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

var _ ports.RowReader = (*Reader)(nil)
