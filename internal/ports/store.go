package ports

import (
	"context"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
)

// Store opens connections to the reading log.
type Store interface {
	// Connect blocks until a connection is established. It fails when ctx
	// is done or the store can never accept readings again.
	Connect(ctx context.Context) (StoreConn, error)
	Name() string
}

// StoreConn is a live connection owned by exactly one caller.
type StoreConn interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, r domain.Reading) error
	IsConnected(ctx context.Context) bool
	Close() error
}

// RowReader is the read side used by the viewer.
type RowReader interface {
	Recent(ctx context.Context, limit int) ([]domain.Row, error)
}
