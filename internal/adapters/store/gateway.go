package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/retry"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// Opener opens a database handle; sql.Open in production.
type Opener func(driverName, dsn string) (*sql.DB, error)

// Option customizes a Gateway.
type Option func(*Gateway)

// WithOpener replaces sql.Open, mainly for tests.
func WithOpener(open Opener) Option {
	return func(g *Gateway) {
		if open != nil {
			g.open = open
		}
	}
}

// Gateway owns connection setup for the reading log.
type Gateway struct {
	cfg     Config
	dialect dialect
	open    Opener
	obs     ports.Observability
}

func NewGateway(cfg Config, obs ports.Observability, opts ...Option) (*Gateway, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	if obs == nil {
		return nil, fmt.Errorf("observability is required")
	}
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	g := &Gateway{cfg: cfg, dialect: d, open: sql.Open, obs: obs}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

func (g *Gateway) Name() string { return g.cfg.Driver }

// Dial makes a single connection attempt.
func (g *Gateway) Dial(ctx context.Context) (*Conn, error) {
	db, err := g.open(g.dialect.driver, g.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s %s: %w", g.cfg.Driver, g.cfg.Addr(), err)
	}
	// One writer, one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, g.cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s %s: %w", g.cfg.Driver, g.cfg.Addr(), err)
	}

	return &Conn{
		db:      db,
		dialect: g.dialect,
		table:   g.cfg.Table,
		charset: g.cfg.Charset,
	}, nil
}

// Connect dials until it succeeds, waiting ReconnectDelay between attempts.
// It returns an error only when ctx is done.
func (g *Gateway) Connect(ctx context.Context) (ports.StoreConn, error) {
	var conn *Conn
	err := retry.Forever(ctx, g.cfg.ReconnectDelay, func(ctx context.Context) error {
		c, err := g.Dial(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, func(err error, next time.Duration) {
		g.obs.LogError("db_connect_failed", err,
			ports.Field{Key: "driver", Value: g.cfg.Driver},
			ports.Field{Key: "addr", Value: g.cfg.Addr()},
			ports.Field{Key: "retry_in", Value: next.String()})
	})
	if err != nil {
		return nil, err
	}

	g.obs.LogInfo("db_connected",
		ports.Field{Key: "driver", Value: g.cfg.Driver},
		ports.Field{Key: "addr", Value: g.cfg.Addr()},
		ports.Field{Key: "table", Value: g.cfg.Table})
	return conn, nil
}

var _ ports.Store = (*Gateway)(nil)
