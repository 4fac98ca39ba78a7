package probes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KindPostgres is the kind of PostgresProbe.
const KindPostgres = "postgres"

// Pinger is satisfied by *pgxpool.Pool and pgxmock pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresProbe pings a PostgreSQL pool.
type PostgresProbe struct {
	db    Pinger
	close func()
}

// NewPostgresProbe creates a probe for an existing pool. The caller owns db.
func NewPostgresProbe(db Pinger) *PostgresProbe {
	return &PostgresProbe{db: db}
}

// OpenPostgres creates a small pool for dsn and a probe that owns it.
// The pool connects lazily, so an unreachable database is reported by
// Check, not here.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresProbe, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		// pgx errors may echo the DSN.
		return nil, fmt.Errorf("%w: dsn could not be parsed", ErrInvalidParam)
	}
	cfg.MaxConns = 2
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &PostgresProbe{db: pool, close: pool.Close}, nil
}

func newPostgresFromParams(ctx context.Context, params Params) (*PostgresProbe, error) {
	dsn, err := params.Required("dsn")
	if err != nil {
		return nil, err
	}
	return OpenPostgres(ctx, dsn)
}

// Kind implements observe.Kinded.
func (p *PostgresProbe) Kind() string { return KindPostgres }

// Check implements health.Probe.
func (p *PostgresProbe) Check(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Close closes the pool if the probe opened it.
func (p *PostgresProbe) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}
