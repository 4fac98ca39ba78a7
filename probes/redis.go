package probes

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KindRedis is the kind of RedisProbe.
const KindRedis = "redis"

// RedisProbe sends PING.
type RedisProbe struct {
	client redis.UniversalClient
	owned  bool
}

// NewRedisProbe creates a probe for an existing client. The caller owns client.
func NewRedisProbe(client redis.UniversalClient) *RedisProbe {
	return &RedisProbe{client: client}
}

// newRedisFromParams accepts either url (redis://...) or a comma-separated
// address list with optional password and db.
func newRedisFromParams(_ context.Context, params Params) (*RedisProbe, error) {
	if raw := params.String("url", ""); raw != "" {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: url could not be parsed", ErrInvalidParam)
		}
		return &RedisProbe{client: redis.NewClient(opts), owned: true}, nil
	}

	addrs := params.List("address")
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: url or address", ErrMissingParam)
	}
	db, err := params.Int("db", 0)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: params.String("password", ""),
		DB:       db,
	})
	return &RedisProbe{client: client, owned: true}, nil
}

// Kind implements observe.Kinded.
func (p *RedisProbe) Kind() string { return KindRedis }

// Check implements health.Probe.
func (p *RedisProbe) Check(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the client if the probe created it.
func (p *RedisProbe) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Close()
}
