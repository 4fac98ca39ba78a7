package probes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers PING; every other method panics through the nil embed.
type fakeRedis struct {
	redis.UniversalClient
	err    error
	closed bool
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "ping")
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisProbe_Check(t *testing.T) {
	client := &fakeRedis{}
	p := NewRedisProbe(client)
	assert.Equal(t, KindRedis, p.Kind())
	assert.NoError(t, p.Check(context.Background()))

	client.err = errors.New("LOADING Redis is loading the dataset in memory")
	assert.EqualError(t, p.Check(context.Background()), "LOADING Redis is loading the dataset in memory")
}

func TestRedisProbe_CloseOnlyOwned(t *testing.T) {
	client := &fakeRedis{}
	require.NoError(t, NewRedisProbe(client).Close())
	assert.False(t, client.closed)

	owned := &RedisProbe{client: client, owned: true}
	require.NoError(t, owned.Close())
	assert.True(t, client.closed)
}

func TestRedisProbe_Unreachable(t *testing.T) {
	probe, err := newRedisFromParams(context.Background(), Params{"address": "127.0.0.1:1"})
	require.NoError(t, err)
	defer probe.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, probe.Check(ctx))
}
