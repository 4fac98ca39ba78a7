package probes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/healthd/health"
)

func TestStaticProbe(t *testing.T) {
	ok, err := Build(context.Background(), KindStatic, nil)
	require.NoError(t, err)
	assert.NoError(t, ok.Check(context.Background()))

	failing, err := Build(context.Background(), KindStatic, map[string]string{"healthy": "false", "detail": "maintenance"})
	require.NoError(t, err)
	assert.EqualError(t, failing.Check(context.Background()), "maintenance")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ok.Check(ctx), context.Canceled)
}

func TestMemoryProbe_FromParams(t *testing.T) {
	p, err := newMemoryFromParams(context.Background(), Params{"threshold": "0.5", "max_alloc_mb": "64"})
	require.NoError(t, err)

	assert.Equal(t, KindMemory, p.Kind())
	assert.Equal(t, health.MemoryProbeConfig{Threshold: 0.5, MaxAlloc: 64 << 20}, p.Config())
}

func TestProbesInRunner(t *testing.T) {
	reg := health.NewRegistry()
	require.NoError(t, reg.Register("up", 0, NewStaticProbe(nil)))
	require.NoError(t, reg.Register("down", 0, NewStaticProbe(assert.AnError), health.NonCritical()))

	agg := health.NewRunner().Evaluate(context.Background(), reg)
	assert.Equal(t, health.StatusDegraded, agg.Overall)
	assert.Equal(t, assert.AnError.Error(), agg.Results[1].Detail)
}
