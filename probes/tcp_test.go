package probes

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPProbe_Check(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	p, err := NewTCPProbe(ln.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, KindTCP, p.Kind())
	assert.NoError(t, p.Check(context.Background()))

	require.NoError(t, ln.Close())
	assert.Error(t, p.Check(context.Background()), "closed listener should fail")
}

func TestTCPProbe_CanceledContext(t *testing.T) {
	p, err := NewTCPProbe("127.0.0.1:1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Check(ctx))
}
