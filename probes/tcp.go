package probes

import (
	"context"
	"fmt"
	"net"
)

// KindTCP is the kind of TCPProbe.
const KindTCP = "tcp"

// TCPProbe fails unless a TCP connection to Address can be opened.
type TCPProbe struct {
	address string
	dialer  net.Dialer
}

// NewTCPProbe creates a TCP probe for a host:port address.
func NewTCPProbe(address string) (*TCPProbe, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("%w: address=%q", ErrInvalidParam, address)
	}
	return &TCPProbe{address: address}, nil
}

func newTCPFromParams(_ context.Context, params Params) (*TCPProbe, error) {
	address, err := params.Required("address")
	if err != nil {
		return nil, err
	}
	return NewTCPProbe(address)
}

// Kind implements observe.Kinded.
func (p *TCPProbe) Kind() string { return KindTCP }

// Check implements health.Probe.
func (p *TCPProbe) Check(ctx context.Context) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return err
	}
	return conn.Close()
}
