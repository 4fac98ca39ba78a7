package probes

import (
	"context"
	"fmt"

	"github.com/jonwraymond/healthd/health"
)

// KindMemory is the kind of MemoryProbe.
const KindMemory = "memory"

// MemoryProbe reports heap pressure of the healthd process itself.
type MemoryProbe struct {
	*health.MemoryProbe
}

func newMemoryFromParams(_ context.Context, params Params) (*MemoryProbe, error) {
	threshold, err := params.Float("threshold", 0.9)
	if err != nil {
		return nil, err
	}
	maxMB, err := params.Int("max_alloc_mb", 0)
	if err != nil {
		return nil, err
	}
	if maxMB < 0 {
		return nil, fmt.Errorf("%w: max_alloc_mb=%d", ErrInvalidParam, maxMB)
	}

	return &MemoryProbe{health.NewMemoryProbe(health.MemoryProbeConfig{
		Threshold: threshold,
		MaxAlloc:  uint64(maxMB) << 20,
	})}, nil
}

// Kind implements observe.Kinded.
func (p *MemoryProbe) Kind() string { return KindMemory }
