package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryProbeConfig configures the memory probe.
type MemoryProbeConfig struct {
	// Threshold is the fraction of MaxAlloc at which the probe fails.
	// Value should be between 0 and 1. Default: 0.9 (90%)
	Threshold float64

	// MaxAlloc is the heap budget in bytes.
	// If zero, the memory obtained from the OS (MemStats.Sys) is used.
	MaxAlloc uint64
}

// MemoryProbe reports the process unhealthy when heap usage crosses a threshold.
type MemoryProbe struct {
	config MemoryProbeConfig
	read   func(*runtime.MemStats)
}

// NewMemoryProbe creates a new memory probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = 0.9
	}

	return &MemoryProbe{config: config, read: runtime.ReadMemStats}
}

// Check implements Probe.
func (m *MemoryProbe) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	usage, err := m.Usage()
	if err != nil {
		return err
	}

	if usage >= m.config.Threshold {
		return fmt.Errorf("memory usage %.1f%% exceeds %.1f%%", usage*100, m.config.Threshold*100)
	}
	return nil
}

// Usage returns the current heap allocation as a fraction of the budget.
func (m *MemoryProbe) Usage() (float64, error) {
	var stats runtime.MemStats
	m.read(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return 0, fmt.Errorf("memory stats unavailable")
	}

	return float64(stats.HeapAlloc) / float64(budget), nil
}

// Config returns the probe configuration.
func (m *MemoryProbe) Config() MemoryProbeConfig {
	return m.config
}
