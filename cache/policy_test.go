package cache

import (
	"testing"
	"time"
)

func TestPolicy_EffectiveTTL(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		override time.Duration
		want     time.Duration
	}{
		{"default", Policy{DefaultTTL: 2 * time.Second, MaxTTL: time.Minute}, 0, 2 * time.Second},
		{"override", Policy{DefaultTTL: 2 * time.Second, MaxTTL: time.Minute}, 5 * time.Second, 5 * time.Second},
		{"clamped", Policy{DefaultTTL: 2 * time.Second, MaxTTL: time.Minute}, time.Hour, time.Minute},
		{"negative override uses default", Policy{DefaultTTL: 2 * time.Second}, -time.Second, 2 * time.Second},
		{"no max", Policy{DefaultTTL: 2 * time.Second}, time.Hour, time.Hour},
		{"disabled", Policy{MaxTTL: time.Minute}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}

func TestDefaultPolicy_Disabled(t *testing.T) {
	if DefaultPolicy().ShouldCache() {
		t.Error("DefaultPolicy should not cache")
	}
}

func TestTTLPolicy(t *testing.T) {
	p := TTLPolicy(2 * time.Second)
	if !p.ShouldCache() {
		t.Fatal("TTLPolicy should cache")
	}
	if got := p.EffectiveTTL(0); got != 2*time.Second {
		t.Errorf("EffectiveTTL(0) = %v, want 2s", got)
	}

	long := TTLPolicy(5 * time.Minute)
	if got := long.EffectiveTTL(0); got != 5*time.Minute {
		t.Errorf("EffectiveTTL(0) = %v, MaxTTL should grow to fit the TTL", got)
	}
}
