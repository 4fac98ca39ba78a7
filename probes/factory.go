package probes

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jonwraymond/healthd/health"
)

// Factory builds a probe from resolved parameters. It must not perform I/O
// beyond what is needed to validate its input; the first Check does the rest.
type Factory func(ctx context.Context, params Params) (health.Probe, error)

var factories = map[string]Factory{
	KindHTTP:       factory(newHTTPFromParams),
	KindTCP:        factory(newTCPFromParams),
	KindPostgres:   factory(newPostgresFromParams),
	KindRedis:      factory(newRedisFromParams),
	KindKafka:      factory(newKafkaFromParams),
	KindOpenSearch: factory(newOpenSearchFromParams),
	KindMemory:     factory(newMemoryFromParams),
	KindStatic:     factory(newStaticFromParams),
}

// factory adapts a constructor returning a concrete probe. A failed
// constructor must yield a nil interface, not a typed nil.
func factory[P health.Probe](build func(context.Context, Params) (P, error)) Factory {
	return func(ctx context.Context, params Params) (health.Probe, error) {
		p, err := build(ctx, params)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Kinds returns the supported probe kinds, sorted.
func Kinds() []string {
	return slices.Sorted(maps.Keys(factories))
}

// Build creates the probe of the given kind.
func Build(ctx context.Context, kind string, params map[string]string) (health.Probe, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	factory, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProbe, kind)
	}

	probe, err := factory(ctx, Params(params))
	if err != nil {
		return nil, fmt.Errorf("%s probe: %w", kind, err)
	}
	return probe, nil
}
