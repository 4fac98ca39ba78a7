package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go"
)

// KindOpenSearch is the kind of OpenSearchProbe.
const KindOpenSearch = "opensearch"

var clusterStatusRank = map[string]int{"red": 0, "yellow": 1, "green": 2}

// OpenSearchProbe fails when cluster health is below a minimum status.
type OpenSearchProbe struct {
	client    *opensearch.Client
	minStatus string
}

// NewOpenSearchProbe creates a probe. minStatus is green, yellow or red;
// empty means yellow.
func NewOpenSearchProbe(client *opensearch.Client, minStatus string) (*OpenSearchProbe, error) {
	if minStatus == "" {
		minStatus = "yellow"
	}
	if _, ok := clusterStatusRank[minStatus]; !ok {
		return nil, fmt.Errorf("%w: min_status=%q", ErrInvalidParam, minStatus)
	}
	return &OpenSearchProbe{client: client, minStatus: minStatus}, nil
}

func newOpenSearchFromParams(_ context.Context, params Params) (*OpenSearchProbe, error) {
	addresses := params.List("addresses")
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: addresses", ErrMissingParam)
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
		Username:  params.String("username", ""),
		Password:  params.String("password", ""),
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 2,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}
	return NewOpenSearchProbe(client, params.String("min_status", ""))
}

// Kind implements observe.Kinded.
func (p *OpenSearchProbe) Kind() string { return KindOpenSearch }

// Check implements health.Probe.
func (p *OpenSearchProbe) Check(ctx context.Context) error {
	res, err := p.client.Cluster.Health(p.client.Cluster.Health.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("cluster health: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("cluster health: HTTP %d", res.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode cluster health: %w", err)
	}

	rank, ok := clusterStatusRank[body.Status]
	if !ok {
		return fmt.Errorf("unknown cluster status %q", body.Status)
	}
	if rank < clusterStatusRank[p.minStatus] {
		return fmt.Errorf("cluster status %s", body.Status)
	}
	return nil
}
