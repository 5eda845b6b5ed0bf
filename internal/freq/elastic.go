package freq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/searchfoundry/tokenmatch/pkg/config"
	"github.com/searchfoundry/tokenmatch/pkg/resilience"
)

// ElasticProvider derives document frequencies from a live Elasticsearch
// index: the frequency of a term is the count of documents whose configured
// field contains it. This trades lookup latency for statistics that are
// always as fresh as the index itself.
type ElasticProvider struct {
	client *elasticsearch.Client
	index  string
	field  string
	cfg    config.ElasticConfig
}

var _ Provider = (*ElasticProvider)(nil)

type countResponse struct {
	Count int64 `json:"count"`
}

// NewElasticProvider creates the client and verifies the cluster responds.
func NewElasticProvider(cfg config.ElasticConfig) (*ElasticProvider, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connecting elasticsearch frequency provider: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch connection error: %s", res.String())
	}

	return &ElasticProvider{
		client: client,
		index:  cfg.Index,
		field:  cfg.Field,
		cfg:    cfg,
	}, nil
}

func (p *ElasticProvider) Name() string { return "elastic" }

// Lookup counts the documents whose field contains the term.
func (p *ElasticProvider) Lookup(ctx context.Context, term string) (uint64, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				p.field: term,
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return 0, fmt.Errorf("encoding count query: %w", err)
	}

	var count uint64
	err := resilience.WithTimeout(ctx, p.cfg.LookupTimeout, "elastic doc-freq",
		func(ctx context.Context) error {
			req := esapi.CountRequest{
				Index: []string{p.index},
				Body:  &buf,
			}
			res, err := req.Do(ctx, p.client)
			if err != nil {
				return fmt.Errorf("executing count: %w", err)
			}
			defer func() { _ = res.Body.Close() }()

			if res.IsError() {
				return fmt.Errorf("count failed: %s", res.String())
			}
			var parsed countResponse
			if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
				return fmt.Errorf("decoding count response: %w", err)
			}
			if parsed.Count > 0 {
				count = uint64(parsed.Count)
			}
			return nil
		})
	if err != nil {
		return 0, fmt.Errorf("elastic doc-freq lookup for %q: %w", term, err)
	}
	return count, nil
}

// Close implements Provider. The underlying HTTP transport needs no
// explicit shutdown.
func (p *ElasticProvider) Close() error { return nil }
