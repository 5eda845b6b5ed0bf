package freq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/searchfoundry/tokenmatch/pkg/config"
	"github.com/searchfoundry/tokenmatch/pkg/postgres"
	"github.com/searchfoundry/tokenmatch/pkg/resilience"
)

const docFreqQuery = `SELECT doc_freq FROM term_stats WHERE term = $1`

// PostgresProvider reads document frequencies from a term_stats table.
// Transient query failures are retried with backoff before the lookup is
// reported as failed.
type PostgresProvider struct {
	client *postgres.Client
	cfg    config.PostgresConfig
	retry  resilience.RetryConfig
}

var _ Provider = (*PostgresProvider)(nil)

// NewPostgresProvider opens the connection pool and verifies connectivity.
func NewPostgresProvider(cfg config.PostgresConfig) (*PostgresProvider, error) {
	client, err := postgres.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting postgres frequency provider: %w", err)
	}
	return &PostgresProvider{
		client: client,
		cfg:    cfg,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 20 * time.Millisecond,
		},
	}, nil
}

func (p *PostgresProvider) Name() string { return "postgres" }

// Lookup fetches the frequency row for term. A missing row is an unknown
// term, not an error.
func (p *PostgresProvider) Lookup(ctx context.Context, term string) (uint64, error) {
	var df uint64
	err := resilience.Retry(ctx, "postgres doc-freq", p.retry, func() error {
		return resilience.WithTimeout(ctx, p.cfg.LookupTimeout, "postgres doc-freq",
			func(ctx context.Context) error {
				row := p.client.DB.QueryRowContext(ctx, docFreqQuery, term)
				if err := row.Scan(&df); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						df = 0
						return nil
					}
					return err
				}
				return nil
			})
	})
	if err != nil {
		return 0, fmt.Errorf("postgres doc-freq lookup for %q: %w", term, err)
	}
	return df, nil
}

func (p *PostgresProvider) Close() error {
	return p.client.Close()
}
