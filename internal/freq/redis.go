package freq

import (
	"context"
	"fmt"

	"github.com/searchfoundry/tokenmatch/pkg/config"
	"github.com/searchfoundry/tokenmatch/pkg/redis"
	"github.com/searchfoundry/tokenmatch/pkg/resilience"
)

// RedisProvider reads document frequencies from Redis, one key per term
// under the configured prefix. Lookups run behind a circuit breaker so a
// down Redis degrades to unknown terms instead of stalling every scoring
// pass on connection timeouts.
type RedisProvider struct {
	client  *redis.Client
	breaker *resilience.Breaker
	prefix  string
	cfg     config.RedisConfig
}

var _ Provider = (*RedisProvider)(nil)

// NewRedisProvider connects to Redis and verifies the connection.
func NewRedisProvider(cfg config.RedisConfig) (*RedisProvider, error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting redis frequency provider: %w", err)
	}
	return &RedisProvider{
		client:  client,
		breaker: resilience.NewBreaker("redis-freq", resilience.BreakerConfig{}),
		prefix:  cfg.KeyPrefix,
		cfg:     cfg,
	}, nil
}

func (p *RedisProvider) Name() string { return "redis" }

// Lookup fetches the frequency stored at <prefix><term>. A missing key is
// an unknown term, not an error.
func (p *RedisProvider) Lookup(ctx context.Context, term string) (uint64, error) {
	var df uint64
	err := p.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, p.cfg.LookupTimeout, "redis doc-freq",
			func(ctx context.Context) error {
				v, err := p.client.GetUint64(ctx, p.prefix+term)
				if err != nil {
					if redis.IsNilError(err) {
						return nil
					}
					return err
				}
				df = v
				return nil
			})
	})
	if err != nil {
		return 0, fmt.Errorf("redis doc-freq lookup for %q: %w", term, err)
	}
	return df, nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}
