package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	"github.com/MrGreenNV/bank-rest-test/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ViewCache is a read-through cache of account records in front of the store.
// A circuit breaker guards every redis call so a cache outage degrades reads
// to the database instead of failing them.
type ViewCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// ViewCacheSettings tunes the cache breaker.
type ViewCacheSettings struct {
	TTL              time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

func NewViewCache(client *redis.Client, settings ViewCacheSettings, metrics *observability.Metrics, logger zerolog.Logger) *ViewCache {
	threshold := settings.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "account-view-cache",
		Timeout: settings.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("view cache breaker state change")
		},
	})

	return &ViewCache{
		client:  client,
		ttl:     settings.TTL,
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

func idKey(id uuid.UUID) string  { return fmt.Sprintf("account:id:%s", id) }
func nameKey(name string) string { return fmt.Sprintf("account:name:%s", name) }

// GetByID returns a cached account by id, or (nil, false) on miss or cache failure.
func (c *ViewCache) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, bool) {
	return c.get(ctx, idKey(id))
}

// GetByName returns a cached account by name, or (nil, false) on miss or cache failure.
func (c *ViewCache) GetByName(ctx context.Context, name string) (*account.Account, bool) {
	return c.get(ctx, nameKey(name))
}

func (c *ViewCache) get(ctx context.Context, key string) (*account.Account, bool) {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// A miss is not a cache failure; keep the breaker closed.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("view cache read skipped")
		return nil, false
	}
	if len(payload) == 0 {
		c.miss()
		return nil, false
	}

	var a account.Account
	if err := json.Unmarshal(payload, &a); err != nil {
		c.miss()
		return nil, false
	}
	c.hit()
	return &a, true
}

// Set stores the account under both its id and name keys.
func (c *ViewCache) Set(ctx context.Context, a *account.Account) {
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		pipe := c.client.Pipeline()
		pipe.Set(ctx, idKey(a.ID), payload, c.ttl)
		pipe.Set(ctx, nameKey(a.Name), payload, c.ttl)
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		c.logger.Debug().Err(err).Stringer("account_id", a.ID).Msg("view cache write skipped")
	}
}

// Invalidate drops the id key and every given name key. Renames pass both the
// old and the new name.
func (c *ViewCache) Invalidate(ctx context.Context, id uuid.UUID, names ...string) {
	keys := []string{idKey(id)}
	for _, name := range names {
		keys = append(keys, nameKey(name))
	}

	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		c.logger.Debug().Err(err).Stringer("account_id", id).Msg("view cache invalidation skipped")
	}
}

func (c *ViewCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *ViewCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
