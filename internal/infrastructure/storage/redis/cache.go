package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// Cache is a redis-backed price cache for deployments where several processes
// share one latest-price view. Entries live in a single hash, field per
// symbol; an optional TTL bounds how long a dead feed's prices linger.
type Cache struct {
	rdb       *redis.Client
	keyLatest string
	ttl       time.Duration
}

type entry struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Ts     int64  `json:"ts"`
}

func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if strings.TrimSpace(prefix) == "" {
		prefix = "cryptofolio"
	}
	return &Cache{
		rdb:       rdb,
		keyLatest: prefix + ":latest",
		ttl:       ttl,
	}
}

func (c *Cache) Put(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error {
	key := strings.ToLower(strings.TrimSpace(symbol))
	b, _ := json.Marshal(entry{Symbol: key, Price: price.String(), Ts: at.UnixMilli()})

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, c.keyLatest, key, string(b))
	if c.ttl > 0 {
		pipe.Expire(ctx, c.keyLatest, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Cache) Get(ctx context.Context, symbol string) (domain.CacheEntry, bool, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	raw, err := c.rdb.HGet(ctx, c.keyLatest, key).Result()
	if err == redis.Nil {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, err
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return domain.CacheEntry{}, false, err
	}
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return domain.CacheEntry{}, false, err
	}
	return domain.CacheEntry{
		Symbol:      key,
		Price:       price,
		LastUpdated: time.UnixMilli(e.Ts),
	}, true, nil
}

var _ port.PriceCache = (*Cache)(nil)
