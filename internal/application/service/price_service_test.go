package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/domain"
	"cryptofolio/internal/infrastructure/cache"
)

func TestGetCachedPrice(t *testing.T) {
	ctx := context.Background()
	priceCache := cache.NewMemory()
	history := &recordingHistory{}
	svc := NewPriceService(priceCache, history)

	_, err := svc.GetCachedPrice(ctx, "BTC")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)

	at := time.Now()
	require.NoError(t, priceCache.Put(ctx, "btcusdt", decimal.NewFromInt(45000), at))

	// the bare ticker resolves to its quote-paired cache key
	entry, err := svc.GetCachedPrice(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, at, entry.LastUpdated)

	entry, err = svc.GetCachedPrice(ctx, "btcusdt")
	require.NoError(t, err)
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(45000)))
}

func TestLatestHistoryPriceUnavailable(t *testing.T) {
	svc := NewPriceService(cache.NewMemory(), &recordingHistory{})

	_, err := svc.LatestHistoryPrice(context.Background(), "BTC")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}
