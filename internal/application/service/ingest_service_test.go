package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
	"cryptofolio/internal/infrastructure/cache"
)

type stubFeed struct {
	ticks chan port.Tick
}

func (f *stubFeed) Subscribe(context.Context, []string) (<-chan port.Tick, error) {
	return f.ticks, nil
}

// recordingHistory counts appends and can fail the first n of them.
type recordingHistory struct {
	mu        sync.Mutex
	points    []domain.PricePoint
	failFirst int
}

func (h *recordingHistory) Append(ctx context.Context, p domain.PricePoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failFirst > 0 {
		h.failFirst--
		return errors.New("disk full")
	}
	h.points = append(h.points, p)
	return nil
}

func (h *recordingHistory) Latest(context.Context, string) (domain.PricePoint, error) {
	return domain.PricePoint{}, domain.ErrPriceUnavailable
}

func (h *recordingHistory) Range(context.Context, string, time.Time, time.Time) ([]domain.PricePoint, error) {
	return nil, nil
}

func TestIngestUpdatesCacheAndHistory(t *testing.T) {
	feed := &stubFeed{ticks: make(chan port.Tick, 8)}
	priceCache := cache.NewMemory()
	history := &recordingHistory{}
	svc := NewIngestService(feed, priceCache, history, []string{"btcusdt"}, 8)

	now := time.Now()
	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45000), At: now}
	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45100), At: now.Add(time.Second)}
	feed.ticks <- port.Tick{Symbol: "ethusdt", Price: decimal.NewFromInt(2500), At: now}
	close(feed.ticks)

	require.NoError(t, svc.Run(context.Background()))

	entry, ok, err := priceCache.Get(context.Background(), "btcusdt")
	require.NoError(t, err)
	require.True(t, ok)
	// last write wins
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(45100)))
	assert.Equal(t, now.Add(time.Second), entry.LastUpdated)

	// Run drains the queue before returning
	assert.Len(t, history.points, 3)
}

func TestIngestDrainsQueueAfterCancel(t *testing.T) {
	feed := &stubFeed{ticks: make(chan port.Tick, 4)}
	priceCache := cache.NewMemory()
	history := &recordingHistory{}
	svc := NewIngestService(feed, priceCache, history, []string{"btcusdt"}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45000), At: time.Now()}
	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45100), At: time.Now()}
	close(feed.ticks)

	err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// the queued writes still reach storage despite the cancelled context
	assert.Len(t, history.points, 2)
}

func TestIngestSwallowsHistoryFailures(t *testing.T) {
	feed := &stubFeed{ticks: make(chan port.Tick, 4)}
	priceCache := cache.NewMemory()
	history := &recordingHistory{failFirst: 1}
	svc := NewIngestService(feed, priceCache, history, []string{"btcusdt"}, 4)

	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45000), At: time.Now()}
	feed.ticks <- port.Tick{Symbol: "btcusdt", Price: decimal.NewFromInt(45200), At: time.Now()}
	close(feed.ticks)

	require.NoError(t, svc.Run(context.Background()))

	// the failed write is gone, the cache still has the freshest tick
	assert.Len(t, history.points, 1)
	entry, ok, _ := priceCache.Get(context.Background(), "btcusdt")
	require.True(t, ok)
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(45200)))
}
