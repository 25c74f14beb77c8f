package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// Memory is the process-local price cache: one entry per symbol, last write
// wins. It is handed to components at construction time, never reached as a
// package global.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]domain.CacheEntry)}
}

func (m *Memory) Put(_ context.Context, symbol string, price decimal.Decimal, at time.Time) error {
	key := strings.ToLower(strings.TrimSpace(symbol))
	m.mu.Lock()
	m.entries[key] = domain.CacheEntry{Symbol: key, Price: price, LastUpdated: at}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, symbol string) (domain.CacheEntry, bool, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	return e, ok, nil
}

var _ port.PriceCache = (*Memory)(nil)
