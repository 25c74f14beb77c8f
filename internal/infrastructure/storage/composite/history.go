package composite

import (
	"context"
	"time"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// History fans out appends to several price history backends. Reads go to the
// first (primary) backend; writes hit all of them and report the first error.
type History struct {
	backends []port.PriceHistory
}

func NewHistory(backends ...port.PriceHistory) *History {
	// nil backends are allowed; filter in constructor
	out := make([]port.PriceHistory, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			out = append(out, b)
		}
	}
	return &History{backends: out}
}

func (h *History) Append(ctx context.Context, p domain.PricePoint) error {
	var firstErr error
	for _, b := range h.backends {
		if err := b.Append(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *History) Latest(ctx context.Context, symbol string) (domain.PricePoint, error) {
	if len(h.backends) == 0 {
		return domain.PricePoint{}, domain.ErrPriceUnavailable
	}
	return h.backends[0].Latest(ctx, symbol)
}

func (h *History) Range(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	if len(h.backends) == 0 {
		return nil, nil
	}
	return h.backends[0].Range(ctx, symbol, from, to)
}

var _ port.PriceHistory = (*History)(nil)
