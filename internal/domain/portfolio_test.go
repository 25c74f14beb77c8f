package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTC", NormalizeSymbol(" btc "))
	assert.Equal(t, "ETHUSDT", NormalizeSymbol("ethusdt"))
}

func TestPairSymbol(t *testing.T) {
	assert.Equal(t, "btcusdt", PairSymbol("BTC"))
	assert.Equal(t, "btcusdt", PairSymbol("btcusdt"))
	assert.Equal(t, "ethusdt", PairSymbol(" eth"))
}

func TestApplyBuyCreatesPosition(t *testing.T) {
	p := &Portfolio{}
	p.ApplyBuy("btc", decimal.NewFromFloat(1.5), decimal.NewFromInt(30000))

	require.Len(t, p.Assets, 1)
	assert.Equal(t, "BTC", p.Assets[0].Symbol)
	assert.True(t, p.Assets[0].Amount.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, p.Assets[0].PurchasePrice.Equal(decimal.NewFromInt(30000)))
}

func TestApplyBuyKeepsCostBasis(t *testing.T) {
	p := &Portfolio{}
	p.ApplyBuy("BTC", decimal.NewFromInt(1), decimal.NewFromInt(30000))
	p.ApplyBuy("BTC", decimal.NewFromInt(1), decimal.NewFromInt(50000))

	require.Len(t, p.Assets, 1)
	assert.True(t, p.Assets[0].Amount.Equal(decimal.NewFromInt(2)))
	// basis is set on the first buy only, never re-averaged
	assert.True(t, p.Assets[0].PurchasePrice.Equal(decimal.NewFromInt(30000)))
}

func TestApplySellInsufficient(t *testing.T) {
	p := &Portfolio{}
	p.ApplyBuy("BTC", decimal.NewFromInt(1), decimal.NewFromInt(30000))

	err := p.ApplySell("BTC", decimal.NewFromInt(2))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	// untouched on rejection
	require.Len(t, p.Assets, 1)
	assert.True(t, p.Assets[0].Amount.Equal(decimal.NewFromInt(1)))

	err = p.ApplySell("ETH", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestApplySellRemovesDrainedPosition(t *testing.T) {
	p := &Portfolio{}
	p.ApplyBuy("BTC", decimal.NewFromFloat(0.5), decimal.NewFromInt(30000))
	p.ApplyBuy("ETH", decimal.NewFromInt(10), decimal.NewFromInt(2000))

	require.NoError(t, p.ApplySell("BTC", decimal.NewFromFloat(0.5)))
	require.Len(t, p.Assets, 1)
	assert.Equal(t, "ETH", p.Assets[0].Symbol)
}

func TestApplySellPartial(t *testing.T) {
	p := &Portfolio{}
	p.ApplyBuy("BTC", decimal.NewFromInt(1), decimal.NewFromInt(30000))

	require.NoError(t, p.ApplySell("btc", decimal.NewFromFloat(0.4)))
	require.Len(t, p.Assets, 1)
	assert.True(t, p.Assets[0].Amount.Equal(decimal.NewFromFloat(0.6)))
	assert.True(t, p.Assets[0].PurchasePrice.Equal(decimal.NewFromInt(30000)))
}
