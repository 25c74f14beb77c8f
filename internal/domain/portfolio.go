package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const quoteSuffix = "USDT"

// NormalizeSymbol canonicalizes a ledger symbol: trimmed, upper-case,
// e.g. "btc " -> "BTC". Positions are matched by this form only.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// PairSymbol maps a ledger symbol to the quote-paired, lower-case form the
// price history is keyed by: "BTC" -> "btcusdt", "BTCUSDT" -> "btcusdt".
func PairSymbol(s string) string {
	up := NormalizeSymbol(s)
	if !strings.HasSuffix(up, quoteSuffix) {
		up += quoteSuffix
	}
	return strings.ToLower(up)
}

func (p *Portfolio) findAsset(symbol string) int {
	for i := range p.Assets {
		if p.Assets[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// Position returns the asset position for symbol, if held.
func (p *Portfolio) Position(symbol string) (AssetPosition, bool) {
	if i := p.findAsset(NormalizeSymbol(symbol)); i >= 0 {
		return p.Assets[i], true
	}
	return AssetPosition{}, false
}

// ApplyBuy adds amount to the symbol's position, creating it with unitPrice
// as cost basis when absent. The cost basis of an existing position is kept,
// not re-averaged.
func (p *Portfolio) ApplyBuy(symbol string, amount, unitPrice decimal.Decimal) {
	sym := NormalizeSymbol(symbol)
	if i := p.findAsset(sym); i >= 0 {
		p.Assets[i].Amount = p.Assets[i].Amount.Add(amount)
		return
	}
	p.Assets = append(p.Assets, AssetPosition{
		Symbol:        sym,
		Amount:        amount,
		PurchasePrice: unitPrice,
	})
}

// ApplySell subtracts amount from the symbol's position. A missing position
// or one holding less than amount returns ErrInsufficientBalance and leaves
// the portfolio untouched. A position drained to exactly zero is removed.
func (p *Portfolio) ApplySell(symbol string, amount decimal.Decimal) error {
	sym := NormalizeSymbol(symbol)
	i := p.findAsset(sym)
	if i < 0 || p.Assets[i].Amount.LessThan(amount) {
		return ErrInsufficientBalance
	}
	p.Assets[i].Amount = p.Assets[i].Amount.Sub(amount)
	if p.Assets[i].Amount.IsZero() {
		p.Assets = append(p.Assets[:i], p.Assets[i+1:]...)
	}
	return nil
}
