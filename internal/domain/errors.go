package domain

import "errors"

var (
	// ErrInsufficientBalance rejects a SELL that exceeds the held amount.
	ErrInsufficientBalance = errors.New("not enough balance to sell")

	// ErrPortfolioNotFound means the target portfolio does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound means the requested transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlertNotFound means the requested price alert does not exist.
	ErrAlertNotFound = errors.New("price alert not found")

	// ErrPriceUnavailable means no price is known for the symbol. It is a
	// defined absent result, not a failure.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrInvalidTransaction rejects a request with a non-positive amount or
	// unit price, or an unknown transaction type.
	ErrInvalidTransaction = errors.New("invalid transaction")
)
