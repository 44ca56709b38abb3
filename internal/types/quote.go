package types

import "github.com/shopspring/decimal"

// Quote is the latest market data for one symbol. Change is a signed daily percentage.
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
	Change decimal.Decimal
}
