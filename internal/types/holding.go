package types

import "github.com/shopspring/decimal"

// Holding is one symbol's position within a user's ledger.
// Shares is always positive; a position driven to zero is removed, not kept.
type Holding struct {
	Symbol       string
	Name         string
	Shares       decimal.Decimal
	AvgPrice     decimal.Decimal
	CurrentPrice decimal.Decimal
}

// CostBasis returns shares * average price.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Shares.Mul(h.AvgPrice)
}

// MarketValue returns shares * last known price.
func (h Holding) MarketValue() decimal.Decimal {
	return h.Shares.Mul(h.CurrentPrice)
}
