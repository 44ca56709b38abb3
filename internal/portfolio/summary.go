package portfolio

import (
	"context"

	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position is a holding with its unrealised gain.
type Position struct {
	types.Holding
	Gain        decimal.Decimal // per share
	GainPercent decimal.Decimal
	TotalGain   decimal.Decimal
}

// Summary aggregates a user's holdings at their last known prices.
type Summary struct {
	Positions        []Position
	TotalValue       decimal.Decimal
	TotalInvestment  decimal.Decimal
	TotalGain        decimal.Decimal
	TotalGainPercent decimal.Decimal
}

// Summarize computes gains over holdings.
func Summarize(holdings []types.Holding) Summary {
	sum := Summary{Positions: make([]Position, 0, len(holdings))}
	for _, h := range holdings {
		gain := h.CurrentPrice.Sub(h.AvgPrice)
		p := Position{Holding: h, Gain: gain, TotalGain: gain.Mul(h.Shares)}
		if h.AvgPrice.IsPositive() {
			p.GainPercent = gain.Div(h.AvgPrice).Mul(hundred)
		}
		sum.Positions = append(sum.Positions, p)
		sum.TotalValue = sum.TotalValue.Add(h.MarketValue())
		sum.TotalInvestment = sum.TotalInvestment.Add(h.CostBasis())
	}
	sum.TotalGain = sum.TotalValue.Sub(sum.TotalInvestment)
	if sum.TotalInvestment.IsPositive() {
		sum.TotalGainPercent = sum.TotalGain.Div(sum.TotalInvestment).Mul(hundred)
	}
	return sum
}

// GetSummary summarises the user's portfolio.
func (s *Service) GetSummary(ctx context.Context, userID int64) (Summary, error) {
	holdings, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(holdings), nil
}
