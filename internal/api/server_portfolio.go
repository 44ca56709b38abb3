package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/stockfolio/internal/portfolio"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
)

type holdingBody struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
}

func toHoldingBody(h types.Holding) holdingBody {
	return holdingBody{
		Symbol:       h.Symbol,
		Name:         h.Name,
		Shares:       h.Shares.InexactFloat64(),
		AvgPrice:     h.AvgPrice.InexactFloat64(),
		CurrentPrice: h.CurrentPrice.InexactFloat64(),
	}
}

type positionBody struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Gain         float64 `json:"gain"`
	GainPercent  float64 `json:"gainPercent"`
	TotalGain    float64 `json:"totalGain"`
}

type ownerInput struct {
	UserID        int64  `path:"user_id" doc:"Portfolio owner id"`
	Authorization string `header:"Authorization" doc:"Bearer token from /api/auth/login"`
}

var bearer = []map[string][]string{{"bearer": {}}}

func registerPortfolioHandlers(api huma.API, svc PortfolioService, users AuthService) {
	type holdingsOutput struct {
		Body []holdingBody
	}
	huma.Register(api, huma.Operation{OperationID: "get-portfolio", Method: http.MethodGet, Path: "/api/portfolio/{user_id}", Summary: "List a user's holdings", Tags: []string{"Portfolio"}, Security: bearer},
		func(ctx context.Context, input *ownerInput) (*holdingsOutput, error) {
			if err := authorizeOwner(ctx, users, input.Authorization, input.UserID); err != nil {
				return nil, mapErr(err)
			}
			holdings, err := svc.GetPortfolio(ctx, input.UserID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &holdingsOutput{Body: make([]holdingBody, 0, len(holdings))}
			for _, h := range holdings {
				out.Body = append(out.Body, toHoldingBody(h))
			}
			return out, nil
		})

	type addInput struct {
		ownerInput
		Body struct {
			Symbol   string  `json:"symbol" required:"true"`
			Name     string  `json:"name" required:"true"`
			Shares   float64 `json:"shares" required:"true"`
			AvgPrice float64 `json:"avgPrice" required:"true"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "add-stock", Method: http.MethodPost, Path: "/api/portfolio/{user_id}/add", Summary: "Buy shares, merging into an existing holding", Tags: []string{"Portfolio"}, Security: bearer, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *addInput) (*messageOutput, error) {
			if err := authorizeOwner(ctx, users, input.Authorization, input.UserID); err != nil {
				return nil, mapErr(err)
			}
			req := portfolio.AddRequest{
				Symbol:   input.Body.Symbol,
				Name:     input.Body.Name,
				Shares:   decimal.NewFromFloat(input.Body.Shares),
				AvgPrice: decimal.NewFromFloat(input.Body.AvgPrice),
			}
			if err := svc.AddStock(ctx, input.UserID, req); err != nil {
				return nil, mapErr(err)
			}
			return message("Stock added successfully"), nil
		})

	type removeInput struct {
		ownerInput
		Body struct {
			Symbol string  `json:"symbol" required:"true"`
			Shares float64 `json:"shares" required:"true"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "remove-stock", Method: http.MethodPost, Path: "/api/portfolio/{user_id}/remove", Summary: "Sell shares; selling all or more closes the holding", Tags: []string{"Portfolio"}, Security: bearer},
		func(ctx context.Context, input *removeInput) (*messageOutput, error) {
			if err := authorizeOwner(ctx, users, input.Authorization, input.UserID); err != nil {
				return nil, mapErr(err)
			}
			req := portfolio.RemoveRequest{
				Symbol: input.Body.Symbol,
				Shares: decimal.NewFromFloat(input.Body.Shares),
			}
			if err := svc.RemoveStock(ctx, input.UserID, req); err != nil {
				return nil, mapErr(err)
			}
			return message("Stock removed successfully"), nil
		})

	type summaryOutput struct {
		Body struct {
			Positions        []positionBody `json:"positions"`
			TotalValue       float64        `json:"totalValue"`
			TotalInvestment  float64        `json:"totalInvestment"`
			TotalGain        float64        `json:"totalGain"`
			TotalGainPercent float64        `json:"totalGainPercent"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-portfolio-summary", Method: http.MethodGet, Path: "/api/portfolio/{user_id}/summary", Summary: "Portfolio value and unrealised gain", Tags: []string{"Portfolio"}, Security: bearer},
		func(ctx context.Context, input *ownerInput) (*summaryOutput, error) {
			if err := authorizeOwner(ctx, users, input.Authorization, input.UserID); err != nil {
				return nil, mapErr(err)
			}
			sum, err := svc.GetSummary(ctx, input.UserID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &summaryOutput{}
			out.Body.Positions = make([]positionBody, 0, len(sum.Positions))
			for _, p := range sum.Positions {
				h := toHoldingBody(p.Holding)
				out.Body.Positions = append(out.Body.Positions, positionBody{
					Symbol:       h.Symbol,
					Name:         h.Name,
					Shares:       h.Shares,
					AvgPrice:     h.AvgPrice,
					CurrentPrice: h.CurrentPrice,
					Gain:         round2(p.Gain),
					GainPercent:  round2(p.GainPercent),
					TotalGain:    round2(p.TotalGain),
				})
			}
			out.Body.TotalValue = round2(sum.TotalValue)
			out.Body.TotalInvestment = round2(sum.TotalInvestment)
			out.Body.TotalGain = round2(sum.TotalGain)
			out.Body.TotalGainPercent = round2(sum.TotalGainPercent)
			return out, nil
		})
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
