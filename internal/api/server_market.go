package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/stockfolio/internal/types"
)

type quoteBody struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change" doc:"Daily change in percent"`
}

func toQuoteBody(q types.Quote) quoteBody {
	return quoteBody{
		Symbol: q.Symbol,
		Name:   q.Name,
		Price:  q.Price.InexactFloat64(),
		Change: q.Change.InexactFloat64(),
	}
}

func registerMarketHandlers(api huma.API, svc PortfolioService) {
	type quotesOutput struct {
		Body []quoteBody
	}
	huma.Register(api, huma.Operation{OperationID: "list-quotes", Method: http.MethodGet, Path: "/api/market/data", Summary: "List market quotes", Tags: []string{"Market"}},
		func(ctx context.Context, input *struct{}) (*quotesOutput, error) {
			quotes, err := svc.ListQuotes(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &quotesOutput{Body: make([]quoteBody, 0, len(quotes))}
			for _, q := range quotes {
				out.Body = append(out.Body, toQuoteBody(q))
			}
			return out, nil
		})

	type quoteInput struct {
		Symbol string `path:"symbol"`
	}
	type quoteOutput struct {
		Body quoteBody
	}
	huma.Register(api, huma.Operation{OperationID: "get-quote", Method: http.MethodGet, Path: "/api/market/quote/{symbol}", Summary: "Get one quote", Tags: []string{"Market"}},
		func(ctx context.Context, input *quoteInput) (*quoteOutput, error) {
			q, err := svc.GetQuote(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			return &quoteOutput{Body: toQuoteBody(q)}, nil
		})
}
