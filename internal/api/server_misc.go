package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/stockfolio/internal/relay"
)

func registerMiscHandlers(api huma.API, svc PortfolioService, broker *relay.Broker) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type deepHealthOutput struct {
		Body struct {
			Status        string `json:"status"`
			Quotes        int    `json:"quotes"`
			StreamClients int    `json:"streamClients"`
			DroppedEvents int64  `json:"droppedEvents"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "deep-health", Method: http.MethodGet, Path: "/api/health/deep", Summary: "Deep health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*deepHealthOutput, error) {
			quotes, err := svc.ListQuotes(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &deepHealthOutput{}
			out.Body.Status = "ok"
			out.Body.Quotes = len(quotes)
			if broker != nil {
				out.Body.StreamClients = broker.ClientCount()
				out.Body.DroppedEvents = broker.Dropped()
			}
			return out, nil
		})
}
