// Package api exposes the portfolio, auth and market services over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/stockfolio/internal/auth"
	"github.com/dgnsrekt/stockfolio/internal/portfolio"
	"github.com/dgnsrekt/stockfolio/internal/relay"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID int64) ([]types.Holding, error)
	AddStock(ctx context.Context, userID int64, req portfolio.AddRequest) error
	RemoveStock(ctx context.Context, userID int64, req portfolio.RemoveRequest) error
	GetSummary(ctx context.Context, userID int64) (portfolio.Summary, error)
	ListQuotes(ctx context.Context) ([]types.Quote, error)
	GetQuote(ctx context.Context, symbol string) (types.Quote, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (types.User, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Authenticate(ctx context.Context, token string) (types.User, error)
}

// Options tunes the router. A nil Broker disables the stream endpoints.
type Options struct {
	Broker      *relay.Broker
	MockLatency time.Duration
	CORSOrigins []string
}

func NewServer(svc PortfolioService, users AuthService, opts Options) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.MockLatency > 0 {
		router.Use(mockLatency(opts.MockLatency))
	}

	cfg := huma.DefaultConfig("Stockfolio API", "1.0.0")
	cfg.DocsPath = ""
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/streams", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(streamDocsHTML)); err != nil {
			slog.Debug("stream docs response write failed", "error", err)
		}
	})

	if opts.Broker != nil {
		router.Get("/api/market/stream", relay.SSEHandler(opts.Broker))
		router.Get("/api/market/ws", relay.WSHandler(opts.Broker))
	}

	registerAuthHandlers(api, users)
	registerPortfolioHandlers(api, svc, users)
	registerMarketHandlers(api, svc)
	registerMiscHandlers(api, svc, opts.Broker)

	return router
}

type messageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func message(format string, args ...any) *messageOutput {
	out := &messageOutput{}
	out.Body.Message = fmt.Sprintf(format, args...)
	return out
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeUnauthorized, types.CodeInvalidCredentials:
			return huma.Error401Unauthorized(coded.Message)
		case types.CodeForbidden:
			return huma.Error403Forbidden(coded.Message)
		case types.CodePortfolioNotFound, types.CodeHoldingNotFound, types.CodeQuoteNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeUserExists:
			return huma.Error409Conflict(coded.Message)
		case types.CodeUpstreamFailure:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return huma.Error503ServiceUnavailable("request cancelled")
	}
	slog.Error("unmapped service error", "error", err)
	return huma.Error500InternalServerError("internal error")
}
