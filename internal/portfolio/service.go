// Package portfolio implements the ledger operations: reading a user's
// holdings, merging buys into a weighted-average cost basis and closing or
// trimming positions.
package portfolio

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
)

// QuoteSource is the read-only market lookup used to price new holdings.
type QuoteSource interface {
	Quote(symbol string) (types.Quote, bool)
	List() []types.Quote
}

// AddRequest is one buy of a symbol.
type AddRequest struct {
	Symbol   string
	Name     string
	Shares   decimal.Decimal
	AvgPrice decimal.Decimal
}

// RemoveRequest sells shares of a symbol. Shares at or above the held amount close the position.
type RemoveRequest struct {
	Symbol string
	Shares decimal.Decimal
}

// Activity is one committed ledger change.
type Activity struct {
	Time   time.Time `json:"time"`
	UserID int64     `json:"user_id"`
	Action string    `json:"action"`
	Symbol string    `json:"symbol"`
	Shares string    `json:"shares"`
	Price  string    `json:"price,omitempty"`
	Merged bool      `json:"merged,omitempty"`
	Closed bool      `json:"closed,omitempty"`
}

// Journal receives committed activity. storage.Journal satisfies it.
type Journal interface {
	Write(record any) error
}

// Service is the portfolio ledger service.
type Service struct {
	store   ledger.Store
	quotes  QuoteSource
	journal Journal
}

func NewService(store ledger.Store, quotes QuoteSource) *Service {
	return &Service{store: store, quotes: quotes}
}

// WithJournal records every committed add and remove to j.
func (s *Service) WithJournal(j Journal) *Service {
	s.journal = j
	return s
}

func (s *Service) record(a Activity) {
	if s.journal == nil {
		return
	}
	a.Time = time.Now().UTC()
	if err := s.journal.Write(a); err != nil {
		slog.Warn("activity not journaled", "user_id", a.UserID, "action", a.Action, "error", err)
	}
}

// GetPortfolio returns the user's holdings. A user without a ledger gets an
// empty slice, not PORTFOLIO_NOT_FOUND; only mutations distinguish the two.
func (s *Service) GetPortfolio(ctx context.Context, userID int64) ([]types.Holding, error) {
	return s.store.Holdings(ctx, userID)
}

// AddStock merges a buy into the user's ledger.
func (s *Service) AddStock(ctx context.Context, userID int64, req AddRequest) error {
	req.Symbol = normalizeSymbol(req.Symbol)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateAdd(req); err != nil {
		return err
	}

	merged := false
	err := s.store.Mutate(ctx, userID, func(l *ledger.Ledger) error {
		if existing, ok := l.Get(req.Symbol); ok {
			merged = true
			return l.Update(mergeBuy(existing, req))
		}

		current := req.AvgPrice
		if q, ok := s.quotes.Quote(req.Symbol); ok {
			current = q.Price
		}
		return l.Insert(types.Holding{
			Symbol:       req.Symbol,
			Name:         req.Name,
			Shares:       req.Shares,
			AvgPrice:     req.AvgPrice,
			CurrentPrice: current,
		})
	})
	if err != nil {
		return err
	}

	slog.Info("portfolio stock added",
		"user_id", userID,
		"symbol", req.Symbol,
		"shares", req.Shares.String(),
		"avg_price", req.AvgPrice.String(),
		"merged", merged,
	)
	s.record(Activity{
		UserID: userID,
		Action: "add",
		Symbol: req.Symbol,
		Shares: req.Shares.String(),
		Price:  req.AvgPrice.String(),
		Merged: merged,
	})
	return nil
}

// mergeBuy folds a buy into an existing holding. Only shares and the
// weighted-average price change; name and current price are kept.
func mergeBuy(existing types.Holding, req AddRequest) types.Holding {
	total := existing.Shares.Add(req.Shares)
	cost := existing.Shares.Mul(existing.AvgPrice).Add(req.Shares.Mul(req.AvgPrice))
	existing.Shares = total
	existing.AvgPrice = cost.Div(total)
	return existing
}

// RemoveStock sells shares from a holding, deleting it when nothing would remain.
func (s *Service) RemoveStock(ctx context.Context, userID int64, req RemoveRequest) error {
	req.Symbol = normalizeSymbol(req.Symbol)
	if err := validateRemove(req); err != nil {
		return err
	}

	closed := false
	err := s.store.Mutate(ctx, userID, func(l *ledger.Ledger) error {
		h, ok := l.Get(req.Symbol)
		if !ok {
			return types.Errorf(types.CodeHoldingNotFound, "stock %s not found in portfolio", req.Symbol)
		}
		if req.Shares.GreaterThanOrEqual(h.Shares) {
			closed = true
			return l.Delete(req.Symbol)
		}
		h.Shares = h.Shares.Sub(req.Shares)
		return l.Update(h)
	})
	if err != nil {
		return err
	}

	slog.Info("portfolio stock removed",
		"user_id", userID,
		"symbol", req.Symbol,
		"shares", req.Shares.String(),
		"closed", closed,
	)
	s.record(Activity{
		UserID: userID,
		Action: "remove",
		Symbol: req.Symbol,
		Shares: req.Shares.String(),
		Closed: closed,
	})
	return nil
}

// ListQuotes returns the full market snapshot.
func (s *Service) ListQuotes(_ context.Context) ([]types.Quote, error) {
	return s.quotes.List(), nil
}

// GetQuote returns one quote or QUOTE_NOT_FOUND.
func (s *Service) GetQuote(_ context.Context, symbol string) (types.Quote, error) {
	symbol = normalizeSymbol(symbol)
	q, ok := s.quotes.Quote(symbol)
	if !ok {
		return types.Quote{}, types.Errorf(types.CodeQuoteNotFound, "no quote for %s", symbol)
	}
	return q, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validateAdd(req AddRequest) error {
	switch {
	case req.Symbol == "":
		return types.Errorf(types.CodeValidation, "symbol is required")
	case req.Name == "":
		return types.Errorf(types.CodeValidation, "name is required")
	case !req.Shares.IsPositive():
		return types.Errorf(types.CodeValidation, "shares must be a positive number")
	case !req.AvgPrice.IsPositive():
		return types.Errorf(types.CodeValidation, "average price must be a positive number")
	}
	return nil
}

func validateRemove(req RemoveRequest) error {
	switch {
	case req.Symbol == "":
		return types.Errorf(types.CodeValidation, "symbol is required")
	case !req.Shares.IsPositive():
		return types.Errorf(types.CodeValidation, "shares must be a positive number")
	}
	return nil
}
