package market

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

// Fetcher retrieves a live quote for one symbol.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (types.Quote, error)
	Name() string
}

// MockFetcher returns fixed quotes for development and testing.
type MockFetcher struct {
	Quotes map[string]types.Quote
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (types.Quote, error) {
	q, ok := m.Quotes[symbol]
	if !ok {
		return types.Quote{}, fmt.Errorf("mock: no quote for %s", symbol)
	}
	return q, nil
}
