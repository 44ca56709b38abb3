// Package relay streams quote updates to SSE and WebSocket clients.
package relay

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

// KindQuote is the event kind for a quote update.
const KindQuote = "quote"

type quoteMessage struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// QuoteEvent encodes a quote as a broker event.
func QuoteEvent(q types.Quote) (Event, error) {
	payload, err := json.Marshal(quoteMessage{
		Symbol: q.Symbol,
		Name:   q.Name,
		Price:  q.Price.InexactFloat64(),
		Change: q.Change.InexactFloat64(),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: KindQuote, Symbol: q.Symbol, Payload: payload}, nil
}

// PublishQuotes returns a quote update handler that forwards to broker.
// It matches market.Book.OnUpdate.
func PublishQuotes(broker *Broker) func(types.Quote) {
	return func(q types.Quote) {
		evt, err := QuoteEvent(q)
		if err != nil {
			slog.Warn("relay: encode quote failed", "symbol", q.Symbol, "error", err)
			return
		}
		broker.Publish(evt)
	}
}

// symbolFilter is a set of upper-cased symbols; nil accepts everything.
type symbolFilter map[string]bool

func parseSymbols(list []string) symbolFilter {
	var f symbolFilter
	for _, s := range list {
		for _, part := range strings.Split(s, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				if f == nil {
					f = make(symbolFilter)
				}
				f[part] = true
			}
		}
	}
	return f
}

func (f symbolFilter) accepts(symbol string) bool {
	return f == nil || f[symbol]
}
