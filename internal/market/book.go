// Package market is the read-only quote source the portfolio prices new holdings from.
package market

import (
	"sync"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

// Book is the in-memory market snapshot. Listing order is the order symbols were
// first seen and stays stable for the life of the process.
type Book struct {
	mu       sync.RWMutex
	quotes   []types.Quote
	index    map[string]int
	handlers []func(types.Quote)
}

// NewBook creates a Book seeded with quotes. Later duplicates of a symbol overwrite earlier ones.
func NewBook(quotes []types.Quote) *Book {
	b := &Book{index: make(map[string]int)}
	for _, q := range quotes {
		b.put(q)
	}
	return b
}

// Quote returns the quote for symbol; ok is false when the symbol is unknown.
func (b *Book) Quote(symbol string) (types.Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[symbol]
	if !ok {
		return types.Quote{}, false
	}
	return b.quotes[i], true
}

// List returns the full snapshot.
func (b *Book) List() []types.Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Quote, len(b.quotes))
	copy(out, b.quotes)
	return out
}

// Symbols returns every known symbol in listing order.
func (b *Book) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.quotes))
	for i, q := range b.quotes {
		out[i] = q.Symbol
	}
	return out
}

// OnUpdate registers fn to be called after every Apply.
func (b *Book) OnUpdate(fn func(types.Quote)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Apply stores q and notifies update handlers. An empty name keeps the previous one.
func (b *Book) Apply(q types.Quote) {
	b.mu.Lock()
	if i, ok := b.index[q.Symbol]; ok && q.Name == "" {
		q.Name = b.quotes[i].Name
	}
	b.put(q)
	handlers := make([]func(types.Quote), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(q)
	}
}

func (b *Book) put(q types.Quote) {
	if i, ok := b.index[q.Symbol]; ok {
		b.quotes[i] = q
		return
	}
	b.index[q.Symbol] = len(b.quotes)
	b.quotes = append(b.quotes, q)
}
