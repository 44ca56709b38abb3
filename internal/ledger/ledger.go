// Package ledger stores per-user holding collections.
//
// Stores expose a read path (Holdings) and a single atomic mutation path
// (Mutate). Mutate hands the callback a Ledger: a working copy of one user's
// ordered holdings that is committed only when the callback returns nil.
package ledger

import (
	"context"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

// Store is keyed storage of holding collections, one per user.
type Store interface {
	// Holdings returns the user's holdings in insertion order, or an empty
	// slice when the user has no ledger. It never mutates.
	Holdings(ctx context.Context, userID int64) ([]types.Holding, error)
	// Provisioned reports whether the user has a ledger, even an empty one.
	Provisioned(ctx context.Context, userID int64) (bool, error)
	// Provision creates an empty ledger for the user. Idempotent.
	Provision(ctx context.Context, userID int64) error
	// Mutate runs fn against the user's ledger atomically. It fails with
	// PORTFOLIO_NOT_FOUND when the user was never provisioned.
	Mutate(ctx context.Context, userID int64, fn func(*Ledger) error) error
	// Reset drops every ledger.
	Reset(ctx context.Context) error
	Close() error
}

// Ledger is an ordered, symbol-unique collection of holdings.
type Ledger struct {
	holdings []types.Holding
}

func newLedger(holdings []types.Holding) *Ledger {
	cp := make([]types.Holding, len(holdings))
	copy(cp, holdings)
	return &Ledger{holdings: cp}
}

// Holdings returns a copy of the collection.
func (l *Ledger) Holdings() []types.Holding {
	out := make([]types.Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// Len returns the number of holdings.
func (l *Ledger) Len() int { return len(l.holdings) }

// Get returns the holding for symbol.
func (l *Ledger) Get(symbol string) (types.Holding, bool) {
	if i := l.index(symbol); i >= 0 {
		return l.holdings[i], true
	}
	return types.Holding{}, false
}

// Insert appends h. Symbols stay unique: inserting an existing symbol is a validation error.
func (l *Ledger) Insert(h types.Holding) error {
	if l.index(h.Symbol) >= 0 {
		return types.Errorf(types.CodeValidation, "holding %s already exists", h.Symbol)
	}
	if !h.Shares.IsPositive() {
		return types.Errorf(types.CodeValidation, "holding %s must have positive shares", h.Symbol)
	}
	l.holdings = append(l.holdings, h)
	return nil
}

// Update replaces the holding with the same symbol in place, keeping its position.
func (l *Ledger) Update(h types.Holding) error {
	i := l.index(h.Symbol)
	if i < 0 {
		return types.Errorf(types.CodeHoldingNotFound, "holding %s not found", h.Symbol)
	}
	if !h.Shares.IsPositive() {
		return types.Errorf(types.CodeValidation, "holding %s must have positive shares", h.Symbol)
	}
	l.holdings[i] = h
	return nil
}

// Delete removes the holding for symbol, preserving the order of the rest.
func (l *Ledger) Delete(symbol string) error {
	i := l.index(symbol)
	if i < 0 {
		return types.Errorf(types.CodeHoldingNotFound, "holding %s not found", symbol)
	}
	l.holdings = append(l.holdings[:i], l.holdings[i+1:]...)
	return nil
}

func (l *Ledger) index(symbol string) int {
	for i, h := range l.holdings {
		if h.Symbol == symbol {
			return i
		}
	}
	return -1
}

func portfolioNotFound(userID int64) error {
	return types.Errorf(types.CodePortfolioNotFound, "portfolio for user %d not found", userID)
}
