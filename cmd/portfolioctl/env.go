package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgnsrekt/stockfolio/internal/auth"
	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/market"
	"github.com/dgnsrekt/stockfolio/internal/portfolio"
	"github.com/dgnsrekt/stockfolio/internal/seed"
	"github.com/dgnsrekt/stockfolio/internal/storage"
)

// env is the opened database plus the services commands work through.
type env struct {
	db      *sql.DB
	ledgers ledger.Store
	book    *market.Book
	svc     *portfolio.Service
}

func openEnv(ctx context.Context, dbPath, seedPath string) (*env, error) {
	db, err := storage.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	ledgers := ledger.NewSQLiteStore(db)

	f, err := seed.Load(seedPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if seedPath != "" {
		// Tokens are never issued here, so the signing key is irrelevant.
		users := auth.NewService(auth.NewSQLiteUserStore(db), ledgers, auth.Options{Secret: []byte("portfolioctl")})
		if err := f.Apply(ctx, users, ledgers); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply seed: %w", err)
		}
	}
	quotes, err := f.MarketQuotes()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	book := market.NewBook(quotes)
	return &env{
		db:      db,
		ledgers: ledgers,
		book:    book,
		svc:     portfolio.NewService(ledgers, book),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}
