package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
)

// SQLiteStore persists ledgers in the holdings/ledgers tables created by storage.OpenSQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore wraps an already migrated database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) Holdings(ctx context.Context, userID int64) ([]types.Holding, error) {
	holdings, err := loadHoldings(ctx, s.db, userID)
	if err != nil {
		return nil, types.NewError(types.CodeStoreFailure, "load holdings", err)
	}
	return holdings, nil
}

func (s *SQLiteStore) Provisioned(ctx context.Context, userID int64) (bool, error) {
	ok, err := provisioned(ctx, s.db, userID)
	if err != nil {
		return false, types.NewError(types.CodeStoreFailure, "check ledger", err)
	}
	return ok, nil
}

func (s *SQLiteStore) Provision(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ledgers (user_id, created_at) VALUES (?, ?)`,
		userID, time.Now().Unix())
	if err != nil {
		return types.NewError(types.CodeStoreFailure, "provision ledger", err)
	}
	return nil
}

// Mutate loads the ledger, applies fn and rewrites the user's rows in one transaction.
func (s *SQLiteStore) Mutate(ctx context.Context, userID int64, fn func(*Ledger) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.NewError(types.CodeStoreFailure, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Debug("ledger rollback failed", "user_id", userID, "error", rbErr)
			}
		}
	}()

	ok, err := provisioned(ctx, tx, userID)
	if err != nil {
		return types.NewError(types.CodeStoreFailure, "check ledger", err)
	}
	if !ok {
		return portfolioNotFound(userID)
	}

	holdings, err := loadHoldings(ctx, tx, userID)
	if err != nil {
		return types.NewError(types.CodeStoreFailure, "load holdings", err)
	}

	l := newLedger(holdings)
	if err = fn(l); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = ?`, userID); err != nil {
		return types.NewError(types.CodeStoreFailure, "clear holdings", err)
	}
	for pos, h := range l.holdings {
		_, err = tx.ExecContext(ctx, `INSERT INTO holdings
			(user_id, symbol, name, shares, avg_price, current_price, position)
			VALUES (?,?,?,?,?,?,?)`,
			userID, h.Symbol, h.Name, h.Shares.String(), h.AvgPrice.String(), h.CurrentPrice.String(), pos)
		if err != nil {
			return types.NewError(types.CodeStoreFailure, "write holding "+h.Symbol, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return types.NewError(types.CodeStoreFailure, "commit", err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{`DELETE FROM holdings`, `DELETE FROM ledgers`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return types.NewError(types.CodeStoreFailure, "reset ledgers", err)
		}
	}
	return nil
}

// Close is a no-op; the database handle belongs to the caller that opened it.
func (s *SQLiteStore) Close() error { return nil }

func provisioned(ctx context.Context, q queryer, userID int64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM ledgers WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func loadHoldings(ctx context.Context, q queryer, userID int64) ([]types.Holding, error) {
	rows, err := q.QueryContext(ctx, `SELECT symbol, name, shares, avg_price, current_price
		FROM holdings WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	holdings := []types.Holding{}
	for rows.Next() {
		var symbol, name, shares, avg, cur string
		if err := rows.Scan(&symbol, &name, &shares, &avg, &cur); err != nil {
			return nil, err
		}
		h := types.Holding{Symbol: symbol, Name: name}
		if h.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("holding %s shares: %w", symbol, err)
		}
		if h.AvgPrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("holding %s avg_price: %w", symbol, err)
		}
		if h.CurrentPrice, err = decimal.NewFromString(cur); err != nil {
			return nil, fmt.Errorf("holding %s current_price: %w", symbol, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
