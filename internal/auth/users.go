package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

// Account is a user together with its password hash. It never leaves this package.
type Account struct {
	types.User
	PasswordHash string
}

// UserStore persists accounts. Create assigns the next id when acct.ID is zero
// and fails with USER_EXISTS when the username or email is taken.
type UserStore interface {
	Create(ctx context.Context, acct Account) (types.User, error)
	ByEmail(ctx context.Context, email string) (Account, bool, error)
	ByID(ctx context.Context, id int64) (Account, bool, error)
	Delete(ctx context.Context, id int64) error
}

func userExists() error {
	return types.Errorf(types.CodeUserExists, "user already exists")
}

// MemoryUserStore keeps accounts in process memory.
type MemoryUserStore struct {
	mu       sync.RWMutex
	accounts []Account
	nextID   int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1}
}

func (s *MemoryUserStore) Create(_ context.Context, acct Account) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, acct.Email) || a.Username == acct.Username || (acct.ID != 0 && a.ID == acct.ID) {
			return types.User{}, userExists()
		}
	}
	if acct.ID == 0 {
		acct.ID = s.nextID
	}
	if acct.ID >= s.nextID {
		s.nextID = acct.ID + 1
	}
	s.accounts = append(s.accounts, acct)
	return acct.User, nil
}

func (s *MemoryUserStore) ByEmail(_ context.Context, email string) (Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true, nil
		}
	}
	return Account{}, false, nil
}

func (s *MemoryUserStore) ByID(_ context.Context, id int64) (Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true, nil
		}
	}
	return Account{}, false, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

// SQLiteUserStore stores accounts in the users table created by storage.OpenSQLite.
type SQLiteUserStore struct {
	db *sql.DB
}

func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

func (s *SQLiteUserStore) Create(ctx context.Context, acct Account) (_ types.User, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE lower(email) = lower(?) OR username = ? OR id = ?`,
		acct.Email, acct.Username, acct.ID,
	).Scan(&taken)
	if err != nil {
		return types.User{}, fmt.Errorf("check user: %w", err)
	}
	if taken > 0 {
		return types.User{}, userExists()
	}

	var res sql.Result
	now := time.Now().Unix()
	if acct.ID == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			acct.Username, acct.Email, acct.PasswordHash, now)
	} else {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			acct.ID, acct.Username, acct.Email, acct.PasswordHash, now)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.User{}, fmt.Errorf("user id: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return types.User{}, fmt.Errorf("commit: %w", err)
	}
	acct.ID = id
	return acct.User, nil
}

func (s *SQLiteUserStore) ByEmail(ctx context.Context, email string) (Account, bool, error) {
	return s.scanOne(ctx, `SELECT id, username, email, password_hash FROM users WHERE lower(email) = lower(?)`, email)
}

func (s *SQLiteUserStore) ByID(ctx context.Context, id int64) (Account, bool, error) {
	return s.scanOne(ctx, `SELECT id, username, email, password_hash FROM users WHERE id = ?`, id)
}

func (s *SQLiteUserStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) scanOne(ctx context.Context, query string, arg any) (Account, bool, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, fmt.Errorf("query user: %w", err)
	}
	return a, true, nil
}
