package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/storage"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, users UserStore) (*Service, ledger.Store) {
	t.Helper()
	ledgers := ledger.NewMemoryStore()
	svc := NewService(users, ledgers, Options{
		Secret:     []byte("test-secret"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	return svc, ledgers
}

func userStores(t *testing.T) map[string]UserStore {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]UserStore{
		"memory": NewMemoryUserStore(),
		"sqlite": NewSQLiteUserStore(db),
	}
}

func TestRegisterProvisionsLedger(t *testing.T) {
	for name, users := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			svc, ledgers := newTestService(t, users)
			ctx := context.Background()

			user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.ID != 1 || user.Username != "alice" {
				t.Fatalf("Register() = %+v; want id 1 alice", user)
			}
			ok, err := ledgers.Provisioned(ctx, user.ID)
			if err != nil || !ok {
				t.Fatalf("Provisioned(%d) = %v, %v; want true", user.ID, ok, err)
			}

			second, err := svc.Register(ctx, "bob", "bob@example.com", "pw")
			if err != nil {
				t.Fatalf("Register(bob) error = %v", err)
			}
			if second.ID != 2 {
				t.Fatalf("second user id = %d; want 2", second.ID)
			}
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	for name, users := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t, users)
			ctx := context.Background()
			if _, err := svc.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			if _, err := svc.Register(ctx, "alice2", "ALICE@example.com", "pw"); !types.IsCode(err, types.CodeUserExists) {
				t.Fatalf("duplicate email error = %v; want %s", err, types.CodeUserExists)
			}
			if _, err := svc.Register(ctx, "alice", "other@example.com", "pw"); !types.IsCode(err, types.CodeUserExists) {
				t.Fatalf("duplicate username error = %v; want %s", err, types.CodeUserExists)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryUserStore())
	if _, err := svc.Register(context.Background(), " ", "a@b.c", "pw"); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("Register() error = %v; want %s", err, types.CodeValidation)
	}
}

func TestImportKeepsID(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryUserStore())
	ctx := context.Background()
	if _, err := svc.Import(ctx, 7, "demo", "demo@example.com", "password"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	next, err := svc.Register(ctx, "new", "new@example.com", "pw")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if next.ID != 8 {
		t.Fatalf("next id = %d; want 8", next.ID)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	for name, users := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t, users)
			ctx := context.Background()
			if _, err := svc.Import(ctx, 1, "demo", "demo@example.com", "password"); err != nil {
				t.Fatalf("Import() error = %v", err)
			}

			if _, err := svc.Login(ctx, "demo@example.com", "wrong"); !types.IsCode(err, types.CodeInvalidCredentials) {
				t.Fatalf("Login(wrong password) error = %v; want %s", err, types.CodeInvalidCredentials)
			}
			if _, err := svc.Login(ctx, "nobody@example.com", "password"); !types.IsCode(err, types.CodeInvalidCredentials) {
				t.Fatalf("Login(unknown) error = %v; want %s", err, types.CodeInvalidCredentials)
			}

			sess, err := svc.Login(ctx, "demo@example.com", "password")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if sess.Token == "" || sess.User.ID != 1 || sess.User.Email != "demo@example.com" {
				t.Fatalf("Login() = %+v", sess)
			}

			user, err := svc.Authenticate(ctx, sess.Token)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if user.ID != 1 {
				t.Fatalf("Authenticate() user id = %d; want 1", user.ID)
			}
		})
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryUserStore())
	ctx := context.Background()
	if _, err := svc.Import(ctx, 1, "demo", "demo@example.com", "password"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	sess, err := svc.Login(ctx, "demo@example.com", "password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	other := NewService(NewMemoryUserStore(), ledger.NewMemoryStore(), Options{Secret: []byte("other"), BcryptCost: bcrypt.MinCost})
	expired := NewService(NewMemoryUserStore(), ledger.NewMemoryStore(), Options{Secret: []byte("test-secret"), BcryptCost: bcrypt.MinCost})
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name  string
		svc   *Service
		token string
	}{
		{"garbage", svc, "not-a-token"},
		{"wrong secret", other, sess.Token},
		{"expired", expired, sess.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Authenticate(ctx, tt.token); !types.IsCode(err, types.CodeUnauthorized) {
				t.Fatalf("Authenticate() error = %v; want %s", err, types.CodeUnauthorized)
			}
		})
	}
}

type flakyLedgers struct {
	ledger.Store
	fail error
}

func (f *flakyLedgers) Provision(ctx context.Context, userID int64) error {
	if f.fail != nil {
		return f.fail
	}
	return f.Store.Provision(ctx, userID)
}

func TestRegisterRollsBackWhenLedgerFails(t *testing.T) {
	for name, users := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			ledgers := &flakyLedgers{Store: ledger.NewMemoryStore(), fail: errors.New("disk full")}
			svc := NewService(users, ledgers, Options{Secret: []byte("test-secret"), BcryptCost: bcrypt.MinCost})
			ctx := context.Background()

			if _, err := svc.Register(ctx, "carol", "carol@example.com", "pw"); err == nil {
				t.Fatal("Register() error = nil; want ledger failure")
			}
			if _, ok, err := users.ByEmail(ctx, "carol@example.com"); err != nil || ok {
				t.Fatalf("ByEmail() after failed Register = %v, %v; want no account", ok, err)
			}
			if _, err := svc.Login(ctx, "carol@example.com", "pw"); !types.IsCode(err, types.CodeInvalidCredentials) {
				t.Fatalf("Login() error = %v; want %s", err, types.CodeInvalidCredentials)
			}

			ledgers.fail = nil
			user, err := svc.Register(ctx, "carol", "carol@example.com", "pw")
			if err != nil {
				t.Fatalf("retry Register() error = %v", err)
			}
			ok, err := ledgers.Provisioned(ctx, user.ID)
			if err != nil || !ok {
				t.Fatalf("Provisioned(%d) = %v, %v; want true", user.ID, ok, err)
			}
		})
	}
}

func TestLoginProvisionsMissingLedger(t *testing.T) {
	users := NewMemoryUserStore()
	svc, ledgers := newTestService(t, users)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	user, err := users.Create(ctx, Account{
		User:         types.User{Username: "dave", Email: "dave@example.com"},
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Login(ctx, "dave@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	ok, err := ledgers.Provisioned(ctx, user.ID)
	if err != nil || !ok {
		t.Fatalf("Provisioned(%d) = %v, %v; want true", user.ID, ok, err)
	}
}
