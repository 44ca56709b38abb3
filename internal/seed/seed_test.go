package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/auth"
	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefault(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if len(f.Users) != 1 || f.Users[0].Email != "demo@example.com" {
		t.Fatalf("Users = %+v", f.Users)
	}
	if len(f.Portfolios) != 1 || len(f.Portfolios[0].Holdings) != 5 {
		t.Fatalf("Portfolios = %+v", f.Portfolios)
	}

	quotes, err := f.MarketQuotes()
	if err != nil {
		t.Fatalf("MarketQuotes() error = %v", err)
	}
	if len(quotes) != 10 {
		t.Fatalf("len(quotes) = %d; want 10", len(quotes))
	}
	if q := quotes[7]; q.Symbol != "BRK.B" || q.Price.String() != "408.15" {
		t.Fatalf("quotes[7] = %+v; want BRK.B 408.15", q)
	}
	if q := quotes[4]; q.Symbol != "TSLA" || q.Change.String() != "-3.2" {
		t.Fatalf("quotes[4] = %+v; want TSLA -3.2", q)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `
quotes:
  - symbol: " ibm "
    name: IBM
    price: 150
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	quotes, _ := f.MarketQuotes()
	if len(quotes) != 1 || quotes[0].Symbol != "IBM" || !quotes[0].Change.IsZero() {
		t.Fatalf("quotes = %+v", quotes)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load(missing) error = nil")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"user without password", "users: [{id: 1, username: a, email: a@b.c}]", "users[0]"},
		{"zero shares", `portfolios: [{user_id: 1, holdings: [{symbol: A, name: A, shares: "0", avg_price: "1"}]}]`, "positive"},
		{"duplicate holding", `portfolios: [{user_id: 1, holdings: [{symbol: A, name: A, shares: "1", avg_price: "1"}, {symbol: a, name: A, shares: "1", avg_price: "1"}]}]`, "duplicate"},
		{"bad price", `quotes: [{symbol: A, name: A, price: abc}]`, "price"},
		{"not yaml", "users: [", "seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse() error = %v; want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyDefaultSeed(t *testing.T) {
	ctx := context.Background()
	ledgers := ledger.NewMemoryStore()
	authSvc := auth.NewService(auth.NewMemoryUserStore(), ledgers, auth.Options{
		Secret:     []byte("k"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})

	f, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.Apply(ctx, authSvc, ledgers); err != nil {
			t.Fatalf("Apply() pass %d error = %v", i, err)
		}
	}

	holdings, err := ledgers.Holdings(ctx, 1)
	if err != nil {
		t.Fatalf("Holdings() error = %v", err)
	}
	var symbols []string
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	if got := strings.Join(symbols, ","); got != "AAPL,MSFT,GOOGL,AMZN,TSLA" {
		t.Fatalf("holdings = %s; want seeded order without duplicates", got)
	}

	sess, err := authSvc.Login(ctx, "demo@example.com", "password")
	if err != nil {
		t.Fatalf("Login(demo) error = %v", err)
	}
	if sess.User.ID != 1 {
		t.Fatalf("demo user id = %d; want 1", sess.User.ID)
	}
}
