// Package seed loads the initial users, portfolios and quotes from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// User is a seeded account. Password is plain text and hashed on import.
type User struct {
	ID       int64  `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Holding struct {
	Symbol       string `yaml:"symbol"`
	Name         string `yaml:"name"`
	Shares       string `yaml:"shares"`
	AvgPrice     string `yaml:"avg_price"`
	CurrentPrice string `yaml:"current_price"`
}

type Portfolio struct {
	UserID   int64     `yaml:"user_id"`
	Holdings []Holding `yaml:"holdings"`
}

type Quote struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Price  string `yaml:"price"`
	Change string `yaml:"change"`
}

// File is the top-level seed document.
type File struct {
	Users      []User      `yaml:"users"`
	Portfolios []Portfolio `yaml:"portfolios"`
	Quotes     []Quote     `yaml:"quotes"`
}

// Importer creates accounts with fixed ids.
type Importer interface {
	Import(ctx context.Context, id int64, username, email, password string) (types.User, error)
}

// Load reads a seed file. An empty path selects the embedded demo dataset.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	for i, u := range f.Users {
		if u.ID <= 0 || u.Username == "" || u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed: users[%d] needs id, username, email and password", i)
		}
	}
	for i, p := range f.Portfolios {
		if p.UserID <= 0 {
			return nil, fmt.Errorf("seed: portfolios[%d] missing user_id", i)
		}
		if _, err := p.holdings(); err != nil {
			return nil, fmt.Errorf("seed: portfolios[%d]: %w", i, err)
		}
	}
	if _, err := f.MarketQuotes(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (p Portfolio) holdings() ([]types.Holding, error) {
	out := make([]types.Holding, 0, len(p.Holdings))
	seen := make(map[string]bool, len(p.Holdings))
	for i, h := range p.Holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" || h.Name == "" {
			return nil, fmt.Errorf("holdings[%d] needs symbol and name", i)
		}
		if seen[symbol] {
			return nil, fmt.Errorf("holdings[%d]: duplicate symbol %s", i, symbol)
		}
		seen[symbol] = true

		shares, err := decimal.NewFromString(h.Shares)
		if err != nil || !shares.IsPositive() {
			return nil, fmt.Errorf("holdings[%d] %s: shares must be a positive number", i, symbol)
		}
		avg, err := decimal.NewFromString(h.AvgPrice)
		if err != nil {
			return nil, fmt.Errorf("holdings[%d] %s: avg_price: %w", i, symbol, err)
		}
		current := avg
		if h.CurrentPrice != "" {
			if current, err = decimal.NewFromString(h.CurrentPrice); err != nil {
				return nil, fmt.Errorf("holdings[%d] %s: current_price: %w", i, symbol, err)
			}
		}
		out = append(out, types.Holding{Symbol: symbol, Name: h.Name, Shares: shares, AvgPrice: avg, CurrentPrice: current})
	}
	return out, nil
}

// MarketQuotes converts the seeded quotes for market.NewBook.
func (f *File) MarketQuotes() ([]types.Quote, error) {
	out := make([]types.Quote, 0, len(f.Quotes))
	for i, q := range f.Quotes {
		symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("seed: quotes[%d] missing symbol", i)
		}
		price, err := decimal.NewFromString(q.Price)
		if err != nil {
			return nil, fmt.Errorf("seed: quotes[%d] %s: price: %w", i, symbol, err)
		}
		change := decimal.Zero
		if q.Change != "" {
			if change, err = decimal.NewFromString(q.Change); err != nil {
				return nil, fmt.Errorf("seed: quotes[%d] %s: change: %w", i, symbol, err)
			}
		}
		out = append(out, types.Quote{Symbol: symbol, Name: q.Name, Price: price, Change: change})
	}
	return out, nil
}

// Apply imports users and fills their ledgers. It is safe to run against a
// store that was seeded before: existing users are kept and ledgers that
// already hold anything are left alone.
func (f *File) Apply(ctx context.Context, users Importer, ledgers ledger.Store) error {
	for _, u := range f.Users {
		_, err := users.Import(ctx, u.ID, u.Username, u.Email, u.Password)
		if types.IsCode(err, types.CodeUserExists) {
			slog.Debug("seed user already present", "user_id", u.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}

	for _, p := range f.Portfolios {
		holdings, err := p.holdings()
		if err != nil {
			return fmt.Errorf("seed portfolio %d: %w", p.UserID, err)
		}
		if err := ledgers.Provision(ctx, p.UserID); err != nil {
			return fmt.Errorf("seed portfolio %d: %w", p.UserID, err)
		}
		inserted := 0
		err = ledgers.Mutate(ctx, p.UserID, func(l *ledger.Ledger) error {
			if l.Len() > 0 {
				return nil
			}
			for _, h := range holdings {
				if err := l.Insert(h); err != nil {
					return err
				}
				inserted++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed portfolio %d: %w", p.UserID, err)
		}
		slog.Info("seed portfolio applied", "user_id", p.UserID, "holdings", inserted)
	}
	return nil
}
