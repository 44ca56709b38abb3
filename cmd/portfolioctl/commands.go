package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dgnsrekt/stockfolio/internal/portfolio"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

const currency = "USD"

var commands = []subcommands.Command{
	&holdingsCmd{},
	&addCmd{},
	&removeCmd{},
	&quotesCmd{},
	&summaryCmd{},
}

// run opens the environment, runs fn and maps its error to an exit status.
func run(ctx context.Context, fn func(*env) error) subcommands.ExitStatus {
	e, err := openEnv(ctx, *dbPath, *seedPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := fn(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid -%s %q: %w", name, s, err)
	}
	return d, nil
}

type holdingsCmd struct {
	user int64
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list a user's holdings" }
func (*holdingsCmd) Usage() string {
	return `portfolioctl holdings -user <id>
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "user", 1, "user id")
}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(e *env) error {
		holdings, err := e.svc.GetPortfolio(ctx, c.user)
		if err != nil {
			return err
		}
		return writeHoldings(os.Stdout, holdings)
	})
}

func writeHoldings(w io.Writer, holdings []types.Holding) error {
	if len(holdings) == 0 {
		_, err := fmt.Fprintln(w, "no holdings")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tSHARES\tAVG PRICE\tCURRENT")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h.Symbol, h.Name, h.Shares,
			portfolio.FormatMoney(h.AvgPrice, currency),
			portfolio.FormatMoney(h.CurrentPrice, currency))
	}
	return tw.Flush()
}

type addCmd struct {
	user   int64
	symbol string
	name   string
	shares string
	price  string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "buy shares, merging into an existing holding" }
func (*addCmd) Usage() string {
	return `portfolioctl add -user <id> -symbol <sym> -name <name> -shares <n> -price <p>

  Adds a purchase lot. Buying a symbol already held updates the average
  price to the share-weighted mean of the two lots.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "user", 1, "user id")
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.name, "name", "", "company name")
	f.StringVar(&c.shares, "shares", "", "number of shares")
	f.StringVar(&c.price, "price", "", "price paid per share")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	shares, err := parseDecimal("shares", c.shares)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	price, err := parseDecimal("price", c.price)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *env) error {
		req := portfolio.AddRequest{Symbol: c.symbol, Name: c.name, Shares: shares, AvgPrice: price}
		if err := e.svc.AddStock(ctx, c.user, req); err != nil {
			return err
		}
		fmt.Printf("added %s %s @ %s\n", shares, c.symbol, portfolio.FormatMoney(price, currency))
		return nil
	})
}

type removeCmd struct {
	user   int64
	symbol string
	shares string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "sell shares; selling all or more closes the holding" }
func (*removeCmd) Usage() string {
	return `portfolioctl remove -user <id> -symbol <sym> -shares <n>
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "user", 1, "user id")
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.shares, "shares", "", "number of shares to sell")
}

func (c *removeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	shares, err := parseDecimal("shares", c.shares)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *env) error {
		if err := e.svc.RemoveStock(ctx, c.user, portfolio.RemoveRequest{Symbol: c.symbol, Shares: shares}); err != nil {
			return err
		}
		fmt.Printf("removed %s %s\n", shares, c.symbol)
		return nil
	})
}

type quotesCmd struct{}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "list market quotes" }
func (*quotesCmd) Usage() string {
	return `portfolioctl quotes
`
}
func (*quotesCmd) SetFlags(*flag.FlagSet) {}

func (*quotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(e *env) error {
		quotes, err := e.svc.ListQuotes(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tCHANGE")
		for _, q := range quotes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", q.Symbol, q.Name,
				portfolio.FormatMoney(q.Price, currency), portfolio.FormatPercent(q.Change))
		}
		return tw.Flush()
	})
}

type summaryCmd struct {
	user int64
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show portfolio value and unrealised gain" }
func (*summaryCmd) Usage() string {
	return `portfolioctl summary -user <id>
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "user", 1, "user id")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(e *env) error {
		sum, err := e.svc.GetSummary(ctx, c.user)
		if err != nil {
			return err
		}
		return portfolio.WriteSummary(os.Stdout, sum, currency)
	})
}
