package portfolio

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the currency's display form, e.g. "$1,234.56".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatSignedMoney is FormatMoney with an explicit sign for gains.
func FormatSignedMoney(amount decimal.Decimal, currency string) string {
	if amount.IsNegative() {
		return "-" + FormatMoney(amount.Abs(), currency)
	}
	return "+" + FormatMoney(amount, currency)
}

// FormatPercent renders a signed two-decimal percentage.
func FormatPercent(p decimal.Decimal) string {
	if p.IsNegative() {
		return p.StringFixed(2) + "%"
	}
	return "+" + p.StringFixed(2) + "%"
}

// WriteSummary writes a plain-text table of the summary.
func WriteSummary(w io.Writer, s Summary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tSHARES\tAVG PRICE\tCURRENT\tGAIN\tGAIN %")
	for _, p := range s.Positions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Symbol, p.Name, p.Shares.String(),
			FormatMoney(p.AvgPrice, currency),
			FormatMoney(p.CurrentPrice, currency),
			FormatSignedMoney(p.TotalGain, currency),
			FormatPercent(p.GainPercent),
		)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total value\t%s\n", FormatMoney(s.TotalValue, currency))
	fmt.Fprintf(tw, "Total investment\t%s\n", FormatMoney(s.TotalInvestment, currency))
	fmt.Fprintf(tw, "Total gain/loss\t%s (%s)\n", FormatSignedMoney(s.TotalGain, currency), FormatPercent(s.TotalGainPercent))
	return tw.Flush()
}
