package portfolio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgnsrekt/stockfolio/internal/types"
)

func TestSummarize(t *testing.T) {
	sum := Summarize([]types.Holding{aapl(), tsla()})

	// 10*182.63 + 15*174.50 = 1826.30 + 2617.50
	if !sum.TotalValue.Equal(d("4443.8")) {
		t.Fatalf("TotalValue = %s; want 4443.8", sum.TotalValue)
	}
	// 10*175.23 + 15*189.25 = 1752.30 + 2838.75
	if !sum.TotalInvestment.Equal(d("4591.05")) {
		t.Fatalf("TotalInvestment = %s; want 4591.05", sum.TotalInvestment)
	}
	if !sum.TotalGain.Equal(d("-147.25")) {
		t.Fatalf("TotalGain = %s; want -147.25", sum.TotalGain)
	}
	if got := sum.TotalGainPercent.StringFixed(2); got != "-3.21" {
		t.Fatalf("TotalGainPercent = %s; want -3.21", got)
	}

	if len(sum.Positions) != 2 {
		t.Fatalf("Positions len = %d; want 2", len(sum.Positions))
	}
	p := sum.Positions[0]
	if !p.Gain.Equal(d("7.4")) || !p.TotalGain.Equal(d("74")) {
		t.Fatalf("AAPL gain = %s total %s; want 7.4 total 74", p.Gain, p.TotalGain)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if !sum.TotalGainPercent.IsZero() || !sum.TotalValue.IsZero() {
		t.Fatalf("empty summary = %+v; want zeros", sum)
	}
}

func TestFormatMoney(t *testing.T) {
	if got, want := FormatMoney(d("1234.567"), "USD"), "$1,234.57"; got != want {
		t.Fatalf("FormatMoney() = %q; want %q", got, want)
	}
	if got, want := FormatSignedMoney(d("-147.25"), "USD"), "-$147.25"; got != want {
		t.Fatalf("FormatSignedMoney() = %q; want %q", got, want)
	}
	if got, want := FormatPercent(d("5.2")), "+5.20%"; got != want {
		t.Fatalf("FormatPercent() = %q; want %q", got, want)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, Summarize([]types.Holding{aapl()}), "USD"); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"AAPL", "$175.23", "+$74.00", "Total value"} {
		if !strings.Contains(out, want) {
			t.Fatalf("WriteSummary() output missing %q:\n%s", want, out)
		}
	}
}
