package market

import (
	"testing"

	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/shopspring/decimal"
)

func quote(symbol, name, price, change string) types.Quote {
	return types.Quote{
		Symbol: symbol,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
	}
}

func TestBookLookupAndStableOrder(t *testing.T) {
	b := NewBook([]types.Quote{
		quote("AAPL", "Apple Inc.", "182.63", "2.4"),
		quote("MSFT", "Microsoft Corp.", "325.42", "1.2"),
		quote("TSLA", "Tesla Inc.", "174.50", "-3.2"),
	})

	q, ok := b.Quote("MSFT")
	if !ok {
		t.Fatalf("Quote(MSFT) ok = false; want true")
	}
	if !q.Price.Equal(decimal.RequireFromString("325.42")) {
		t.Fatalf("Quote(MSFT).Price = %s; want 325.42", q.Price)
	}
	if _, ok := b.Quote("ZZZZ"); ok {
		t.Fatalf("Quote(ZZZZ) ok = true; want false")
	}

	first := b.List()
	second := b.List()
	for i := range first {
		if first[i].Symbol != second[i].Symbol {
			t.Fatalf("List() order changed at %d: %s vs %s", i, first[i].Symbol, second[i].Symbol)
		}
	}
	if got := b.Symbols(); len(got) != 3 || got[0] != "AAPL" || got[2] != "TSLA" {
		t.Fatalf("Symbols() = %v; want [AAPL MSFT TSLA]", got)
	}
}

func TestBookApplyUpdatesInPlaceAndNotifies(t *testing.T) {
	b := NewBook([]types.Quote{
		quote("AAPL", "Apple Inc.", "182.63", "2.4"),
		quote("MSFT", "Microsoft Corp.", "325.42", "1.2"),
	})

	var seen []types.Quote
	b.OnUpdate(func(q types.Quote) { seen = append(seen, q) })

	b.Apply(types.Quote{Symbol: "AAPL", Price: decimal.RequireFromString("190"), Change: decimal.RequireFromString("4.03")})
	b.Apply(quote("NVDA", "NVIDIA Corp.", "475.38", "5.2"))

	list := b.List()
	if len(list) != 3 || list[0].Symbol != "AAPL" || list[2].Symbol != "NVDA" {
		t.Fatalf("List() = %+v; want AAPL first and NVDA appended", list)
	}
	if list[0].Name != "Apple Inc." {
		t.Fatalf("Apply() without name replaced name with %q", list[0].Name)
	}
	if !list[0].Price.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("AAPL price = %s; want 190", list[0].Price)
	}
	if len(seen) != 2 {
		t.Fatalf("update handler calls = %d; want 2", len(seen))
	}
}
