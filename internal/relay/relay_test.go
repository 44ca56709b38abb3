package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/shopspring/decimal"
)

func testQuote(symbol, price string) types.Quote {
	return types.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: decimal.RequireFromString(price), Change: decimal.RequireFromString("1.5")}
}

func waitForClients(t *testing.T, b *Broker, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d; want %d", b.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerFanOutAndDrop(t *testing.T) {
	b := NewBroker()
	id1, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Publish(Event{Kind: KindQuote, Symbol: "AAPL"})
	if (<-ch1).Symbol != "AAPL" || (<-ch2).Symbol != "AAPL" {
		t.Fatal("event not delivered to both subscribers")
	}

	b.Unsubscribe(id1)
	if _, ok := <-ch1; ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	if b.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d; want 1", b.ClientCount())
	}

	for i := 0; i < subscriberBufSize+3; i++ {
		b.Publish(Event{Symbol: "X"})
	}
	if got := b.Dropped(); got != 3 {
		t.Fatalf("Dropped() = %d; want 3", got)
	}
}

func TestPublishQuotesEncodesJSON(t *testing.T) {
	b := NewBroker()
	_, ch := b.Subscribe()
	PublishQuotes(b)(testQuote("MSFT", "325.42"))

	evt := <-ch
	var msg quoteMessage
	if err := json.Unmarshal(evt.Payload, &msg); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if evt.Kind != KindQuote || msg.Symbol != "MSFT" || msg.Price != 325.42 || msg.Change != 1.5 {
		t.Fatalf("event = %+v, msg = %+v", evt, msg)
	}
}

func TestParseSymbols(t *testing.T) {
	f := parseSymbols([]string{" aapl, msft", "", "nvda"})
	for _, s := range []string{"AAPL", "MSFT", "NVDA"} {
		if !f.accepts(s) {
			t.Fatalf("filter rejects %s", s)
		}
	}
	if f.accepts("TSLA") {
		t.Fatal("filter accepts TSLA")
	}
	if !parseSymbols(nil).accepts("ANY") {
		t.Fatal("empty filter should accept everything")
	}
}

func TestSSEHandlerFiltersSymbols(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?symbols=msft", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	waitForClients(t, b, 1)
	publish := PublishQuotes(b)
	publish(testQuote("AAPL", "182.63"))
	publish(testQuote("MSFT", "325.42"))

	r := bufio.NewReader(resp.Body)
	eventLine, _ := r.ReadString('\n')
	dataLine, _ := r.ReadString('\n')
	if strings.TrimSpace(eventLine) != "event: quote" {
		t.Fatalf("event line = %q", eventLine)
	}
	if !strings.Contains(dataLine, `"symbol":"MSFT"`) {
		t.Fatalf("data line = %q; want MSFT only", dataLine)
	}
}

func TestWSHandlerStreamsAndResubscribes(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(WSHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?symbols=AAPL")
	if err != nil {
		t.Fatalf("ws.Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	waitForClients(t, b, 1)
	publish := PublishQuotes(b)
	publish(testQuote("TSLA", "174.50"))
	publish(testQuote("AAPL", "182.63"))

	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ReadServerText() error = %v", err)
	}
	if !strings.Contains(string(data), `"symbol":"AAPL"`) {
		t.Fatalf("first message = %s; want AAPL", data)
	}

	if err := wsutil.WriteClientText(conn, []byte(`{"symbols":["tsla"]}`)); err != nil {
		t.Fatalf("WriteClientText() error = %v", err)
	}
	// The filter swap is asynchronous. Publishing AAPL then TSLA always
	// yields at least one message whichever side of the swap each lands on.
	deadline := time.Now().Add(2 * time.Second)
	for {
		publish(testQuote("AAPL", "183.00"))
		publish(testQuote("TSLA", "175.00"))
		data, err = wsutil.ReadServerText(conn)
		if err != nil {
			t.Fatalf("ReadServerText() error = %v", err)
		}
		if strings.Contains(string(data), `"symbol":"TSLA"`) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("never received TSLA after resubscribe, last = %s", data)
		}
	}
}
