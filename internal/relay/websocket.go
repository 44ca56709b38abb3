package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// subscribeMessage is sent by WebSocket clients to replace their symbol filter.
type subscribeMessage struct {
	Symbols []string `json:"symbols"`
}

// WSHandler streams quote events over a WebSocket. The initial filter comes
// from ?symbols=; clients may send {"symbols":[...]} at any time to change it.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("relay: ws upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		var filter atomic.Pointer[symbolFilter]
		initial := parseSymbols(r.URL.Query()["symbols"])
		filter.Store(&initial)

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				data, op, err := wsutil.ReadClientData(conn)
				if err != nil {
					return
				}
				if op != ws.OpText {
					continue
				}
				var msg subscribeMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					slog.Debug("relay: ignoring ws message", "error", err)
					continue
				}
				next := parseSymbols(msg.Symbols)
				filter.Store(&next)
			}
		}()

		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if !filter.Load().accepts(evt.Symbol) {
					continue
				}
				if err := wsutil.WriteServerText(conn, evt.Payload); err != nil {
					slog.Debug("relay: ws write failed", "error", err)
					return
				}
			}
		}
	}
}
