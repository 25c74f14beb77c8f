package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

func TestParseTick(t *testing.T) {
	tick, ok := parseTick([]byte(`{"e":"24hrTicker","s":"BTCUSDT","c":"45000.50","o":"44000"}`))
	if !ok {
		t.Fatal("expected tick")
	}
	if tick.Symbol != "btcusdt" {
		t.Errorf("expected btcusdt, got %s", tick.Symbol)
	}
	if !tick.Price.Equal(decimal.NewFromFloat(45000.50)) {
		t.Errorf("expected 45000.50, got %s", tick.Price)
	}
	if tick.PriceStr != "45000.50" {
		t.Errorf("unexpected raw price %q", tick.PriceStr)
	}
}

func TestParseTickIgnoresIrrelevant(t *testing.T) {
	cases := []string{
		`not json`,
		`{"result":null,"id":1}`,     // subscribe ack
		`{"s":"BTCUSDT"}`,            // no price
		`{"c":"45000"}`,              // no symbol
		`{"s":"BTCUSDT","c":"oops"}`, // unparseable price
		`{"s":"  ","c":"45000"}`,     // blank symbol
	}
	for _, c := range cases {
		if _, ok := parseTick([]byte(c)); ok {
			t.Errorf("expected %q to be ignored", c)
		}
	}
}

func TestSubscribeRejectsEmptyInput(t *testing.T) {
	f := NewTickerFeed("", time.Second)
	if _, err := f.Subscribe(context.Background(), []string{"btcusdt"}); err == nil {
		t.Error("expected error for empty url")
	}

	f = NewTickerFeed("ws://localhost:9", time.Second)
	if _, err := f.Subscribe(context.Background(), []string{" ", ""}); err == nil {
		t.Error("expected error for empty symbols")
	}
}

// TestShutdownWithFullTickBuffer cancels the feed while the tick channel is
// full and the reader is blocked on the send; the channel must still close
// cleanly instead of panicking.
func TestShutdownWithFullTickBuffer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req subscribeReq
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		for {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"s":"BTCUSDT","c":"45000"}`)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewTickerFeed(wsURL, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks, err := feed.Subscribe(ctx, []string{"btcusdt"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// nothing consumes ticks, so the server fills the whole buffer
	deadline := time.After(5 * time.Second)
	for len(ticks) < cap(ticks) {
		select {
		case <-deadline:
			t.Fatalf("buffer never filled: %d/%d", len(ticks), cap(ticks))
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("tick channel never closed after cancel")
		}
	}
}

// TestResubscribeAfterDisconnect drops the first connection after one tick and
// verifies the feed reconnects and re-issues a full subscribe request.
func TestResubscribeAfterDisconnect(t *testing.T) {
	var mu sync.Mutex
	var subs []subscribeReq

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req subscribeReq
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		mu.Lock()
		subs = append(subs, req)
		n := len(subs)
		mu.Unlock()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"s":"BTCUSDT","c":"45000"}`))
		if n == 1 {
			return // drop the first connection to force a reconnect
		}
		// keep the second connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewTickerFeed(wsURL, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ticks, err := feed.Subscribe(ctx, []string{"btcusdt", "ethusdt"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case tick := <-ticks:
			if tick.Symbol != "btcusdt" {
				t.Errorf("unexpected symbol %s", tick.Symbol)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for ticks")
		}
	}
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(subs) < 2 {
		t.Fatalf("expected at least 2 subscribe requests, got %d", len(subs))
	}
	want := []string{"btcusdt@ticker", "ethusdt@ticker"}
	for _, req := range subs {
		if req.Method != "SUBSCRIBE" {
			t.Errorf("unexpected method %q", req.Method)
		}
		if len(req.Params) != len(want) || req.Params[0] != want[0] || req.Params[1] != want[1] {
			t.Errorf("unexpected params %v", req.Params)
		}
	}
}
