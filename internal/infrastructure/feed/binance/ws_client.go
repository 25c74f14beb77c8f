package binance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
)

// connState tracks the supervisor loop through its lifecycle. The machine has
// no terminal state: every disconnect leads back through stateReconnecting.
type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
	stateReconnecting
)

type TickerFeed struct {
	wsURL          string // e.g. wss://stream.binance.com:9443/ws
	reconnectDelay time.Duration
	dialTimeout    time.Duration
}

// NewTickerFeed creates a Binance ticker feed. reconnectDelay is the fixed
// wait between reconnect attempts; zero selects the 5s default.
func NewTickerFeed(wsURL string, reconnectDelay time.Duration) *TickerFeed {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &TickerFeed{
		wsURL:          strings.TrimSpace(wsURL),
		reconnectDelay: reconnectDelay,
		dialTimeout:    10 * time.Second,
	}
}

type subscribeReq struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// tickerMsg carries the two fields the ingestor needs; everything else in the
// payload is ignored. Subscribe acks have neither s nor c and fall through.
type tickerMsg struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (f *TickerFeed) Subscribe(ctx context.Context, symbols []string) (<-chan port.Tick, error) {
	if f.wsURL == "" {
		return nil, errors.New("binance ws_url empty")
	}

	params := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		params = append(params, s+"@ticker")
	}
	if len(params) == 0 {
		return nil, errors.New("symbols empty")
	}

	out := make(chan port.Tick, 1024)
	go f.run(ctx, params, out)
	return out, nil
}

// run is the supervisor loop. Connection errors and closes are never fatal;
// the loop re-dials after a fixed delay for the lifetime of ctx. The
// subscribe request is re-sent on every successful connect because the
// upstream keeps no subscription state across connections.
func (f *TickerFeed) run(ctx context.Context, params []string, out chan<- port.Tick) {
	defer close(out)

	state := stateDisconnected
	for {
		if ctx.Err() != nil {
			return
		}

		switch state {
		case stateDisconnected:
			state = stateConnecting

		case stateReconnecting:
			log.Warn().Dur("delay", f.reconnectDelay).Msg("binance ws reconnecting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.reconnectDelay):
			}
			state = stateConnecting

		case stateConnecting:
			cctx, cancel := context.WithTimeout(ctx, f.dialTimeout)
			conn, _, err := websocket.DefaultDialer.DialContext(cctx, f.wsURL, nil)
			cancel()
			if err != nil {
				log.Error().Err(err).Str("url", f.wsURL).Msg("binance ws dial failed")
				state = stateReconnecting
				continue
			}
			if err := conn.WriteJSON(subscribeReq{Method: "SUBSCRIBE", Params: params, ID: 1}); err != nil {
				_ = conn.Close()
				log.Error().Err(err).Msg("binance ws subscribe failed")
				state = stateReconnecting
				continue
			}
			log.Info().Int("streams", len(params)).Msg("binance ws connected & subscribed")
			err = readLoop(ctx, conn, func(b []byte) {
				tick, ok := parseTick(b)
				if !ok {
					return
				}
				// cancellation-aware: a full out channel must not pin the
				// reader past shutdown
				select {
				case out <- tick:
				case <-ctx.Done():
				}
			})
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("binance ws disconnected")
			state = stateReconnecting
		}
	}
}

// parseTick extracts a tick from an inbound frame. Malformed or irrelevant
// messages (acks, unknown events) report ok=false and are dropped silently.
func parseTick(b []byte) (port.Tick, bool) {
	var msg tickerMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return port.Tick{}, false
	}
	sym := strings.ToLower(strings.TrimSpace(msg.Symbol))
	pxs := strings.TrimSpace(msg.Close)
	if sym == "" || pxs == "" {
		return port.Tick{}, false
	}
	px, err := decimal.NewFromString(pxs)
	if err != nil {
		return port.Tick{}, false
	}
	return port.Tick{Symbol: sym, PriceStr: pxs, Price: px, At: time.Now()}, true
}

// readLoop owns the connection: it closes conn on every exit path and only
// returns once the reader goroutine is gone, so callers may close the channel
// their onMsg feeds as soon as readLoop comes back.
func readLoop(ctx context.Context, conn *websocket.Conn, onMsg func([]byte)) error {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			onMsg(b)
		}
	}()

	// closing conn unblocks a read in flight; draining errCh joins the reader
	defer func() {
		_ = conn.Close()
		for range errCh {
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

var _ port.PriceFeed = (*TickerFeed)(nil)
