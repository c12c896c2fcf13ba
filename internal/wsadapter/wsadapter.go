// Package wsadapter binds a long-lived push-channel connection to a trade
// session: it decodes inbound frames into engine calls and relays the
// engine's state broadcasts back out as wire frames.
package wsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"

	"github.com/klingon-exchange/trade-with-me/internal/tradeengine"
	"github.com/klingon-exchange/trade-with-me/internal/wire"
	"github.com/klingon-exchange/trade-with-me/pkg/logging"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

const (
	outboundBufferSize = 32
	readLimitBytes     = 4096
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	writeWait          = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Adapter upgrades HTTP connections to push channels bound to a session in
// the engine.
type Adapter struct {
	engine *tradeengine.Engine
	log    *logging.Logger
}

// New returns an Adapter backed by engine.
func New(engine *tradeengine.Engine, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.Default()
	}
	return &Adapter{engine: engine, log: log.Component("wsadapter")}
}

// HandleConnection upgrades the request and runs the connection's
// read/write pumps; each pump closes the connection when it exits, and the
// connection is deregistered from the engine once both have returned.
func (a *Adapter) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Error("websocket upgrade failed", "error", err)
		return
	}

	connectionID := uuid.New()
	outbound := make(chan wire.OutboundMessage, outboundBufferSize)

	a.engine.AddClient(sessionID, connectionID, outbound)
	a.engine.BroadcastCurrentState(sessionID)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.writePump(conn, outbound)
	}()
	go func() {
		defer wg.Done()
		a.readPump(r.Context(), conn, sessionID, outbound)
	}()
	wg.Wait()

	a.engine.RemoveClient(sessionID, connectionID)
	a.log.Info("connection closed", "session", sessionID, "connection", connectionID)
}

// writePump dequeues outbound messages, encodes each to JSON, and sends it
// as a text frame. It exits (and the connection is torn down) on the first
// send error, treating that as the client having gone away.
func (a *Adapter) writePump(conn *websocket.Conn, outbound <-chan wire.OutboundMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-outbound:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				a.log.Error("failed to encode outbound message", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes incoming text frames and dispatches them to the engine.
// Malformed or unrecognized frames are ignored. A dispatch error is
// surfaced to the originating connection as an Error frame rather than
// silently dropped.
func (a *Adapter) readPump(ctx context.Context, conn *websocket.Conn, sessionID uuid.UUID, outbound chan<- wire.OutboundMessage) {
	defer conn.Close()

	conn.SetReadLimit(readLimitBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				a.log.Debug("websocket read error", "error", err)
			}
			return
		}

		msg, err := wire.DecodeInbound(data)
		if err != nil {
			continue
		}

		if err := a.dispatch(ctx, sessionID, msg); err != nil {
			select {
			case outbound <- wire.NewError(err.Error()):
			default:
			}
		}
	}
}

// dispatch routes a decoded inbound message to the corresponding engine
// operation. The engine itself broadcasts the updated state on every
// successful mutation, so dispatch does not broadcast again.
func (a *Adapter) dispatch(ctx context.Context, sessionID uuid.UUID, msg wire.InboundMessage) error {
	switch m := msg.(type) {
	case wire.OfferTokens:
		amount, err := money.NewAmountFromString(m.Amount)
		if err != nil {
			return fmt.Errorf("invalid offer amount %q: %w", m.Amount, err)
		}
		return a.engine.AddTokensOffer(sessionID, m.UserAddress, m.TokenMint, amount)

	case wire.WithdrawTokens:
		amount, err := money.NewAmountFromString(m.Amount)
		if err != nil {
			return fmt.Errorf("invalid withdrawal amount %q: %w", m.Amount, err)
		}
		return a.engine.WithdrawTokens(sessionID, m.UserAddress, m.TokenMint, amount)

	case wire.AcceptTrade:
		return a.engine.AcceptTrade(sessionID, m.UserAddress)

	case wire.GetTransactionToSign:
		return a.engine.BuildTransaction(ctx, sessionID)

	case wire.SignedTransaction:
		return a.engine.RecordSignature(sessionID, m.UserAddress, m.Signature)

	default:
		return fmt.Errorf("unhandled message type %T", msg)
	}
}
