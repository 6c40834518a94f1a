package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// dApps run on arbitrary origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dappMessage is a request from a dApp. ID is echoed back as is.
type dappMessage struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Type    payload.Kind    `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// dappReply answers one dappMessage. Error is set only when the message could
// not be paired with a request kind.
type dappReply struct {
	ID      json.RawMessage    `json:"id,omitempty"`
	Type    payload.Kind       `json:"type"`
	Payload *payload.Response  `json:"payload,omitempty"`
	Error   *payload.ErrorInfo `json:"error,omitempty"`
}

type dappClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	// slots bounds the requests in flight
	slots   chan struct{}
	pending sync.WaitGroup
	logger  *zap.Logger
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &dappClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		slots:  make(chan struct{}, s.cfg.MaxInFlight),
		logger: s.logger.With(zap.String("remote_addr", r.RemoteAddr)),
	}
	client.logger.Info("dApp connected")

	go client.writePump()
	s.readPump(client)
}

// readPump dispatches each message in its own goroutine so queries are not
// held up by a pending submission
func (s *Server) readPump(c *dappClient) {
	defer func() {
		close(c.done)
		c.conn.Close()
		c.pending.Wait()
		c.logger.Info("dApp disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg dappMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(&dappReply{Error: payload.NewErrorInfo(apperr.Wrap(apperr.KindBadRequest, err, "The message is not valid JSON."))})
			continue
		}
		if _, ok := payload.ShapeOf(msg.Type); !ok {
			c.reply(&dappReply{ID: msg.ID, Type: msg.Type, Error: payload.NewErrorInfo(apperr.Newf(apperr.KindBadRequest, "unknown message type %q", msg.Type))})
			continue
		}

		select {
		case c.slots <- struct{}{}:
		case <-c.done:
			return
		}
		c.pending.Add(1)
		go func(msg dappMessage) {
			defer func() {
				<-c.slots
				c.pending.Done()
			}()
			resp := s.dispatcher.DispatchRaw(s.baseCtx, msg.Type, msg.Payload)
			c.reply(&dappReply{ID: msg.ID, Type: msg.Type, Payload: resp})
		}(msg)
	}
}

func (c *dappClient) reply(reply *dappReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		c.logger.Error("cannot encode dApp reply", zap.String("type", string(reply.Type)), zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
		c.logger.Debug("dropping reply to a closed socket", zap.String("type", string(reply.Type)))
	}
}

func (c *dappClient) writePump() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				c.conn.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
