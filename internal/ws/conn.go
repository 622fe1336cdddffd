package ws

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zairysbigtae/privdm-backend/internal/auth"
	"github.com/zairysbigtae/privdm-backend/internal/command"
)

const (
	maxMessageSize = 1 << 20
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	sendBuffer     = 64
)

var errConnClosed = errors.New("ws: connection closed")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one upgraded connection. It adapts gorilla's frame API to command.Transport:
// readPump feeds inbound text frames into a channel so a ReadLine abandoned on a
// prompt timeout does not poison the connection's read deadline.
type Client struct {
	conn    *websocket.Conn
	log     zerolog.Logger
	cancel  context.CancelFunc
	inbound chan string
	send    chan string
	written chan struct{}
	stop    chan struct{}
}

func newClient(conn *websocket.Conn, logger zerolog.Logger, cancel context.CancelFunc) *Client {
	return &Client{
		conn:    conn,
		log:     logger,
		cancel:  cancel,
		inbound: make(chan string),
		send:    make(chan string, sendBuffer),
		written: make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

// Serve upgrades the request and runs one command session over it until the peer quits,
// disconnects or the hub shuts down.
func Serve(h *Hub, router *command.Router, promptTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		logCtx := log.With().Str("conn_id", uuid.NewString()).Str("remote", c.ClientIP())
		if sub := auth.Subject(c); sub != "" {
			logCtx = logCtx.Str("subject", sub)
		}
		logger := logCtx.Logger()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		client := newClient(conn, logger, cancel)
		h.register <- client
		defer func() { h.unregister <- client }()

		go client.writePump()
		go client.readPump()

		logger.Info().Msg("command channel opened")
		err = command.Serve(ctx, client, command.NewSession(router, logger), promptTimeout)
		client.finish()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errConnClosed) {
			logger.Warn().Err(err).Msg("command channel ended with error")
			return
		}
		logger.Info().Msg("command channel closed")
	}
}

func (c *Client) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.inbound:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) WriteLine(ctx context.Context, line string) error {
	select {
	case c.send <- line:
		return nil
	case <-c.written:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish flushes queued replies, sends a close frame and releases the socket.
// It must be called once, after the session stopped writing.
func (c *Client) finish() {
	close(c.send)
	<-c.written
	close(c.stop)
	_ = c.conn.Close()
}

func (c *Client) readPump() {
	defer close(c.inbound)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		select {
		case c.inbound <- string(data):
		case <-c.stop:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.written)
	}()
	for {
		select {
		case line, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
