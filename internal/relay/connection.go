package relay

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Config holds socket tuning knobs.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns the default socket configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Connection is one live socket. Send is buffered; the hub drops the
// connection instead of blocking when the buffer fills.
type Connection struct {
	ID   string
	Send chan []byte

	conn      *websocket.Conn
	server    *Server
	closeOnce sync.Once
	sendOnce  sync.Once

	ConnectedAt time.Time
}

func (c *Connection) closeSend() {
	c.sendOnce.Do(func() { close(c.Send) })
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writePump drains Send onto the socket and keeps the connection alive with
// pings.
func (c *Connection) writePump() {
	cfg := c.server.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("socket_id", c.ID).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("socket_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads client messages until the socket drops, then runs
// disconnect handling exactly once.
func (c *Connection) readPump() {
	cfg := c.server.config
	defer func() {
		binding, bound := c.server.hub.Unregister(c)
		c.close()
		if bound {
			c.server.handleDisconnect(binding)
		}
	}()

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("socket_id", c.ID).Msg("unexpected socket close")
			}
			break
		}
		c.server.handleClientMessage(c, message)
		c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}
