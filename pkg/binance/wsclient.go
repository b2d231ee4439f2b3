package binance

import (
	"context"
	"errors"
	"sync"
	"time"

	"coinwatch/internal/stream"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxMessageSize = 1 << 20

// WSTransport opens one raw Binance stream per call. It implements
// stream.Transport.
type WSTransport struct {
	dialer       *websocket.Dialer
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewWSTransport creates a transport. A zero pingInterval disables client
// pings and read deadlines.
func NewWSTransport(handshakeTimeout, pingInterval time.Duration, logger *zap.Logger) *WSTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSTransport{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Open dials url in the background and returns immediately.
func (t *WSTransport) Open(url string, h stream.Handler) stream.Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConn{url: url, handler: h, cancel: cancel, logger: t.logger}
	go c.run(ctx, t.dialer, t.pingInterval)
	return c
}

type wsConn struct {
	url     string
	handler stream.Handler
	cancel  context.CancelFunc
	logger  *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (c *wsConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close stops the reader and closes the socket.
func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

func (c *wsConn) run(ctx context.Context, dialer *websocket.Dialer, pingInterval time.Duration) {
	// Attempt to connect to the WebSocket server
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if !c.isClosed() {
			c.logger.Warn("WebSocket dial failed", zap.String("url", c.url), zap.Error(err))
			c.handler.OnError(err)
			c.handler.OnClose()
		}
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Debug("WebSocket connected", zap.String("url", c.url))
	c.handler.OnOpen()

	conn.SetReadLimit(maxMessageSize)
	if pingInterval > 0 {
		readTimeout := 2 * pingInterval
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		go c.pingLoop(ctx, conn, pingInterval)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !c.isClosed() {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.logger.Warn("WebSocket read error", zap.String("url", c.url), zap.Error(err))
					c.handler.OnError(err)
				}
			}
			break
		}
		if pingInterval > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
		}
		if c.isClosed() {
			break
		}
		c.handler.OnMessage(msg)
	}

	c.cancel()
	_ = conn.Close()
	if !c.isClosed() {
		c.handler.OnClose()
	}
}

func (c *wsConn) pingLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval))
			if err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Debug("WebSocket ping failed", zap.String("url", c.url), zap.Error(err))
				}
				return
			}
		}
	}
}
