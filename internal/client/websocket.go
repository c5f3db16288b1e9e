// ABOUTME: WebSocket transport for the listener protocol
// ABOUTME: Dials the server and adapts gorilla connections to the Conn interface
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned by operations on a closed transport
var ErrConnClosed = errors.New("connection closed")

// Dialer opens transports
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Conn is one open transport. ReadMessage is called from a single reader
// goroutine; WriteText and Close from the manager loop.
type Conn interface {
	ReadMessage() (MessageType, []byte, error)
	WriteText(text string) error
	Close() error
}

// ServerURL builds the websocket URL for a host:port and path
func ServerURL(addr, path string) string {
	if path == "" {
		path = "/"
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: path}
	return u.String()
}

// WebsocketDialer dials with gorilla/websocket
type WebsocketDialer struct {
	Dialer *websocket.Dialer
	Header http.Header

	// WriteTimeout bounds each text write
	WriteTimeout time.Duration
}

// NewWebsocketDialer creates a dialer with a handshake timeout
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 5 * time.Second,
		},
		WriteTimeout: 2 * time.Second,
	}
}

// Dial establishes a WebSocket connection
func (d *WebsocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, rawURL, d.Header)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	return &wsConn{conn: conn, writeTimeout: d.WriteTimeout}, nil
}

type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func (c *wsConn) ReadMessage() (MessageType, []byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, nil, err
		}

		switch messageType {
		case websocket.BinaryMessage:
			return BinaryMessage, data, nil
		case websocket.TextMessage:
			return TextMessage, data, nil
		}
	}
}

func (c *wsConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	c.closed = true
	return c.conn.Close()
}
