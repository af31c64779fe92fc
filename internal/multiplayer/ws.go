package multiplayer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
)

// MaxMessageSize bounds inbound WebSocket frames. State messages are far smaller.
const MaxMessageSize = 4096

const writeTimeout = 5 * time.Second

// WSChannel is a Channel over a WebSocket connection.
type WSChannel struct {
	conn   *websocket.Conn
	in     chan Message
	out    chan Message
	done   chan struct{}
	once   sync.Once
	logger *log.Logger
}

// NewWSChannel starts the read and write loops for conn. The loops stop when
// ctx is canceled, the connection fails, or Close is called.
func NewWSChannel(ctx context.Context, conn *websocket.Conn, logger *log.Logger) *WSChannel {
	if logger == nil {
		logger = log.Default()
	}
	conn.SetReadLimit(MaxMessageSize)
	c := &WSChannel{
		conn:   conn,
		in:     make(chan Message, DefaultBufferSize),
		out:    make(chan Message, DefaultBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.readLoop(ctx)
	go c.writeLoop(ctx)
	return c
}

// Dial connects to a relay. An empty code creates a lobby, otherwise the
// lobby with that code is joined.
func Dial(ctx context.Context, relayURL, code string, logger *log.Logger) (*WSChannel, error) {
	target, err := lobbyURL(relayURL, code)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.Dial(ctx, target, nil) //nolint:bodyclose // handled by websocket
	if err != nil {
		return nil, fmt.Errorf("multiplayer: dial %s: %w", target, err)
	}
	return NewWSChannel(context.Background(), conn, logger), nil
}

// lobbyURL turns a relay base URL into its WebSocket endpoint.
func lobbyURL(relayURL, code string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("multiplayer: parse relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("multiplayer: unsupported relay scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	if code != "" {
		q.Set("code", strings.ToUpper(code))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send queues msg for writing.
func (c *WSChannel) Send(msg Message) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}
	offer(c.out, msg)
	return nil
}

// Inbound returns decoded messages from the peer.
func (c *WSChannel) Inbound() <-chan Message {
	return c.in
}

// Done is closed when the connection ends.
func (c *WSChannel) Done() <-chan struct{} {
	return c.done
}

// Close ends the connection. Safe to call multiple times.
func (c *WSChannel) Close() error {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // best effort
	})
	return nil
}

func (c *WSChannel) readLoop(ctx context.Context) {
	defer c.Close() //nolint:errcheck // always nil
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.logger.Debug("read failed", "err", err)
			}
			return
		}
		msg, err := Decode(data)
		if err != nil {
			c.logger.Warn("dropping malformed message", "err", err)
			continue
		}
		select {
		case c.in <- msg:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *WSChannel) writeLoop(ctx context.Context) {
	for {
		select {
		case msg := <-c.out:
			data, err := Encode(msg)
			if err != nil {
				c.logger.Warn("encode failed", "type", msg.Type, "err", err)
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.Debug("write failed", "err", err)
				c.Close() //nolint:errcheck // always nil
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
