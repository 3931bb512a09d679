package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eduhelx/student-panel/pkg/events"
)

type ReadyState int32

const (
	StateConnecting ReadyState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ReadyState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var ErrNotConnected = errors.New("websocket is not connected")

// Channel owns the single push socket for the session. It classifies inbound
// frames, keeps append-only diagnostic logs, tracks the most recent incoming
// message, and fans messages out through an emitter. It never mutates
// assignment state itself.
type Channel struct {
	url              string
	reconnectDelay   time.Duration
	handshakeTimeout time.Duration
	logger           zerolog.Logger

	emitter *events.Emitter[IncomingMessage]

	mu          sync.Mutex
	conn        *websocket.Conn
	state       ReadyState
	incomingLog []IncomingMessage
	outgoingLog []OutgoingMessage
	last        IncomingMessage
}

func NewChannel(url string, reconnectDelay, handshakeTimeout time.Duration, logger zerolog.Logger) *Channel {
	return &Channel{
		url:              url,
		reconnectDelay:   reconnectDelay,
		handshakeTimeout: handshakeTimeout,
		logger:           logger,
		emitter:          events.NewEmitter[IncomingMessage](),
		state:            StateClosed,
	}
}

// Run dials and pumps the socket until ctx is cancelled, redialling after
// reconnectDelay whenever the connection drops. Subscriptions survive
// reconnects; the event surface does not change.
func (c *Channel) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			c.setState(StateClosed)
			return
		}

		c.setState(StateConnecting)
		dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.setState(StateClosed)
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn().Err(err).Str("url", c.url).Msg("Websocket dial failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.reconnectDelay):
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.state = StateOpen
		c.mu.Unlock()
		c.logger.Info().Str("url", c.url).Msg("Websocket connected")

		c.readPump(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.state = StateClosed
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		c.logger.Warn().Msg("Websocket disconnected, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Channel) readPump(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.setState(StateClosing)
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("Websocket read failed")
			}
			return
		}

		message, err := Classify(raw)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Dropping unparseable websocket frame")
			continue
		}
		if message == nil {
			c.logger.Warn().
				Str("frame", string(raw)).
				Msg("Unimplemented websocket message type")
			continue
		}

		c.mu.Lock()
		c.incomingLog = append(c.incomingLog, message)
		c.last = message
		c.mu.Unlock()

		c.emitter.Emit(message)
	}
}

// Send serializes the message and transmits it. The outgoing log records the
// message whether or not the write succeeds; there is no acknowledgement
// tracking.
func (c *Channel) Send(message OutgoingMessage) error {
	c.mu.Lock()
	conn := c.conn
	c.outgoingLog = append(c.outgoingLog, message)
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(message)
}

// OnMessage subscribes to every classified incoming message, in arrival
// order, and returns an unsubscribe handle.
func (c *Channel) OnMessage(fn func(IncomingMessage)) func() {
	return c.emitter.Subscribe(fn)
}

func (c *Channel) ReadyState() ReadyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastMessage is the most recent classified incoming message. Consumers
// change-detect by identity so the same message is never processed twice.
func (c *Channel) LastMessage() IncomingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Channel) IncomingLog() []IncomingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]IncomingMessage(nil), c.incomingLog...)
}

func (c *Channel) OutgoingLog() []OutgoingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]OutgoingMessage(nil), c.outgoingLog...)
}

func (c *Channel) setState(state ReadyState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
