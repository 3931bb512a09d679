package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushServer upgrades one connection at a time and sends whatever frames the
// test feeds it.
type pushServer struct {
	server *httptest.Server

	mu   sync.Mutex
	conn *websocket.Conn
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{}
	upgrader := websocket.Upgrader{}
	ps.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.mu.Lock()
		ps.conn = conn
		ps.mu.Unlock()
		// Drain client frames until the connection drops.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ps.server.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.server.URL, "http")
}

func (ps *pushServer) push(t *testing.T, frame string) {
	t.Helper()
	require.Eventually(t, func() bool {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		return ps.conn != nil
	}, 2*time.Second, 10*time.Millisecond, "client never connected")

	ps.mu.Lock()
	defer ps.mu.Unlock()
	require.NoError(t, ps.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func startChannel(t *testing.T, ps *pushServer) *Channel {
	t.Helper()
	channel := NewChannel(ps.url(), 50*time.Millisecond, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		channel.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return channel
}

func TestChannelClassifiesAndLogsIncomingFrames(t *testing.T) {
	ps := newPushServer(t)
	channel := startChannel(t, ps)

	var mu sync.Mutex
	var received []IncomingMessage
	channel.OnMessage(func(msg IncomingMessage) {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	})

	ps.push(t, `{"event_name": "crud_event", "uuid": "a", "data": {"crud_type": "CREATE", "resource_type": "SUBMISSION", "resource_id": 1}}`)
	ps.push(t, `{"event_name": "git_pull_event", "uuid": "b", "data": {"files": ["hw1/main.ipynb"]}}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.IsType(t, &CrudMessage{}, received[0])
	assert.IsType(t, &GitPullMessage{}, received[1])

	log := channel.IncomingLog()
	require.Len(t, log, 2)
	// Log, subscribers and LastMessage all see the same instance.
	assert.Same(t, received[0], log[0])
	assert.Same(t, received[1], channel.LastMessage())
}

func TestChannelDropsUnknownAndMalformedFrames(t *testing.T) {
	ps := newPushServer(t)
	channel := startChannel(t, ps)

	ps.push(t, `{"event_name": "heartbeat", "uuid": "x", "data": {}}`)
	ps.push(t, `garbage`)
	ps.push(t, `{"event_name": "git_pull_event", "uuid": "keep", "data": {"files": []}}`)

	require.Eventually(t, func() bool {
		return channel.LastMessage() != nil
	}, 2*time.Second, 10*time.Millisecond)

	log := channel.IncomingLog()
	require.Len(t, log, 1)
	assert.Equal(t, "keep", log[0].UUID())
}

func TestChannelUnsubscribeStopsDelivery(t *testing.T) {
	ps := newPushServer(t)
	channel := startChannel(t, ps)

	var mu sync.Mutex
	var count int
	unsubscribe := channel.OnMessage(func(IncomingMessage) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ps.push(t, `{"event_name": "git_pull_event", "uuid": "1", "data": {"files": []}}`)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	unsubscribe()
	ps.push(t, `{"event_name": "git_pull_event", "uuid": "2", "data": {"files": []}}`)

	require.Eventually(t, func() bool {
		return len(channel.IncomingLog()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestChannelSendRecordsOutgoingLog(t *testing.T) {
	ps := newPushServer(t)
	channel := startChannel(t, ps)

	require.Eventually(t, func() bool {
		return channel.ReadyState() == StateOpen
	}, 2*time.Second, 10*time.Millisecond)

	message := NewOutgoingMessage(EventGitPull, map[string]bool{"accepted": true})
	require.NoError(t, channel.Send(message))

	log := channel.OutgoingLog()
	require.Len(t, log, 1)
	assert.Equal(t, message.UUID, log[0].UUID)
}

func TestChannelSendWhileDisconnected(t *testing.T) {
	channel := NewChannel("ws://127.0.0.1:1/ws", time.Second, time.Second, zerolog.Nop())

	err := channel.Send(NewOutgoingMessage(EventGitPull, nil))
	assert.ErrorIs(t, err, ErrNotConnected)
	// The log still records the attempt.
	assert.Len(t, channel.OutgoingLog(), 1)
}
