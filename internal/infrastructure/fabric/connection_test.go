package fabric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var connTestUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialConnection upgrades one server-side Connection and hands it to serve
// on the handler goroutine, returning the client side of the socket.
func dialConnection(t *testing.T, serve func(*Connection)) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := connTestUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection("", "", ws)
		conn.Start()
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestConnectionCloseFlushesQueuedFrames(t *testing.T) {
	ws := dialConnection(t, func(c *Connection) {
		_ = c.Send([]byte(`{"type":"error","message":"bus down"}`))
		c.Close(4002, "join failed")
	})

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err, "queued frame must be delivered before the close frame")
	assert.Contains(t, string(data), "bus down")

	_, _, err = ws.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4002, closeErr.Code)
	assert.Equal(t, "join failed", closeErr.Text)
}

func TestConnectionSendConcurrentWithClose(t *testing.T) {
	done := make(chan struct{})
	ws := dialConnection(t, func(c *Connection) {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					_ = c.Send([]byte(`{"type":"tick"}`))
				}
			}()
		}
		c.Close(websocket.CloseNormalClosure, "")
		wg.Wait()
	})

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("senders did not finish")
	}
}

func TestConnectionSendAfterCloseDoesNotPanic(t *testing.T) {
	ready := make(chan *Connection, 1)
	ws := dialConnection(t, func(c *Connection) {
		ready <- c
	})

	conn := <-ready
	conn.Close(websocket.CloseNormalClosure, "")

	// Give the closed signal a moment to win every Send select.
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 200; i++ {
		_ = conn.Send([]byte(`{}`))
	}

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
