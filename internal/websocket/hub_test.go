package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient has a send buffer but no connection.
func fakeClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	a, b := fakeClient(hub), fakeClient(hub)
	hub.register(a)
	hub.register(b)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}

	hub.unregister(a)
	hub.unregister(a)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	hub.unregister(b)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}
}

func TestNotify(t *testing.T) {
	hub := NewHub(testLogger())
	c := fakeClient(hub)
	hub.register(c)
	defer hub.unregister(c)

	hub.Notify(EventUpdated, 42)

	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != EventUpdated || got.EventID != 42 {
			t.Errorf("got = %+v, want type %s event 42", got, EventUpdated)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestBroadcastFullBufferDrops(t *testing.T) {
	hub := NewHub(testLogger())
	c := fakeClient(hub)
	hub.register(c)
	defer hub.unregister(c)

	for i := 0; i < sendBufferSize+3; i++ {
		hub.Notify(EventCreated, int64(i))
	}

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			c := fakeClient(hub)
			hub.register(c)
			hub.Notify(EventDeleted, id)
			hub.unregister(c)
		}(int64(i))
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
}

func TestHandlerDeliversNotifications(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(Handler(hub, nil, testLogger()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Notify(EventCreated, 7)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EventCreated || got.EventID != 7 {
		t.Errorf("got = %+v, want type %s event 7", got, EventCreated)
	}

	conn.Close(ws.StatusNormalClosure, "")
}
