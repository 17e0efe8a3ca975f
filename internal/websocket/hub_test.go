package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s22a0058-ai/FYP/pkg/contracts/events"
)

type mockConn struct {
	closed chan struct{}
}

func newMockConn() *mockConn {
	return &mockConn{closed: make(chan struct{})}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	<-m.closed
	return 0, nil, assert.AnError
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error { return nil }
func (m *mockConn) SetReadLimit(limit int64)                        {}
func (m *mockConn) SetReadDeadline(t time.Time) error               { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error              { return nil }
func (m *mockConn) SetPongHandler(h func(string) error)             {}
func (m *mockConn) RemoteAddr() string                              { return "test:0" }

func (m *mockConn) Close() error {
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
	return nil
}

func receiveEnvelope(t *testing.T, c *Client) events.Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return events.Envelope{}
	}
}

func connect(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClientWithConnection(hub, newMockConn(), nil)
	client.Register()
	require.Eventually(t, func() bool { return hub.ClientCount() > 0 }, time.Second, 5*time.Millisecond)
	return client
}

func TestHubRegisterSendsWelcome(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := connect(t, hub)

	env := receiveEnvelope(t, client)
	assert.Equal(t, events.MessageTypeConnected, env.Type)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.Timestamp.IsZero())
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	a := connect(t, hub)
	b := NewClientWithConnection(hub, newMockConn(), nil)
	b.Register()
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	// Drain the welcome messages first.
	receiveEnvelope(t, a)
	receiveEnvelope(t, b)

	hub.Broadcast(events.NewEnvelope(events.MessageTypeDatasetRefreshed, events.DatasetRefreshedData{
		RecordCount: 42,
		Source:      "local:data.csv",
	}))

	for _, client := range []*Client{a, b} {
		env := receiveEnvelope(t, client)
		assert.Equal(t, events.MessageTypeDatasetRefreshed, env.Type)
	}
}

func TestHubUnregisterOnReadPumpExit(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	conn := newMockConn()
	client := NewClientWithConnection(hub, conn, nil)
	client.Register()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	go client.ReadPump()
	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()

	client := connect(t, hub)
	receiveEnvelope(t, client)

	hub.Stop()

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on stop")
	}
}

func TestHubReadPumpExitsAfterStop(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()

	conn := newMockConn()
	client := NewClientWithConnection(hub, conn, nil)
	client.Register()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.ReadPump()
		close(done)
	}()

	// Stop first so nothing drains the unregister channel, then let the
	// read pump exit. It must not block handing the client back.
	hub.Stop()
	conn.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump did not exit after hub stop")
	}
}

func TestHubRegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		NewClientWithConnection(hub, newMockConn(), nil).Register()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register blocked against a stopped hub")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubBroadcastDropsUnmarshalableData(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := connect(t, hub)
	receiveEnvelope(t, client)

	hub.Broadcast(events.NewEnvelope(events.MessageTypeDatasetRefreshed, func() {}))

	select {
	case <-client.send:
		t.Fatal("unmarshalable event should not be delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
