package bridge

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &v))
	return v
}

func TestHelloAndBroadcast(t *testing.T) {
	s := NewStatusServer()
	srv := httptest.NewServer(s)
	defer srv.Close()
	defer s.Stop()

	conn := dial(t, srv)

	hello := readJSON(t, conn)
	assert.Equal(t, "connected", hello["type"])
	assert.Equal(t, 1, s.ConnectionCount())

	s.Broadcast(map[string]interface{}{"type": "summary", "uploaded": 2, "failed": 1})

	got := readJSON(t, conn)
	assert.Equal(t, "summary", got["type"])
	assert.EqualValues(t, 2, got["uploaded"])
	assert.EqualValues(t, 1, got["failed"])
}

func TestBroadcastReachesAllClients(t *testing.T) {
	s := NewStatusServer()
	srv := httptest.NewServer(s)
	defer srv.Close()
	defer s.Stop()

	a := dial(t, srv)
	b := dial(t, srv)
	readJSON(t, a) // hello
	readJSON(t, b)

	s.Broadcast(map[string]string{"type": "file", "name": "week1.csv"})

	for _, conn := range []*websocket.Conn{a, b} {
		got := readJSON(t, conn)
		assert.Equal(t, "file", got["type"])
		assert.Equal(t, "week1.csv", got["name"])
	}
}

func TestStopDisconnectsClients(t *testing.T) {
	s := NewStatusServer()
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	readJSON(t, conn) // hello

	s.Stop()

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, s.ConnectionCount())
}
