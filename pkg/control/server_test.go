package control

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrofx/internal/logger"
	"retrofx/pkg/config"
	"retrofx/pkg/effects"
)

func newTestServer(t *testing.T) (*Server, *config.Settings, *httptest.Server) {
	t.Helper()
	log := logger.NewLogger("error")
	log.SetOutput(io.Discard)

	settings := config.NewSettings(config.DefaultEffects())
	srv := NewServer(settings, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return srv, settings, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func findEffect(st *State, kind effects.Kind) (EffectState, bool) {
	for _, e := range st.Effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return EffectState{}, false
}

func TestGetSettings(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, config.KindNone, st.Selected)
	require.Len(t, st.Effects, len(config.DefaultEffects()))

	pix, ok := findEffect(&st, effects.KindPixelize)
	require.True(t, ok)
	assert.True(t, pix.Enabled)
	assert.False(t, pix.Exclusive)
	require.Len(t, pix.Parameters, 1)
	assert.Equal(t, "pixel_size", pix.Parameters[0].Name)
	assert.Equal(t, 4.0, pix.Parameters[0].Value)

	post, err := http.Post(ts.URL+"/settings", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestWebsocketControl(t *testing.T) {
	_, settings, ts := newTestServer(t)
	conn := dial(t, ts)

	initial := readMessage(t, conn)
	require.NotNil(t, initial.State)
	assert.Equal(t, config.KindNone, initial.State.Selected)

	// rejected values produce an error and leave settings alone
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "set", "kind": "crt", "param": "color_num", "value": 1}))
	msg := readMessage(t, conn)
	assert.Contains(t, msg.Error, "invalid parameter")
	assert.Nil(t, msg.State)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "select", "kind": "crt"}))
	msg = readMessage(t, conn)
	require.NotNil(t, msg.State)
	assert.Equal(t, effects.KindCRT, msg.State.Selected)
	assert.Equal(t, effects.KindCRT, settings.Selected())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "set", "kind": "crt", "param": "pixel_size", "value": 16}))
	msg = readMessage(t, conn)
	require.NotNil(t, msg.State)
	crt, _ := findEffect(msg.State, effects.KindCRT)
	assert.Equal(t, 16.0, crt.Parameters[0].Value)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "enable", "kind": "rgb_shift", "enabled": true}))
	msg = readMessage(t, conn)
	require.NotNil(t, msg.State)
	shift, _ := findEffect(msg.State, effects.KindRGBShift)
	assert.True(t, shift.Enabled)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "get"}))
	msg = readMessage(t, conn)
	require.NotNil(t, msg.State)
	assert.Equal(t, effects.KindCRT, msg.State.Selected)
}

func TestWebsocketBadRequests(t *testing.T) {
	_, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Contains(t, readMessage(t, conn).Error, "malformed request")

	// truncated and empty messages keep the connection open
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"set"`)))
	assert.Contains(t, readMessage(t, conn).Error, "malformed request")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, nil))
	assert.Contains(t, readMessage(t, conn).Error, "malformed request")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "explode"}))
	assert.Contains(t, readMessage(t, conn).Error, "unknown op")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "enable", "kind": "crt"}))
	assert.Contains(t, readMessage(t, conn).Error, "missing enabled")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "select", "kind": "bloom"}))
	assert.Contains(t, readMessage(t, conn).Error, "unknown effect")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"op": "get"}))
	assert.NotNil(t, readMessage(t, conn).State)
}

func TestChangesArePushedToAllClients(t *testing.T) {
	_, settings, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	readMessage(t, a)
	readMessage(t, b)

	require.NoError(t, settings.SetEnabled(effects.KindPixelize, false))

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		require.NotNil(t, msg.State)
		pix, _ := findEffect(msg.State, effects.KindPixelize)
		assert.False(t, pix.Enabled)
	}
}
