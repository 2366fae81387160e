package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmapper/internal/engine"
	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/hub"
)

type fakeEngine struct {
	mu      sync.Mutex
	set     int
	saves   int
	saveErr error
}

func (f *fakeEngine) SwitchSet(_ context.Context, set int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = set
	return nil
}

func (f *fakeEngine) Save(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return f.saveErr
}

func (f *fakeEngine) Snapshot() engine.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return engine.Snapshot{
		Profile:   "pad",
		ActiveSet: f.set,
		DPads: []engine.DPadState{
			{Index: 1, Name: "D-pad 1", Mode: "eight-way", Direction: "up"},
		},
	}
}

type fixedInput gamepad.DeviceInfo

func (f fixedInput) Info() gamepad.DeviceInfo { return gamepad.DeviceInfo(f) }

func newTestServer(t *testing.T, e *fakeEngine) (*Server, *hub.Hub) {
	t.Helper()
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	b := hub.NewBroadcaster(h)
	b.SetSource(e)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "padmapper_test_total", Help: "test"}))

	files := fstest.MapFS{
		"index.html": {Data: []byte("<!doctype html>\n<html>\n  <!-- monitor -->\n  <body>\n    <p>pad</p>\n  </body>\n</html>\n")},
	}
	input := fixedInput{Connected: true, Name: "Xbox Wireless Controller", ControllerType: "xbox", Hats: 1, Source: "sdl"}
	return New(h, b, e, input, reg, files, "127.0.0.1:0"), h
}

func TestStateEndpoint(t *testing.T) {
	e := &fakeEngine{set: 2}
	s, _ := newTestServer(t, e)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Input.Connected)
	assert.Equal(t, "xbox", resp.Input.ControllerType)
	assert.Equal(t, 2, resp.State.ActiveSet)
	require.Len(t, resp.State.DPads, 1)
	assert.Equal(t, "eight-way", resp.State.DPads[0].Mode)
	assert.Equal(t, 0, resp.Clients)
}

func TestSaveEndpoint(t *testing.T) {
	e := &fakeEngine{}
	s, _ := newTestServer(t, e)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/save", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())

	e.saveErr = errors.New("disk full")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"disk full"}`, rec.Body.String())
	assert.Equal(t, 2, e.saves)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeEngine{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "padmapper_test_total 0")
}

func TestFrontendIsMinified(t *testing.T) {
	s, _ := newTestServer(t, &fakeEngine{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "pad")
	assert.NotContains(t, body, "monitor")
	assert.NotContains(t, body, "\n    ")
}

func TestWebSocketSession(t *testing.T) {
	e := &fakeEngine{}
	s, h := newTestServer(t, e)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	read := func() hub.WSMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg hub.WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, "full", first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, "pad", first.State.Profile)
	assert.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "switch_set", Set: 4}))
	ack := read()
	assert.Equal(t, "ack", ack.Type)
	assert.Equal(t, "switch_set", ack.Command)
	assert.Equal(t, 4, e.Snapshot().ActiveSet)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "reboot"}))
	nack := read()
	assert.Equal(t, "error", nack.Type)
	assert.Equal(t, "unknown command", nack.Error)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, time.Millisecond)
}
