package stream

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/sim"
)

var dropParams = config.Params{Gravity: 100, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}}

func newTestHub() *Hub {
	store := config.NewStore(dropParams)
	s := sim.New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, dropParams)
	return NewHub(s, store, 0.02, 30)
}

type envelope struct {
	Type    string        `json:"type"`
	Frame   dynamo.Frame  `json:"frame"`
	Params  config.Params `json:"params"`
	Message string        `json:"message"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg envelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestAdvance(t *testing.T) {
	hub := newTestHub()

	frame := hub.Advance(0.125)
	if frame.Tick != 6 {
		t.Errorf("expected tick 6, got %d", frame.Tick)
	}
	if len(frame.Walls) != 4 || len(frame.Particles) != 1 {
		t.Errorf("unexpected frame shape: %+v", frame)
	}

	hub.SetPaused(true)
	if frame := hub.Advance(1); frame.Tick != 6 {
		t.Errorf("expected no ticks while paused, got %d", frame.Tick)
	}
	hub.SetPaused(false)

	hub.Reset()
	if hub.Snapshot().Tick != 0 {
		t.Error("expected reset to rewind the simulation")
	}
}

func TestPatch(t *testing.T) {
	hub := newTestHub()

	params, err := hub.Patch(map[string]float64{"gravity": 50, "half_height": 300})
	if err != nil {
		t.Fatal(err)
	}
	if params.Gravity != 50 || params.HalfExtents[1] != 300 {
		t.Errorf("patch not applied: %+v", params)
	}

	v := hub.Store().Version()
	if _, err := hub.Patch(map[string]float64{"gravity": 1, "mass": 2}); err == nil {
		t.Error("expected error for unknown param")
	}
	if hub.Store().Version() != v || hub.Store().Snapshot().Gravity != 50 {
		t.Error("a rejected patch must not write the store")
	}
}

func TestHTTPEndpoints(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health returned %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/config", "application/json", bytes.NewBufferString(`{"radius": 20}`))
	if err != nil {
		t.Fatal(err)
	}
	var cfg envelope
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cfg.Params.ParticleRadius != 20 {
		t.Errorf("expected radius 20, got %+v", cfg.Params)
	}

	resp, err = http.Post(srv.URL+"/config", "application/json", bytes.NewBufferString(`{"spin": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown param, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/config", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/diagnostics")
	if err != nil {
		t.Fatal(err)
	}
	var d Diagnostics
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if d.Status != "ok" || d.TickRate != 30 {
		t.Errorf("unexpected diagnostics %+v", d)
	}
}

func TestWebsocketStream(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)

	initial := read(t, conn)
	if initial.Type != "frame" || initial.Frame.Tick != 0 || len(initial.Frame.Walls) != 4 {
		t.Fatalf("unexpected initial message %+v", initial)
	}

	if err := conn.WriteJSON(map[string]any{"type": "config", "params": map[string]float64{"half_height": 200}}); err != nil {
		t.Fatal(err)
	}
	ack := read(t, conn)
	if ack.Type != "config" || ack.Params.HalfExtents[1] != 200 {
		t.Fatalf("expected config broadcast, got %+v", ack)
	}

	hub.Advance(0.02)
	msg := read(t, conn)
	if msg.Type != "frame" || msg.Frame.Tick != 1 {
		t.Fatalf("expected frame at tick 1, got %+v", msg)
	}
	for _, w := range msg.Frame.Walls {
		if w.Location == "bottom" && w.Position[1] != -100 {
			t.Errorf("expected bottom wall relaid to -100, got %v", w.Position)
		}
	}

	if err := conn.WriteJSON(map[string]any{"type": "config", "params": map[string]float64{"bogus": 1}}); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, conn); msg.Type != "error" {
		t.Errorf("expected error reply, got %+v", msg)
	}
}

func TestDisconnect(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)
	if hub.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Subscribers())
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Subscribers() != 0 {
		t.Error("expected subscriber removed after close")
	}
}
