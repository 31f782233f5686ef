package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/sim"
)

const (
	writeWait       = 10 * time.Second
	DefaultTickRate = 30
)

type frameMessage struct {
	Type       string       `json:"type"`
	Frame      dynamo.Frame `json:"frame"`
	ServerTime int64        `json:"serverTime"`
}

type configMessage struct {
	Type    string        `json:"type"`
	Params  config.Params `json:"params"`
	Version uint64        `json:"version"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type clientMessage struct {
	Type   string             `json:"type"`
	Params map[string]float64 `json:"params"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns one simulation and fans its frames out to websocket
// subscribers. Parameter patches from any subscriber or from HTTP go into
// the shared store and take effect on the next tick.
type Hub struct {
	mu       sync.Mutex
	sim      *sim.Simulator
	clock    *sim.FixedClock
	store    *config.Store
	tickRate int

	subMu       sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
}

// NewHub serves s, ticking at dt and broadcasting tickRate frames a second.
func NewHub(s *sim.Simulator, store *config.Store, dt float64, tickRate int) *Hub {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Hub{
		sim:         s,
		clock:       sim.NewFixedClock(dt),
		store:       store,
		tickRate:    tickRate,
		subscribers: make(map[string]*subscriber),
	}
}

func (h *Hub) Store() *config.Store { return h.store }

// Subscribe registers conn and returns its id.
func (h *Hub) Subscribe(conn *websocket.Conn) (string, *subscriber) {
	id := fmt.Sprintf("viewer-%d", h.nextID.Add(1))
	sub := &subscriber{conn: conn}

	h.subMu.Lock()
	h.subscribers[id] = sub
	h.subMu.Unlock()
	return id, sub
}

func (h *Hub) Disconnect(id string) {
	h.subMu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.subMu.Unlock()

	if ok {
		sub.conn.Close()
	}
}

func (h *Hub) Subscribers() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subscribers)
}

// Advance runs the ticks due after frameDt seconds, relays the walls once
// and broadcasts the resulting frame.
func (h *Hub) Advance(frameDt float64) dynamo.Frame {
	h.mu.Lock()
	n := h.clock.Advance(frameDt)
	for i := 0; i < n; i++ {
		h.sim.Tick(h.store.Snapshot(), h.clock.Step())
	}
	h.sim.Frame(h.store.Snapshot())
	frame := h.sim.Snapshot()
	h.mu.Unlock()

	h.broadcast(frameMessage{Type: "frame", Frame: frame, ServerTime: time.Now().UnixMilli()})
	return frame
}

// Snapshot returns the current frame without advancing.
func (h *Hub) Snapshot() dynamo.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sim.Snapshot()
}

// Patch validates every named value, then applies them in a single store
// write and tells every subscriber about the new params.
func (h *Hub) Patch(values map[string]float64) (config.Params, error) {
	var scratch config.Params
	for name, v := range values {
		if err := scratch.SetParam(name, v); err != nil {
			return h.store.Snapshot(), err
		}
	}

	params := h.store.Update(func(p *config.Params) {
		for name, v := range values {
			_ = p.SetParam(name, v)
		}
	})
	h.broadcast(h.configMessage())
	return params, nil
}

func (h *Hub) configMessage() configMessage {
	return configMessage{Type: "config", Params: h.store.Snapshot(), Version: h.store.Version()}
}

func (h *Hub) Reset() {
	h.mu.Lock()
	h.sim.Reset()
	h.clock.Reset()
	h.mu.Unlock()
}

func (h *Hub) SetPaused(paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if paused {
		h.clock.Pause()
	} else {
		h.clock.Resume()
	}
}

func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal broadcast: %v", err)
		return
	}

	h.subMu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.subMu.Unlock()

	for id, sub := range subs {
		if err := sub.send(data); err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// RunSimulation advances on a ticker until stop is closed.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(h.tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.tickRate)
			}
			last = now
			h.Advance(dt)
		}
	}
}

type Diagnostics struct {
	Status      string  `json:"status"`
	ServerTime  int64   `json:"serverTime"`
	Subscribers int     `json:"subscribers"`
	Tick        uint64  `json:"tick"`
	SimTime     float64 `json:"simTime"`
	Skipped     int     `json:"skipped"`
	TickRate    int     `json:"tickRate"`
	Version     uint64  `json:"configVersion"`
}

func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	d := Diagnostics{
		Status:   "ok",
		Tick:     h.sim.Ticks(),
		SimTime:  h.sim.Time(),
		Skipped:  h.sim.Skipped(),
		TickRate: h.tickRate,
	}
	h.mu.Unlock()

	d.ServerTime = time.Now().UnixMilli()
	d.Subscribers = h.Subscribers()
	d.Version = h.store.Version()
	return d
}
