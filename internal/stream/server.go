package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves /health, /diagnostics, /config and /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.DiagnosticsSnapshot())
	})

	mux.HandleFunc("/config", h.handleConfig)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *Hub) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.configMessage())
	case http.MethodPost:
		var patch map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "malformed patch", http.StatusBadRequest)
			return
		}
		if _, err := h.Patch(patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, h.configMessage())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	id, sub := h.Subscribe(conn)
	defer h.Disconnect(id)

	initial, err := json.Marshal(frameMessage{Type: "frame", Frame: h.Snapshot(), ServerTime: time.Now().UnixMilli()})
	if err != nil {
		log.Printf("failed to marshal initial frame for %s: %v", id, err)
		return
	}
	if err := sub.send(initial); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", id, err)
			continue
		}

		switch msg.Type {
		case "config":
			if _, err := h.Patch(msg.Params); err != nil {
				data, _ := json.Marshal(errorMessage{Type: "error", Message: err.Error()})
				if sub.send(data) != nil {
					return
				}
			}
		case "reset":
			h.Reset()
		case "pause":
			h.SetPaused(true)
		case "resume":
			h.SetPaused(false)
		default:
			log.Printf("unknown message type %q from %s", msg.Type, id)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListenAndServe runs the simulation and the HTTP server until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	stop := make(chan struct{})
	go h.RunSimulation(stop)
	defer close(stop)

	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
