// Package control exposes the live effect settings over HTTP and websocket.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"retrofx/internal/logger"
	"retrofx/pkg/config"
	"retrofx/pkg/effects"
)

// Ops accepted on the websocket
const (
	OpGet    = "get"
	OpSet    = "set"
	OpEnable = "enable"
	OpSelect = "select"
)

// Request is one client command
type Request struct {
	Op      string   `json:"op"`
	Kind    string   `json:"kind,omitempty"`
	Param   string   `json:"param,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// EffectState is the public view of one descriptor
type EffectState struct {
	Kind       effects.Kind        `json:"kind"`
	Enabled    bool                `json:"enabled"`
	Exclusive  bool                `json:"exclusive"`
	Parameters []effects.Parameter `json:"parameters"`
}

// State is the full settings snapshot pushed to clients
type State struct {
	Selected effects.Kind  `json:"selected"`
	Effects  []EffectState `json:"effects"`
}

// Message is what the server sends: either a state or an error
type Message struct {
	State *State `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Server serves GET /settings and the /ws control socket
type Server struct {
	settings    *config.Settings
	logger      *logger.Logger
	upgrader    websocket.Upgrader
	unsubscribe func()

	mu      sync.Mutex
	clients map[*client]struct{}
	http    *http.Server
}

// NewServer creates a server bound to settings. Every settings change is
// pushed to all connected clients.
func NewServer(settings *config.Settings, log *logger.Logger) *Server {
	s := &Server{
		settings: settings,
		logger:   log,
		clients:  make(map[*client]struct{}),
	}
	s.unsubscribe = settings.Subscribe(config.ObserverFunc(func(config.Change) {
		s.broadcast(Message{State: s.state()})
	}))
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe blocks serving on addr until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv := s.http
	s.mu.Unlock()

	s.logger.Infof("control server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control server: %w", err)
	}
	return nil
}

// Shutdown stops the listener, closes every client and detaches from the settings
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()

	s.mu.Lock()
	srv := s.http
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) state() *State {
	st := &State{Selected: s.settings.Selected()}
	for _, d := range s.settings.Snapshot() {
		st.Effects = append(st.Effects, EffectState{
			Kind:       d.Kind(),
			Enabled:    d.Enabled,
			Exclusive:  config.Exclusive(d.Kind()),
			Parameters: d.Effect.Parameters(),
		})
	}
	return st
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.state()); err != nil {
		s.logger.Warnf("failed to write settings: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debugf("control client %s connected", conn.RemoteAddr())

	done := make(chan struct{})
	go s.writeLoop(c, done)

	c.send <- Message{State: s.state()}
	s.readLoop(c)

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	close(done)
	conn.Close()
	s.logger.Debugf("control client %s disconnected", conn.RemoteAddr())
}

func (s *Server) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(c, Message{Error: "malformed request: " + err.Error()})
			continue
		}

		if err := s.apply(c, req); err != nil {
			s.reply(c, Message{Error: err.Error()})
		}
	}
}

func (s *Server) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				s.logger.Debugf("control client write failed: %v", err)
				c.conn.Close()
				return
			}
		}
	}
}

// reply queues msg for one client, dropping it if the client is not keeping up
func (s *Server) reply(c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		s.logger.Warnf("control client %s is slow, dropping message", c.conn.RemoteAddr())
	}
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.reply(c, msg)
	}
}

// apply executes req against the settings. Mutations reach the clients
// through the settings observer.
func (s *Server) apply(c *client, req Request) error {
	kind := effects.Kind(req.Kind)

	switch req.Op {
	case OpGet:
		s.reply(c, Message{State: s.state()})
		return nil
	case OpSelect:
		if kind == "" {
			kind = config.KindNone
		}
		return s.settings.Select(kind)
	case OpEnable:
		if req.Enabled == nil {
			return errors.New("enable: missing enabled")
		}
		return s.settings.SetEnabled(kind, *req.Enabled)
	case OpSet:
		if req.Param == "" || req.Value == nil {
			return errors.New("set: missing param or value")
		}
		return s.settings.SetParameter(kind, req.Param, *req.Value)
	default:
		return fmt.Errorf("unknown op %q", req.Op)
	}
}
