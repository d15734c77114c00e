package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	writeTimeout     = 10 * time.Second
	pingInterval     = 30 * time.Second
	subscribeBacklog = 256
)

// StateFunc returns the application state to expose on /state. The result
// is passed through Snapshot before serialization.
type StateFunc func() any

// Server is the inspector HTTP surface. Routes:
//
//	GET /state    JSON snapshot of the application state
//	GET /events   WebSocket stream of scheduler and reconciler events
//	GET /metrics  Prometheus exposition
type Server struct {
	feed     *Feed
	state    StateFunc
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStateSource sets the function backing /state.
func WithStateSource(fn StateFunc) ServerOption {
	return func(s *Server) { s.state = fn }
}

// WithGatherer sets the registry backing /metrics (default: the global
// Prometheus gatherer).
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) { s.gatherer = g }
}

// WithServerLogger sets the diagnostics logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an inspector server around a feed.
func NewServer(feed *Feed, opts ...ServerOption) *Server {
	s := &Server{
		feed:     feed,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The inspector is a development tool bound to loopback.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the inspector's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/state", s.handleState)
	r.Get("/events", s.handleEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var state any
	if s.state != nil {
		state = Snapshot(s.state())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"state": state}); err != nil {
		s.logger.Error("state encode error", "error", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade error", "error", err)
		return
	}

	id, events := s.feed.Subscribe(subscribeBacklog)
	s.logger.Info("inspector client connected", "client", id)

	go s.writePump(id, conn, events)
	go s.readPump(id, conn)
}

// writePump serializes feed events onto the connection and keeps it alive
// with pings. It owns all writes; it exits when the feed closes the
// subscription or a write fails.
func (s *Server) writePump(id string, conn *websocket.Conn, events <-chan Event) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Error("write error", "client", id, "error", err)
				s.feed.Unsubscribe(id)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.feed.Unsubscribe(id)
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed, and tears
// the subscription down when the client goes away.
func (s *Server) readPump(id string, conn *websocket.Conn) {
	defer s.feed.Unsubscribe(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "client", id, "error", err)
			}
			return
		}
	}
}
