package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/Nightwood/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server is the spectator HTTP endpoint.
type Server struct {
	Hub    *Hub
	addr   string
	http   *http.Server
	cancel context.CancelFunc
}

// NewServer builds a server from the spectate config section.
func NewServer(cfg config.SpectateConfig) *Server {
	return &Server{
		Hub:  NewHub(cfg.MaxConnsPerIP, cfg.MaxConns),
		addr: cfg.Addr,
	}
}

// Handler returns the routes: /ws for the frame stream and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if s.Hub.Closed() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		if !s.Hub.acquire(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.Hub.release(ip)
			log.Printf("spectate: upgrade error: %v", err)
			return
		}

		client := newClient(s.Hub, conn, ip)
		if !s.Hub.join(client) {
			s.Hub.release(ip)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"viewers": s.Hub.ClientCount()})
	})

	return mux
}

// Start runs the hub and begins listening in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.Hub.Run(ctx)

	s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("spectate: serving on %s", ln.Addr())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("spectate: serve: %v", err)
		}
	}()
	return nil
}

// Shutdown stops accepting viewers and closes the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
