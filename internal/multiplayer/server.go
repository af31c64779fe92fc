package multiplayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
)

// Server exposes a Coordinator over HTTP: /ws upgrades to a WebSocket that
// creates a lobby, or joins one when a code query parameter is given, and
// /health reports coordinator stats as JSON.
type Server struct {
	coord          *Coordinator
	logger         *log.Logger
	originPatterns []string
}

// NewServer creates an HTTP front for coord.
func NewServer(coord *Coordinator, logger *log.Logger, originPatterns ...string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{coord: coord, logger: logger, originPatterns: originPatterns}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.coord.Stats()); err != nil {
		s.logger.Warn("health encode failed", "err", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(s.originPatterns) > 0 {
		opts.OriginPatterns = s.originPatterns
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	code := r.URL.Query().Get("code")
	logger := s.logger.With("remote", r.RemoteAddr)

	// The connection outlives the request context once upgraded.
	ch := NewWSChannel(context.Background(), conn, logger)

	if code == "" {
		if _, err := s.coord.CreateLobby(ch); err != nil {
			s.reject(ch, err)
			return
		}
	} else if err := s.coord.Join(code, ch); err != nil {
		s.reject(ch, err)
		return
	}

	<-ch.Done()
	logger.Debug("connection closed")
}

// reject reports err to the peer and closes the connection after a short grace
// period so the error message can be flushed.
func (s *Server) reject(ch *WSChannel, err error) {
	text := "lobby error"
	switch {
	case errors.Is(err, ErrLobbyNotFound):
		text = "lobby not found"
	case errors.Is(err, ErrLobbyFull):
		text = "lobby is full"
	case errors.Is(err, ErrStopped):
		text = "server shutting down"
	}
	s.logger.Info("rejecting peer", "reason", text)
	if msg, mErr := NewMessage(MsgError, AuthoritativeSide, 0, ErrorPayload{Message: text}); mErr == nil {
		_ = ch.Send(msg) //nolint:errcheck // closing anyway
	}
	select {
	case <-ch.Done():
	case <-time.After(rejectGrace):
	}
	_ = ch.Close() //nolint:errcheck // always nil
}

const rejectGrace = time.Second
