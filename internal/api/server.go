// Package api exposes the coach over HTTP: JSON endpoints for analysis and chat,
// a websocket carrying the same operations, and a health check.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/parsererror"

	"github.com/gorilla/websocket"
)

// Coach is the service behind the endpoints.
type Coach interface {
	Analyze(ctx context.Context, req coach.AnalysisRequest) (*coach.AnalysisResponse, error)
	Chat(ctx context.Context, req coach.ChatRequest) (*coach.ChatResponse, error)
}

// Server holds the HTTP handlers.
type Server struct {
	coach    Coach
	cfg      config.ServerConfig
	logger   logging.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a Server.
func NewServer(c Coach, cfg config.ServerConfig, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &Server{coach: c, cfg: cfg, logger: logger}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", postOnly(s.handleAnalyze))
	mux.HandleFunc("/api/chat", postOnly(s.handleChat))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return RequestID(
		Recovery(s.logger)(
			Logger(s.logger)(
				CORS(s.cfg.AllowedOrigin)(mux),
			),
		),
	)
}

// HTTPServer returns an http.Server configured from ServerConfig.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: MessageMethodNotAllowed})
			return
		}
		next(w, r)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteJSON(w, http.StatusBadRequest, validationResponse{
			Message: MessageInvalidBody,
			Errors:  []string{err.Error()},
		})
		return false
	}
	return true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req coach.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.coach.Analyze(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err, MessageAnalyzeFailed)
		return
	}
	WriteJSON(w, http.StatusOK, NewAnalyzeResponse(resp))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req coach.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.coach.Chat(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err, MessageChatFailed)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error, serverMessage string) {
	status, body := classify(err, serverMessage)
	switch {
	case parsererror.IsOracle(err):
		s.logger.WithError(err).Error("Oracle request failed",
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldRequestID, RequestIDFromContext(r.Context())))
	case status >= http.StatusInternalServerError:
		s.logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldRequestID, RequestIDFromContext(r.Context())))
	}
	WriteJSON(w, status, body)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if s.cfg.AllowedOrigin == "" || s.cfg.AllowedOrigin == "*" || origin == "" {
		return true
	}
	return origin == s.cfg.AllowedOrigin
}

// isClosed reports whether err is a normal websocket shutdown.
func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent)
}
