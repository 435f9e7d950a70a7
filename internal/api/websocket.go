package api

import (
	"encoding/json"
	"net/http"

	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/logging"

	"github.com/gorilla/websocket"
)

// Frame types.
const (
	FrameAnalyze  = "analyze"
	FrameChat     = "chat"
	FrameAnalysis = "analysis"
	FrameReply    = "reply"
	FrameError    = "error"
)

// clientFrame carries the frame type and an optional correlation id; the rest
// of the frame is decoded as the matching coach request.
type clientFrame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// ServerFrame is every message the server sends. Exactly one payload group is
// set depending on Type.
type ServerFrame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	*AnalyzeResponse

	Reply string `json:"reply,omitempty"`

	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// handleWebSocket serves analyze and chat requests over one connection. Frames
// are handled in order; chat history stays with the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := s.logger.WithField(logging.FieldRequestID, RequestIDFromContext(r.Context()))
	logger.Info("WebSocket connected")

	if s.cfg.MaxBodyBytes > 0 {
		conn.SetReadLimit(s.cfg.MaxBodyBytes)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !isClosed(err) && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WithError(err).Warn("WebSocket read failed")
			}
			return
		}

		frame := s.handleFrame(r, data)
		if err := conn.WriteJSON(frame); err != nil {
			logger.WithError(err).Warn("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleFrame(r *http.Request, data []byte) ServerFrame {
	var envelope clientFrame
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ServerFrame{Type: FrameError, Message: MessageInvalidBody, Errors: []string{err.Error()}}
	}

	switch envelope.Type {
	case FrameAnalyze:
		var req coach.AnalysisRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return ServerFrame{Type: FrameError, ID: envelope.ID, Message: MessageInvalidBody, Errors: []string{err.Error()}}
		}
		resp, err := s.coach.Analyze(r.Context(), req)
		if err != nil {
			return errorFrame(envelope.ID, err, MessageAnalyzeFailed)
		}
		body := NewAnalyzeResponse(resp)
		return ServerFrame{Type: FrameAnalysis, ID: envelope.ID, AnalyzeResponse: &body}

	case FrameChat:
		var req coach.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return ServerFrame{Type: FrameError, ID: envelope.ID, Message: MessageInvalidBody, Errors: []string{err.Error()}}
		}
		resp, err := s.coach.Chat(r.Context(), req)
		if err != nil {
			return errorFrame(envelope.ID, err, MessageChatFailed)
		}
		return ServerFrame{Type: FrameReply, ID: envelope.ID, Reply: resp.Reply}

	default:
		return ServerFrame{Type: FrameError, ID: envelope.ID, Message: "Unknown message type: " + envelope.Type}
	}
}

func errorFrame(id string, err error, serverMessage string) ServerFrame {
	frame := ServerFrame{Type: FrameError, ID: id}
	_, body := classify(err, serverMessage)
	switch body := body.(type) {
	case validationResponse:
		frame.Message, frame.Errors = body.Message, body.Errors
	case errorResponse:
		frame.Message, frame.Error = body.Message, body.Error
	}
	return frame
}
