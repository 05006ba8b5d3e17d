package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fraksi/internal/presenter"
	"fraksi/internal/rejection"
)

const maxMessageSize = 64 << 10

// wsRequest is one calculation asked for over the WebSocket.
type wsRequest struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Payload json.RawMessage `json:"payload"`
}

// wsResponse answers the request with the same id.
type wsResponse struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	OK     bool       `json:"ok"`
	Result any        `json:"result,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s.metrics.WSConnections.Inc()
	defer s.metrics.WSConnections.Dec()
	s.logger.Info("WebSocket client connected", "remote", c.Request.RemoteAddr)

	ctx := c.Request.Context()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}

		resp := s.dispatch(ctx, message)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Error("WebSocket write failed", "error", err)
			return
		}
	}
}

// dispatch decodes one message and runs its operation. Failures are answered,
// never fatal to the connection.
func (s *Server) dispatch(ctx context.Context, message []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return failure(req, fmt.Errorf("%w: %w: %v", rejection.ErrInvalidInput, errMalformed, err))
	}
	op, ok := s.ops[req.Type]
	if !ok {
		s.metrics.WSMessages.WithLabelValues("unknown").Inc()
		return failure(req, fmt.Errorf("%w: unknown message type %q", rejection.ErrInvalidInput, req.Type))
	}
	s.metrics.WSMessages.WithLabelValues(req.Type).Inc()

	result, err := op(ctx, req.Session, req.Payload)
	if err != nil {
		if !rejection.IsRejection(err) {
			s.logger.Error("WebSocket operation failed", "type", req.Type, "error", err)
		}
		return failure(req, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("WebSocket result not encodable", "type", req.Type, "error", err)
		return failure(req, fmt.Errorf("encode %s result: %w", req.Type, err))
	}
	return wsResponse{ID: req.ID, Type: req.Type, OK: true, Result: json.RawMessage(raw)}
}

func failure(req wsRequest, err error) wsResponse {
	return wsResponse{
		ID:    req.ID,
		Type:  req.Type,
		Error: &errorBody{Kind: rejection.KindOf(err), Message: presenter.Message(err)},
	}
}
