package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/tally/internal/ocr"
	"github.com/MeKo-Tech/tally/internal/receipt"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketCommand is a text control message from the client. Screenshots
// arrive as binary messages before the "parse" command; "reset" drops any
// buffered screenshots.
type WebSocketCommand struct {
	Type string `json:"type"` // "parse" or "reset"
}

// WebSocketResponse is a message sent back to the client.
type WebSocketResponse struct {
	Type      string          `json:"type"` // "receipt", "ack", "error"
	Status    string          `json:"status,omitempty"`
	Images    int             `json:"images,omitempty"`
	Result    *receipt.Result `json:"result,omitempty"`
	RawText   []string        `json:"raw_text,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorType string          `json:"error_type,omitempty"`
}

// receiptWebSocketHandler handles WebSocket connections for interactive
// receipt parsing: the client streams screenshots top to bottom as binary
// frames and requests a parse with a text command.
func (s *Server) receiptWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping messages keep the connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	var screenshots [][]byte
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		switch messageType {
		case websocket.BinaryMessage:
			screenshots = append(screenshots, data)
			s.sendWebSocketResponse(conn, WebSocketResponse{
				Type:   "ack",
				Status: "buffered",
				Images: len(screenshots),
			})
		case websocket.TextMessage:
			var cmd WebSocketCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse command: %v", err))
				continue
			}
			switch cmd.Type {
			case "parse":
				s.processWebSocketParse(conn, screenshots)
				screenshots = nil
			case "reset":
				screenshots = nil
				s.sendWebSocketResponse(conn, WebSocketResponse{Type: "ack", Status: "reset"})
			default:
				s.sendWebSocketError(conn, "invalid_request", "Unsupported command type: "+cmd.Type)
			}
		}
	}
}

// processWebSocketParse runs the buffered screenshots through the engine
// and the parser and sends the result.
func (s *Server) processWebSocketParse(conn *websocket.Conn, screenshots [][]byte) {
	if len(screenshots) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No screenshots buffered")
		return
	}

	s.sendWebSocketResponse(conn, WebSocketResponse{Type: "receipt", Status: "processing"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	images := make([][]receipt.Token, 0, len(screenshots))
	rawText := make([]string, 0, 64)
	for i, data := range screenshots {
		prepared, err := ocr.PrepareImage(data, s.maxImageWidth)
		if err != nil {
			ocrRequestsTotal.WithLabelValues("websocket", "error").Inc()
			s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode screenshot %d: %v", i+1, err))
			return
		}
		res, err := s.engine.DetectImage(ctx, prepared, fmt.Sprintf("screenshot-%d.png", i+1))
		if err != nil {
			ocrRequestsTotal.WithLabelValues("websocket", "error").Inc()
			s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Detection failed for screenshot %d: %v", i+1, err))
			return
		}
		tokens := receipt.Normalize(res.Detections)
		images = append(images, tokens)
		rawText = append(rawText, s.parser.RowTexts(tokens)...)
	}

	ocrRequestsTotal.WithLabelValues("websocket", "success").Inc()
	ocrProcessingDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())

	result := s.parser.Parse(images)
	receiptsParsed.WithLabelValues(validityLabel(result.IsValid)).Inc()
	itemsPerReceipt.Observe(float64(len(result.Items)))

	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:    "receipt",
		Status:  "completed",
		Result:  &result,
		RawText: rawText,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn *websocket.Conn, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn *websocket.Conn, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
