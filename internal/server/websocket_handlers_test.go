package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tally/internal/ocr"
)

func dialTestWebSocket(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/receipt/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketResponse {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var resp WebSocketResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestWebSocketParseFlow(t *testing.T) {
	engine := &stubEngine{result: &ocr.ImageResult{Detections: receiptDetections()}}
	conn := dialTestWebSocket(t, newTestServer(engine))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, tinyPNG(t)))
	ack := readResponse(t, conn)
	assert.Equal(t, "ack", ack.Type)
	assert.Equal(t, "buffered", ack.Status)
	assert.Equal(t, 1, ack.Images)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"parse"}`)))

	processing := readResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)

	completed := readResponse(t, conn)
	assert.Equal(t, "receipt", completed.Type)
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.Result)
	assert.Equal(t, "HKUST Canteen", completed.Result.Restaurant)
	assert.True(t, completed.Result.IsValid)
}

func TestWebSocketParseWithoutScreenshots(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(&stubEngine{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"parse"}`)))
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestWebSocketReset(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(&stubEngine{}))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, tinyPNG(t)))
	_ = readResponse(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"reset"}`)))
	resp := readResponse(t, conn)
	assert.Equal(t, "ack", resp.Type)
	assert.Equal(t, "reset", resp.Status)

	// Buffer is empty again, parse must fail.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"parse"}`)))
	parse := readResponse(t, conn)
	assert.Equal(t, "error", parse.Type)
}

func TestWebSocketUnknownCommand(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(&stubEngine{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Error, "bogus")
}

func TestWebSocketInvalidCommandJSON(t *testing.T) {
	conn := dialTestWebSocket(t, newTestServer(&stubEngine{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}
