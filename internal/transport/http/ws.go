package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/transport"
)

// handleWebSocket serves GET /ws. Every text frame is a JSON message.Message
// and gets exactly one JSON message.DispatchResult back, in order. Failures
// are reported in the result's error field and keep the connection open.
//
// @Summary     Dispatch over WebSocket
// @Description Upgrade to a WebSocket. Send one JSON message per text frame; each
// @Description frame is answered with one dispatch result.
// @Tags        dispatch
// @Success     101  {string}  string  "Switching Protocols"
// @Router      /ws [get]
func (t *Transport) handleWebSocket(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	logger := slog.With("remote", r.RemoteAddr)
	logger.Debug("websocket connected")

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var msg message.Message
		var res *message.DispatchResult
		if err := json.Unmarshal(data, &msg); err != nil {
			res = &message.DispatchResult{Error: "invalid json: " + err.Error()}
		} else {
			if msg.Source == "" {
				msg.Source = "ws"
			}
			res, err = handler(r.Context(), &msg)
			if err != nil {
				res = &message.DispatchResult{MessageID: msg.ID, Error: err.Error()}
			}
		}

		if err := conn.WriteJSON(res); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
