package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// handleEvents streams board notifications to a websocket client.
// @Summary Stream board notifications
// @Description Websocket. Each text message is a notify.Event JSON object (rule_fired, sync_failed, task_changed, task_removed).
// @Tags events
// @Success 101 {object} notify.Event
// @Router /events [get]
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.events.Subscribe(ctx)
	if err != nil {
		slog.Error("websocket subscribe failed", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
