package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// @Summary Watch a flow
// @Description Websocket pushing a snapshot on connect and after every change. The server closes
// @Description the socket once the flow reaches a terminal phase or is closed.
// @Tags flows
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 101
// @Failure 404 {object} middleware.ErrorResponse "Flow not found"
// @Router /flows/{id}/ws [get]
func (h *FlowHandlers) watch(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	snaps, unsubscribe := f.Subscribe()
	defer unsubscribe()

	// Reader: only control frames are expected; any error means the peer is gone.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	log := h.log.With().Str("flow_id", f.ID()).Logger()
	log.Debug().Msg("Watcher attached")
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				closeSocket(conn, "flow closed")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Msg("Watcher write failed")
				return
			}
			if snap.Phase.Terminal() {
				closeSocket(conn, "flow finished")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			log.Debug().Msg("Watcher detached")
			return
		}
	}
}

func closeSocket(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(writeWait))
}
