package handlers

import (
	"net/http"
	"slices"
	"time"

	"spotmarket/internal/http/middleware"
	"spotmarket/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

func (h Handlers) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.Origins, origin)
		},
	}
}

// GET /api/zones/:zoneId/events streams listing changes of one zone over a websocket.
func (h Handlers) ZoneEvents(c *gin.Context) {
	zoneID, err := parseID(c.Param("zoneId"), "zoneId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	// Request ids come from the client, so each connection gets its own key.
	rid := middleware.GetRequestID(c)
	sub := uuid.NewString()
	ch := h.Hub.Acquire(zoneID, sub)
	defer func() { _ = h.Hub.Release(zoneID, sub) }()
	utils.LogEvent(rid, "events", "subscribe", "zone subscriber "+sub+" connected")

	// the read loop only exists to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}

		case <-closed:
			utils.LogEvent(rid, "events", "unsubscribe", "zone subscriber "+sub+" disconnected")
			return
		}
	}
}
