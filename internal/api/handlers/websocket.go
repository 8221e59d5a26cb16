package handlers

import (
	"log/slog"
	"net/http"

	"election-service/internal/api/middleware"
	ws "election-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket godoc
// @Summary Live result updates
// @Description Upgrade to a WebSocket. Send {"action":"join","election_id":N} to receive tally updates for an election, {"action":"leave","election_id":N} to stop.
// @Tags websocket
// @Success 101 "Switching Protocols"
// @Security BearerAuth
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "userID", identity.UserID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, identity.UserID)
	client.Register()
}
