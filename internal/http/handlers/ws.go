package handlers

import (
	"net/http"

	"criptomain/internal/logger"
	"criptomain/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PriceFeed upgrades the connection and subscribes it to price updates.
func (h *Handler) PriceFeed(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}
		client := ws.NewClient(conn, hub)
		go client.Run()
	}
}
