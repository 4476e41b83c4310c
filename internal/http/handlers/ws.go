package handlers

import (
	"net/http"
	"os"

	"fintrack/internal/logger"
	"fintrack/internal/service"
	"fintrack/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection to the live ledger change feed. The JWT travels
// in the query string because browsers cannot set headers on websocket
// upgrades.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		ownerID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(ownerID, conn, hub)
		go client.Run()
	}
}
