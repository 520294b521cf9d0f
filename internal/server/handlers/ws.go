package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
)

type WSHandler struct {
	logger   *zap.Logger
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler accepts handshakes from the listed origins; "*" allows any.
func NewWSHandler(logger *zap.Logger, hub *events.Hub, origins []string) *WSHandler {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Agent streams task events to the authenticated agent.
func (h *WSHandler) Agent(c *gin.Context) {
	p, _ := mw.Principal(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	h.hub.Serve(conn, p.UserID)
}
