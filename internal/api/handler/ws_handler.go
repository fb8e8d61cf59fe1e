package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/healthcare-portal/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The delivery layer does its own identity validation on join-room;
	// origin checking belongs to the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests to websocket connections and hands them
// to the hub. A fresh connection is unjoined until it sends a valid
// join-room event.
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}
	h.hub.Attach(conn)
	return nil
}
