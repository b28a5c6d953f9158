package controllers

import (
	"absensi_go/middleware"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	Hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{Hub: hub}
}

// Upgrade gates the websocket endpoint: only upgrade requests pass through
func (wc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve attaches the upgraded connection to the hub
func (wc *WebSocketController) Serve() fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		username := "anonymous"
		if claims, ok := conn.Locals("claims").(*middleware.Claims); ok {
			username = claims.Username
		}
		wc.Hub.ServeFiberWS(conn, username)
	})
}

// Stats returns the live connection count
func (wc *WebSocketController) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"clients": wc.Hub.GetClientCount()})
}
