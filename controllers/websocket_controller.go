package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"rentwheels-backend/config"
	"rentwheels-backend/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range config.Get().Security.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

type WebSocketController struct {
	hub *services.ChatHub
}

func NewWebSocketController(hub *services.ChatHub) *WebSocketController {
	return &WebSocketController{
		hub: hub,
	}
}

// HandleWebSocket upgrades the request and hands the connection to the hub.
// All further interaction happens through join_conversation / send_message /
// initiate_booking events on the socket.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := services.NewClient(wc.hub, conn)
	go client.WritePump()
	go client.ReadPump()
}
