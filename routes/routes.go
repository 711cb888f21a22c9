package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"rentwheels-backend/controllers"
	"rentwheels-backend/middleware"
	"rentwheels-backend/services"
)

// SetupRoutes wires the REST chat API and the websocket endpoint. The hub is
// built in main because it owns the trained classifier and must be running
// before traffic arrives.
func SetupRoutes(router *gin.Engine, hub *services.ChatHub, db *mongo.Database) {
	// Initialize services
	conversationService := services.NewConversationService(db)

	// Initialize controllers
	chatController := controllers.NewChatController(conversationService)
	wsController := controllers.NewWebSocketController(hub)

	// WebSocket for real-time chat (token exchange happens over the
	// socket protocol itself)
	router.GET("/ws", wsController.HandleWebSocket)

	// Durable chat history API
	chat := router.Group("/api/chat")
	chat.Use(middleware.RequireAuth())
	{
		chat.GET("/user/:userId", chatController.GetUserConversations)
		chat.GET("/:id", chatController.GetConversation)
		chat.POST("", chatController.CreateConversation)
		chat.POST("/:id/messages", chatController.AddMessage)
		chat.DELETE("/:id", chatController.DeleteConversation)
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}
