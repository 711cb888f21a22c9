package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentwheels-backend/models"
	"rentwheels-backend/services"
)

type ChatController struct {
	conversationService *services.ConversationService
}

func NewChatController(conversationService *services.ConversationService) *ChatController {
	return &ChatController{
		conversationService: conversationService,
	}
}

// GetUserConversations lists the conversations a user participates in
func (cc *ChatController) GetUserConversations(c *gin.Context) {
	userID := c.Param("userId")

	conversations, err := cc.conversationService.ConversationsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve conversations",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetConversation returns a single conversation with its message log
func (cc *ChatController) GetConversation(c *gin.Context) {
	conversationID := c.Param("id")

	conversation, err := cc.conversationService.Conversation(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve conversation",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, conversation)
}

type createConversationRequest struct {
	VehicleID string `json:"vehicleId" binding:"required"`
}

// CreateConversation finds or creates the conversation between the
// authenticated renter and the vehicle's owner
func (cc *ChatController) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conversation, err := cc.conversationService.FindOrCreate(c.Request.Context(), userID, req.VehicleID)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create conversation",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, conversation)
}

type addMessageRequest struct {
	Text     string             `json:"text" binding:"required"`
	UserType models.UserType    `json:"userType" binding:"required"`
	Name     string             `json:"name"`
	Type     models.MessageType `json:"type"`
}

// AddMessage appends a message to the durable log. This is the REST path
// that backs the socket-side working cache.
func (cc *ChatController) AddMessage(c *gin.Context) {
	conversationID := c.Param("id")

	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	messageType := req.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	message := models.ChatMessage{
		ID:   uuid.NewString(),
		Text: req.Text,
		Sender: models.Sender{
			UserID:   userID,
			UserType: req.UserType,
			Name:     req.Name,
		},
		Timestamp: time.Now(),
		Type:      messageType,
	}

	if err := cc.conversationService.AppendMessage(c.Request.Context(), conversationID, message); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add message",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, message)
}

// DeleteConversation soft-deletes a conversation
func (cc *ChatController) DeleteConversation(c *gin.Context) {
	conversationID := c.Param("id")

	if err := cc.conversationService.Delete(c.Request.Context(), conversationID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete conversation",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
