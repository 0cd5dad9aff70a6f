package controllers

import (
	"net/http"
	"strconv"

	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/Ryoga-88/ClassNotebook/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// messageHistoryLimit caps a room's message query to the most recent entries.
const messageHistoryLimit = 100

type MessageController struct {
	DB  *gorm.DB
	Hub *websocket.Hub
}

func NewMessageController(db *gorm.DB, hub *websocket.Hub) *MessageController {
	return &MessageController{DB: db, Hub: hub}
}

type CreateMessageInput struct {
	Text   string `json:"text" binding:"required" example:"この問題、解けた？"`
	RoomID uint   `json:"room_id" binding:"required" example:"1"`
}

// requireAccess checks that the user is in the room's access list. It writes
// the error response itself and reports whether the caller may proceed.
func requireAccess(c *gin.Context, db *gorm.DB, roomID, userID uint) bool {
	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return false
	}

	var grant models.RoomAccess
	if err := db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&grant).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Upload a file to this room before reading its messages"})
		return false
	}

	return true
}

// GetMessages godoc
// @Summary Get messages for a room
// @Description Returns the room's most recent messages in timestamp order.
// @Description Only users in the room's access list may read them.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param room_id query int true "Room ID"
// @Success 200 {object} map[string]interface{} "List of messages"
// @Failure 400 {object} map[string]string "Invalid room ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Upload required"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [get]
func (mc *MessageController) GetMessages(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Query("room_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	if !requireAccess(c, mc.DB, uint(roomID), userID) {
		return
	}

	// Most recent N, presented oldest first
	var recent []models.Message
	if err := mc.DB.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(messageHistoryLimit).
		Preload("User").
		Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	messages := make([]models.Message, len(recent))
	for i, m := range recent {
		messages[len(recent)-1-i] = m
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage godoc
// @Summary Send a message
// @Description Creates a message in a chat room and broadcasts it to the
// @Description room's live subscribers
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body CreateMessageInput true "Message Creation"
// @Success 201 {object} map[string]interface{} "Message sent successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Upload required"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [post]
func (mc *MessageController) CreateMessage(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !requireAccess(c, mc.DB, input.RoomID, userID) {
		return
	}

	var user models.User
	if err := mc.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	message := models.Message{
		Text:        input.Text,
		RoomID:      input.RoomID,
		UserID:      userID,
		DisplayName: user.Username,
	}

	if err := mc.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
		return
	}

	// Load user data for the message
	mc.DB.Preload("User").First(&message, message.ID)

	// Broadcast message to room members
	mc.Hub.BroadcastToRoom(input.RoomID, websocket.EventMessage, message)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    message,
	})
}
