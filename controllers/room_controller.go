package controllers

import (
	"net/http"
	"strconv"

	"github.com/Ryoga-88/ClassNotebook/access"
	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/Ryoga-88/ClassNotebook/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RoomController struct {
	DB  *gorm.DB
	Hub *websocket.Hub
}

func NewRoomController(db *gorm.DB, hub *websocket.Hub) *RoomController {
	return &RoomController{DB: db, Hub: hub}
}

type CreateRoomInput struct {
	Title string `json:"title" binding:"required" example:"数学 課題3"`
}

// GetRooms godoc
// @Summary Get all chat rooms
// @Description Returns every chat room, newest first
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	var rooms []models.Room
	if err := rc.DB.Order("created_at DESC").Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom godoc
// @Summary Create a new chat room
// @Description Creates a chat room. The access list starts empty: the creator
// @Description must also upload a file before reading the room.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput true "Room Creation"
// @Success 201 {object} map[string]interface{} "Room created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := models.Room{
		Title:     input.Title,
		CreatedBy: userID,
	}

	if err := rc.DB.Create(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	rc.Hub.BroadcastAll(websocket.EventRoomCreated, room)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    room,
	})
}

// GetRoom godoc
// @Summary Get details of a specific room
// @Description Returns room metadata, the caller's access decision and the
// @Description submission status. File history is included only when access
// @Description is granted.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} map[string]interface{} "Room details"
// @Failure 400 {object} map[string]string "Invalid room ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{id} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	var room models.Room
	if err := rc.DB.Preload("AllowedUsers").First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	accessIDs := make([]uint, 0, len(room.AllowedUsers))
	for _, u := range room.AllowedUsers {
		accessIDs = append(accessIDs, u.ID)
	}
	decision := access.Evaluate(accessIDs, userID)

	response := gin.H{
		"room":           room,
		"access":         decision.String(),
		"uploaded_users": accessIDs,
	}

	// File history is readable only once the caller has uploaded
	if decision == access.Granted {
		var files []models.FileRecord
		if err := rc.DB.Where("room_id = ?", roomID).
			Order("created_at DESC").
			Find(&files).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
			return
		}
		response["files"] = files
	}

	c.JSON(http.StatusOK, response)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Description Deletes a room with its access list, messages and file
// @Description records. Any signed-in user may delete any room.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} map[string]string "Room deleted successfully"
// @Failure 400 {object} map[string]string "Invalid room ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{id} [delete]
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	var room models.Room
	if err := rc.DB.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomAccess{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.FileRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}

	// Clients holding this room selected transition to "no room selected"
	rc.Hub.BroadcastAll(websocket.EventRoomDeleted, room.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}
