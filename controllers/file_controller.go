package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/Ryoga-88/ClassNotebook/uploads"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FileController struct {
	DB      *gorm.DB
	Uploads *uploads.Service
}

func NewFileController(db *gorm.DB, uploadService *uploads.Service) *FileController {
	return &FileController{DB: db, Uploads: uploadService}
}

// GetFiles godoc
// @Summary Get uploaded files for a room
// @Description Returns the room's file records, newest first. Only users in
// @Description the room's access list may read them.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param room_id query int true "Room ID"
// @Success 200 {object} map[string]interface{} "List of files"
// @Failure 400 {object} map[string]string "Invalid room ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Upload required"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/files [get]
func (fc *FileController) GetFiles(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Query("room_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	if !requireAccess(c, fc.DB, uint(roomID), userID) {
		return
	}

	var files []models.FileRecord
	if err := fc.DB.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// UploadFile godoc
// @Summary Upload a file to a room
// @Description Stores the file and unlocks the room for the uploader. The
// @Description upload succeeds as long as the file itself is stored.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{} "File uploaded successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Upload failed"
// @Router /api/rooms/{id}/files [post]
func (fc *FileController) UploadFile(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	var user models.User
	if err := fc.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	// Strip any client-side path from the file name
	fileName := filepath.Base(fileHeader.Filename)

	record, err := fc.Uploads.Submit(c.Request.Context(), uint(roomID), user, fileName, file)
	if err != nil {
		if errors.Is(err, uploads.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file, please try again"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"file":    record,
	})
}
