package websocket

import (
	"log"
	"net/http"

	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/Ryoga-88/ClassNotebook/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler upgrades authenticated HTTP requests to websocket connections and
// routes incoming client events.
type Handler struct {
	hub       *Hub
	db        *gorm.DB
	jwtSecret string
}

// NewHandler creates a websocket handler
func NewHandler(hub *Hub, db *gorm.DB, jwtSecret string) *Handler {
	return &Handler{hub: hub, db: db, jwtSecret: jwtSecret}
}

// HandleConnection handles websocket connections. Browsers cannot set an
// Authorization header on websocket requests, so the token rides in the
// query string.
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	userID, err := utils.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("error upgrading connection: %v", err)
		return
	}

	// Create a new client
	client := &Client{
		hub:      h.hub,
		handler:  h,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   user.ID,
		username: user.Username,
		rooms:    make(map[uint]bool),
		watching: make(map[uint]bool),
	}

	// Register client
	client.hub.register <- client

	// Start goroutines for reading and writing
	go client.readPump()
	go client.writePump()
}
