package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ryoga-88/ClassNotebook/database"
	"github.com/Ryoga-88/ClassNotebook/middleware"
	"github.com/Ryoga-88/ClassNotebook/uploads"
	"github.com/Ryoga-88/ClassNotebook/websocket"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type memStore struct {
	saved map[string][]byte
}

func (m *memStore) Save(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.saved[key] = data
	return nil
}

func (m *memStore) URL(key string) string {
	return "https://files.example.com/" + key
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupRouter wires the API the way main does, against an in-memory database
// and object store.
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()

	uploadService := uploads.NewService(db, &memStore{saved: make(map[string][]byte)}, hub)

	authController := NewAuthController(db, testSecret)
	roomController := NewRoomController(db, hub)
	messageController := NewMessageController(db, hub)
	fileController := NewFileController(db, uploadService)

	router := gin.New()

	auth := router.Group("/api")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	api := router.Group("/api")
	api.Use(middleware.JWTAuth(testSecret))
	{
		api.GET("/me", authController.Me)
		api.GET("/rooms", roomController.GetRooms)
		api.POST("/rooms", roomController.CreateRoom)
		api.GET("/rooms/:id", roomController.GetRoom)
		api.DELETE("/rooms/:id", roomController.DeleteRoom)
		api.GET("/messages", messageController.GetMessages)
		api.POST("/messages", messageController.CreateMessage)
		api.GET("/files", fileController.GetFiles)
		api.POST("/rooms/:id/files", fileController.UploadFile)
	}

	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerUser creates an account through the API and returns its token and ID.
func registerUser(t *testing.T, router *gin.Engine, username string) (string, uint) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

// createRoom creates a room through the API and returns its ID.
func createRoom(t *testing.T, router *gin.Engine, token, title string) uint {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/rooms", token, gin.H{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Room struct {
			ID uint `json:"id"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Room.ID
}
