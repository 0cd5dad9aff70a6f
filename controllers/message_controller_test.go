package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesGatedOnAccessList(t *testing.T) {
	router, db := setupRouter(t)
	aliceToken, aliceID := registerUser(t, router, "alice")
	bobToken, _ := registerUser(t, router, "bob")
	roomID := createRoom(t, router, aliceToken, "数学")

	// Nobody has uploaded yet: even the creator is locked out
	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", roomID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, db.Create(&models.RoomAccess{RoomID: roomID, UserID: aliceID}).Error)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", roomID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Bob never uploaded: still locked out, even though messages exist
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", roomID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/messages", bobToken, gin.H{
		"text": "let me in", "room_id": roomID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateMessage(t *testing.T) {
	router, db := setupRouter(t)
	token, userID := registerUser(t, router, "alice")
	roomID := createRoom(t, router, token, "数学")
	require.NoError(t, db.Create(&models.RoomAccess{RoomID: roomID, UserID: userID}).Error)

	w := doJSON(t, router, http.MethodPost, "/api/messages", token, gin.H{
		"text": "この問題、解けた？", "room_id": roomID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data models.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "この問題、解けた？", resp.Data.Text)
	assert.Equal(t, "alice", resp.Data.DisplayName)
	assert.False(t, resp.Data.IsSystem)
}

func TestMessagesOrderedByTimestamp(t *testing.T) {
	router, db := setupRouter(t)
	token, userID := registerUser(t, router, "alice")
	roomID := createRoom(t, router, token, "数学")
	require.NoError(t, db.Create(&models.RoomAccess{RoomID: roomID, UserID: userID}).Error)

	// Insert out of order; display order must follow the timestamps
	base := time.Now().Add(-time.Hour)
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(t, db.Create(&models.Message{
			RoomID:      roomID,
			UserID:      userID,
			DisplayName: "alice",
			Text:        fmt.Sprintf("m%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", roomID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 4)
	for i, m := range resp.Messages {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.Text)
	}
}

func TestMessageHistoryCap(t *testing.T) {
	router, db := setupRouter(t)
	token, userID := registerUser(t, router, "alice")
	roomID := createRoom(t, router, token, "数学")
	require.NoError(t, db.Create(&models.RoomAccess{RoomID: roomID, UserID: userID}).Error)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < messageHistoryLimit+5; i++ {
		require.NoError(t, db.Create(&models.Message{
			RoomID:      roomID,
			UserID:      userID,
			DisplayName: "alice",
			Text:        fmt.Sprintf("m%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", roomID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, messageHistoryLimit)

	// The oldest messages fall off; the rest stay in timestamp order
	assert.Equal(t, "m5", resp.Messages[0].Text)
	assert.Equal(t, fmt.Sprintf("m%d", messageHistoryLimit+4), resp.Messages[len(resp.Messages)-1].Text)
}

func TestMessagesRoomNotFound(t *testing.T) {
	router, _ := setupRouter(t)
	token, _ := registerUser(t, router, "alice")

	w := doJSON(t, router, http.MethodGet, "/api/messages?room_id=9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
