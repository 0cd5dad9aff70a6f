package websocket

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/Ryoga-88/ClassNotebook/access"
	"github.com/Ryoga-88/ClassNotebook/models"
	"gorm.io/gorm"
)

// MessagePayload represents the structure of a chat message payload
type MessagePayload struct {
	RoomID uint   `json:"room_id"`
	Text   string `json:"text"`
}

// handleIncoming processes an incoming WebSocket event
func (h *Handler) handleIncoming(client *Client, messageBytes []byte) {
	var msg Event
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Error unmarshaling event: %v", err)
		return
	}

	switch msg.Type {
	case ActionWatchRoom:
		if roomID, ok := msg.Payload.(string); ok {
			client.watchRoom(parseRoomID(roomID))
		}
	case ActionUnwatchRoom:
		if roomID, ok := msg.Payload.(string); ok {
			client.unwatchRoom(parseRoomID(roomID))
		}
	case ActionJoinRoom:
		if roomID, ok := msg.Payload.(string); ok {
			h.handleJoinRoom(client, parseRoomID(roomID))
		}
	case ActionLeaveRoom:
		if roomID, ok := msg.Payload.(string); ok {
			client.leaveRoom(parseRoomID(roomID))
		}
	case ActionMessage:
		payloadBytes, err := json.Marshal(msg.Payload)
		if err != nil {
			log.Printf("Error marshaling payload: %v", err)
			return
		}

		var payload MessagePayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			log.Printf("Error unmarshaling message payload: %v", err)
			return
		}

		h.handleChatMessage(client, payload)
	}
}

// handleJoinRoom subscribes a client to a room's message stream. The
// subscription is only granted when the access evaluator admits the user;
// until then the client can watch the room but not read its messages.
func (h *Handler) handleJoinRoom(client *Client, roomID uint) {
	exists := true
	var room models.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error loading room %d: %v", roomID, err)
			sendErrorToClient(client, "Failed to load room")
			return
		}
		exists = false
	}

	var grants []models.RoomAccess
	if exists {
		if err := h.db.Where("room_id = ?", roomID).Find(&grants).Error; err != nil {
			log.Printf("Error loading access list for room %d: %v", roomID, err)
			sendErrorToClient(client, "Failed to load room")
			return
		}
	}
	accessIDs := make([]uint, 0, len(grants))
	for _, g := range grants {
		accessIDs = append(accessIDs, g.UserID)
	}

	switch access.ForRoom(exists, accessIDs, client.userID) {
	case access.RoomMissing:
		sendErrorToClient(client, "Room not found")
	case access.UploadRequired:
		sendErrorToClient(client, "Upload a file to this room before reading its messages")
	case access.Granted:
		client.joinRoom(roomID)
		sendEventToClient(client, EventJoined, roomID)
	}
}

// handleChatMessage stores a user message and broadcasts it to the room
func (h *Handler) handleChatMessage(client *Client, payload MessagePayload) {
	if payload.Text == "" {
		return
	}

	// Only members of the room may post to it
	if !client.inRoom(payload.RoomID) {
		log.Printf("User %d attempted to send message to room %d without joining",
			client.userID, payload.RoomID)
		sendErrorToClient(client, "Join the room before sending messages")
		return
	}

	message, err := h.saveMessage(client, payload)
	if err != nil {
		log.Printf("Error saving message to database: %v", err)
		sendErrorToClient(client, "Failed to send message")
		return
	}

	h.hub.BroadcastToRoom(payload.RoomID, EventMessage, message)
}

// saveMessage persists a chat message authored by the client
func (h *Handler) saveMessage(client *Client, payload MessagePayload) (models.Message, error) {
	message := models.Message{
		Text:        payload.Text,
		RoomID:      payload.RoomID,
		UserID:      client.userID,
		DisplayName: client.username,
	}

	if err := h.db.Create(&message).Error; err != nil {
		return message, err
	}

	// Load user data for the message
	if err := h.db.Preload("User").First(&message, message.ID).Error; err != nil {
		log.Printf("Error loading user data for message: %v", err)
	}

	return message, nil
}

// sendEventToClient delivers an event to a single client
func sendEventToClient(client *Client, event string, payload interface{}) {
	if msg, ok := marshalEvent(event, payload); ok {
		sendTo(client, msg)
	}
}

// sendErrorToClient delivers an error event to a single client
func sendErrorToClient(client *Client, message string) {
	sendEventToClient(client, EventError, message)
}
