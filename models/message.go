package models

import (
	"time"
)

type Message struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Text   string `gorm:"type:text;not null" json:"text"`
	RoomID uint   `json:"room_id"`
	UserID uint   `json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// DisplayName is denormalized so messages keep the author's name as it
	// was when the message was sent.
	DisplayName string    `gorm:"size:255" json:"display_name"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
