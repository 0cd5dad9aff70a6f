package models

import (
	"time"
)

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedBy uint      `json:"created_by"`
	// FileKey is the storage path segment shared by every upload to this
	// room. Empty until the first upload.
	FileKey      string       `gorm:"size:255" json:"file_key,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	AllowedUsers []User       `gorm:"many2many:room_access;" json:"allowed_users,omitempty"`
	Messages     []Message    `json:"messages,omitempty"`
	Files        []FileRecord `json:"files,omitempty"`
}

// RoomAccess is one entry of a room's access list: the user has uploaded a
// file to the room and may read its history. The composite primary key makes
// grants an atomic set-union; inserting an existing pair is a no-op.
type RoomAccess struct {
	RoomID    uint      `gorm:"primaryKey" json:"room_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
