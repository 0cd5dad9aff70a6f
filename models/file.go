package models

import (
	"time"
)

// FileRecord is the metadata of one uploaded file. Records are created once
// per successful upload and never mutated or deleted.
type FileRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      uint      `json:"room_id"`
	UploaderID  uint      `json:"uploader_id"`
	Uploader    User      `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FileURL     string    `gorm:"size:1024;not null" json:"file_url"`
	CreatedAt   time.Time `json:"uploaded_at"`
}
