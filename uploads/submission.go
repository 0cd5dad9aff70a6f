// Package uploads implements the file submission flow: store the blob, then
// grant room access, record the file, and announce the upload. Storage is
// the commit point; everything after it is best-effort bookkeeping that the
// access list reconciles.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/Ryoga-88/ClassNotebook/models"
	"github.com/Ryoga-88/ClassNotebook/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRoomNotFound is returned when the target room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ObjectStore is the slice of the storage client the submission flow needs.
type ObjectStore interface {
	Save(ctx context.Context, key string, body io.Reader) error
	URL(key string) string
}

// Broadcaster delivers room events to live subscribers.
type Broadcaster interface {
	BroadcastToRoom(roomID uint, event string, payload interface{})
	BroadcastToWatchers(roomID uint, event string, payload interface{})
}

// Service orchestrates file submissions.
type Service struct {
	db    *gorm.DB
	store ObjectStore
	hub   Broadcaster
}

// NewService creates a submission service
func NewService(db *gorm.DB, store ObjectStore, hub Broadcaster) *Service {
	return &Service{db: db, store: store, hub: hub}
}

// Submit runs the submission flow for one file. On success the uploader is
// in the room's access list and the returned record carries the retrieval
// URL. Success is keyed on the storage write alone: if storing the blob
// fails, nothing is committed and the error is returned; failures of the
// follow-up writes are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, roomID uint, user models.User, fileName string, body io.Reader) (*models.FileRecord, error) {
	var room models.Room
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	// Resolve the room's storage path key, synthesizing one from the
	// current time on first upload. Two concurrent first uploads may
	// synthesize different keys; both blobs are kept either way.
	pathKey := room.FileKey
	synthesized := pathKey == ""
	if synthesized {
		pathKey = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	// Commit point: the blob must be durable before anything else happens.
	key := fmt.Sprintf("files/%s/%d_%s", pathKey, user.ID, fileName)
	if err := s.store.Save(ctx, key, body); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	record := &models.FileRecord{
		RoomID:      roomID,
		UploaderID:  user.ID,
		DisplayName: user.Username,
		FileName:    fileName,
		FileURL:     s.store.URL(key),
	}

	// Best-effort from here on, each step independent of the others.
	if synthesized {
		if err := s.db.Model(&models.Room{}).Where("id = ? AND file_key = ''", roomID).
			Update("file_key", pathKey).Error; err != nil {
			log.Printf("failed to persist file key for room %d: %v", roomID, err)
		}
	}
	s.grantAccess(roomID, user.ID)
	if err := s.db.Create(record).Error; err != nil {
		log.Printf("failed to record file %q for room %d: %v", fileName, roomID, err)
	}
	s.announceUpload(roomID, user, fileName)
	s.broadcastRoomUpdate(roomID, record)

	return record, nil
}

// grantAccess adds the uploader to the room's access list. The insert is an
// atomic set-union: concurrent uploads cannot lose each other's grant, and
// re-submitting never duplicates an entry.
func (s *Service) grantAccess(roomID, userID uint) {
	grant := models.RoomAccess{RoomID: roomID, UserID: userID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
		log.Printf("failed to grant room %d access to user %d: %v", roomID, userID, err)
	}
}

// announceUpload appends the system message for a successful upload
func (s *Service) announceUpload(roomID uint, user models.User, fileName string) {
	message := models.Message{
		Text:        fmt.Sprintf("%s さんがファイル「%s」をアップロードしました。", user.Username, fileName),
		RoomID:      roomID,
		UserID:      user.ID,
		DisplayName: user.Username,
		IsSystem:    true,
	}
	if err := s.db.Create(&message).Error; err != nil {
		log.Printf("failed to record upload announcement for room %d: %v", roomID, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(roomID, websocket.EventMessage, message)
	}
}

// broadcastRoomUpdate pushes the new file and the room's refreshed access
// list to everyone viewing the room, so upload-required views re-evaluate.
func (s *Service) broadcastRoomUpdate(roomID uint, record *models.FileRecord) {
	if s.hub == nil {
		return
	}

	s.hub.BroadcastToWatchers(roomID, websocket.EventFileUploaded, record)

	var room models.Room
	if err := s.db.Preload("AllowedUsers").First(&room, roomID).Error; err != nil {
		log.Printf("failed to reload room %d after upload: %v", roomID, err)
		return
	}
	s.hub.BroadcastToWatchers(roomID, websocket.EventRoomUpdated, room)
}
