package websocket

// Event is the envelope for every message exchanged over a websocket
// connection, in both directions.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Server-to-client event types. Room and file events go to watchers of a
// room (any connected user who selected it); message events go only to
// members (users the access evaluator admits).
const (
	EventMessage      = "message"
	EventRoomCreated  = "room_created"
	EventRoomUpdated  = "room_updated"
	EventRoomDeleted  = "room_deleted"
	EventFileUploaded = "file_uploaded"
	EventJoined       = "joined"
	EventError        = "error"
)

// Client-to-server event types.
const (
	ActionWatchRoom   = "watch_room"
	ActionUnwatchRoom = "unwatch_room"
	ActionJoinRoom    = "join_room"
	ActionLeaveRoom   = "leave_room"
	ActionMessage     = "message"
)
