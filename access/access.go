// Package access decides whether a user may read a room's message and file
// history. A user has access iff they appear in the room's access list, i.e.
// they have uploaded a file to the room. The room's creator gets no special
// treatment.
package access

// Decision is the outcome of evaluating a user against a room's access list.
type Decision int

const (
	// Granted means the user may read the room's history.
	Granted Decision = iota
	// UploadRequired means the user must upload a file before reading.
	UploadRequired
	// RoomMissing means the room no longer exists (e.g. concurrently
	// deleted); the consuming view must treat the room as unavailable.
	RoomMissing
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case UploadRequired:
		return "upload_required"
	case RoomMissing:
		return "room_missing"
	default:
		return "unknown"
	}
}

// Evaluate returns Granted iff userID is in the access list.
func Evaluate(accessList []uint, userID uint) Decision {
	for _, id := range accessList {
		if id == userID {
			return Granted
		}
	}
	return UploadRequired
}

// ForRoom folds room existence into the decision: a missing room yields
// RoomMissing regardless of the list.
func ForRoom(exists bool, accessList []uint, userID uint) Decision {
	if !exists {
		return RoomMissing
	}
	return Evaluate(accessList, userID)
}
