package pkg

// Role is the slot a peer occupies within a room. Exactly one connection
// may hold each role in a room at any time.
type Role string

const (
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

type FrameType string

const (
	// Received from clients. FrameTypeSignal is also sent back out as the
	// relay envelope.
	FrameTypeJoin   FrameType = "join"
	FrameTypeSignal           = "signal"

	// Sent to clients only.
	FrameTypeError     = "error"
	FrameTypeJoined    = "joined"
	FrameTypeRoomState = "room-state"
)
