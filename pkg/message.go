package pkg

import (
	"encoding/json"
)

// Protocol error strings sent back to the offending connection. Rejections
// are never fatal to the process or to other connections.
const (
	errInvalidJSON       = "Invalid JSON payload."
	errMissingJoinFields = "Missing roomId, role, or token."
	errInvalidRole       = "Invalid role."
	errInvalidToken      = "Invalid security token."
	errRoomTokenMismatch = "Invalid room token."
	errSenderConnected   = "Sender already connected."
	errReceiverConnected = "Receiver already connected."
	errAlreadyJoined     = "Already joined a room."
)

// frame is the single decoded shape for all client-to-server messages.
// Frames are parsed once at the boundary and dispatched on Type; fields
// not used by a given type are left zero.
type frame struct {
	Type    FrameType       `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Role    Role            `json:"role,omitempty"`
	Token   string          `json:"token,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func decodeFrame(data []byte) (*frame, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Server-to-client frames. Each kind gets its own struct so that booleans
// like receiverConnected are always present on the wire.

type errorFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

type joinedFrame struct {
	Type   FrameType `json:"type"`
	RoomID string    `json:"roomId"`
	Role   Role      `json:"role"`
}

type roomStateFrame struct {
	Type              FrameType `json:"type"`
	RoomID            string    `json:"roomId"`
	SenderConnected   bool      `json:"senderConnected"`
	ReceiverConnected bool      `json:"receiverConnected"`
}

type signalFrame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newErrorFrame(message string) errorFrame {
	return errorFrame{Type: FrameTypeError, Message: message}
}

func newJoinedFrame(roomID string, role Role) joinedFrame {
	return joinedFrame{Type: FrameTypeJoined, RoomID: roomID, Role: role}
}

func newSignalFrame(payload json.RawMessage) signalFrame {
	return signalFrame{Type: FrameTypeSignal, Payload: payload}
}
