package pkg

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestSession builds a session without a websocket behind it. The join,
// relay and leave paths only ever touch the outbound queue, so tests can
// read queued frames straight from send.
func newTestSession(m *Manager) *Session {
	return &Session{
		manager: m,
		uuid:    uuid.New(),
		send:    make(chan []byte, 256),
	}
}

// recvFrame pops the next queued frame for s, failing the test if none is
// pending.
func recvFrame(t *testing.T, s *Session) map[string]interface{} {
	t.Helper()

	select {
	case data := <-s.send:
		var v map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &v))
		return v
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

// drain discards every pending frame for s.
func drain(s *Session) {
	for {
		select {
		case <-s.send:
		default:
			return
		}
	}
}

func pendingFrames(s *Session) int {
	return len(s.send)
}

func joinFrame(roomID string, role Role, token string) *frame {
	return &frame{
		Type:   FrameTypeJoin,
		RoomID: roomID,
		Role:   role,
		Token:  token,
	}
}
