package pkg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFrameInvalidJSON(t *testing.T) {
	m := NewManager()
	s := newTestSession(m)

	s.handleFrame([]byte("{not json"))

	errFrame := recvFrame(t, s)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Invalid JSON payload.", errFrame["message"])
	assert.Empty(t, m.rooms)
}

func TestHandleFrameUnknownType(t *testing.T) {
	m := NewManager()
	s := newTestSession(m)

	s.handleFrame([]byte(`{"type":"teleport","roomId":"r1"}`))

	errFrame := recvFrame(t, s)
	assert.Equal(t, "Invalid JSON payload.", errFrame["message"])
}

func TestHandleFrameJoinDispatch(t *testing.T) {
	m := NewManager()
	s := newTestSession(m)

	s.handleFrame([]byte(`{"type":"join","roomId":"r1","role":"sender","token":"abcdEFGH12345678"}`))

	assert.True(t, s.joined)
	joined := recvFrame(t, s)
	assert.Equal(t, "joined", joined["type"])
}

func TestSignalRelayedVerbatim(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	b := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	b.handleJoin(joinFrame("r1", RoleReceiver, testToken))
	drain(a)
	drain(b)

	payload := `{"type":"offer","x":1}`
	a.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r1",
		Payload: json.RawMessage(payload),
	})

	// The receiver alone gets the payload, byte for byte.
	var relayed signalFrame
	select {
	case data := <-b.send:
		require.NoError(t, json.Unmarshal(data, &relayed))
	default:
		t.Fatal("receiver got no signal")
	}
	assert.Equal(t, "signal", string(relayed.Type))
	assert.Equal(t, payload, string(relayed.Payload))
	assert.Zero(t, pendingFrames(a))
}

func TestSignalRelayedBothDirections(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	b := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	b.handleJoin(joinFrame("r1", RoleReceiver, testToken))
	drain(a)
	drain(b)

	b.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r1",
		Payload: json.RawMessage(`{"type":"answer"}`),
	})

	answer := recvFrame(t, a)
	assert.Equal(t, "signal", answer["type"])
	assert.Zero(t, pendingFrames(b))
}

func TestSignalDroppedWithoutPeer(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	drain(a)

	a.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r1",
		Payload: json.RawMessage(`{"type":"offer"}`),
	})

	// Best effort: no queuing, no error back to the sender.
	assert.Zero(t, pendingFrames(a))
}

func TestSignalDroppedBeforeJoin(t *testing.T) {
	m := NewManager()
	s := newTestSession(m)

	s.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r1",
		Payload: json.RawMessage(`{"type":"offer"}`),
	})

	assert.Zero(t, pendingFrames(s))
	assert.Nil(t, m.GetRoom("r1"))
}

func TestSignalDroppedForOtherRoom(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	b := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	b.handleJoin(joinFrame("r1", RoleReceiver, testToken))
	drain(a)
	drain(b)

	a.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r2",
		Payload: json.RawMessage(`{"type":"offer"}`),
	})

	assert.Zero(t, pendingFrames(b))
}

func TestSignalDroppedWithEmptyPayload(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	b := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	b.handleJoin(joinFrame("r1", RoleReceiver, testToken))
	drain(a)
	drain(b)

	a.handleSignal(&frame{Type: FrameTypeSignal, RoomID: "r1"})

	assert.Zero(t, pendingFrames(b))
}

func TestSignalDroppedWithStaleIdentity(t *testing.T) {
	m := NewManager()

	// First tenancy of r1.
	stale := newTestSession(m)
	stale.handleJoin(joinFrame("r1", RoleSender, testToken))
	m.Leave(stale)
	require.Nil(t, m.GetRoom("r1"))

	// r1 is recreated under a different token.
	c := newTestSession(m)
	c.handleJoin(joinFrame("r1", RoleReceiver, "replacementToken9876"))
	drain(c)

	// The stale sender's recorded token no longer matches the bound one.
	stale.handleSignal(&frame{
		Type:    FrameTypeSignal,
		RoomID:  "r1",
		Payload: json.RawMessage(`{"type":"offer"}`),
	})

	assert.Zero(t, pendingFrames(c))
}

func TestBroadcastIdempotent(t *testing.T) {
	m := NewManager()
	a := newTestSession(m)
	b := newTestSession(m)
	a.handleJoin(joinFrame("r1", RoleSender, testToken))
	b.handleJoin(joinFrame("r1", RoleReceiver, testToken))
	drain(a)
	drain(b)

	room := m.GetRoom("r1")
	require.NotNil(t, room)

	// Two broadcasts with no intervening mutation carry identical state.
	room.lock.Lock()
	room.broadcastStateLocked()
	room.broadcastStateLocked()
	room.lock.Unlock()

	first := recvFrame(t, a)
	second := recvFrame(t, a)
	assert.Equal(t, first, second)
}
