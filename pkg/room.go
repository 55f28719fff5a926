package pkg

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Room pairs at most one sender and one receiver, keyed by a caller-supplied
// identifier. The first joiner binds the room to its token; every later
// joiner must present the same token.
type Room struct {
	manager *Manager
	id      string

	// lock guards everything below. All check-then-set paths (token
	// binding, slot occupancy, attached-set transitions) run under it.
	lock     sync.Mutex
	token    string
	sender   *Session
	receiver *Session
	clients  map[*Session]struct{}

	// gone is set when the room is removed from the registry. A join that
	// raced the removal sees it and fetches a fresh room instead.
	gone bool
}

// join runs the join protocol for s. On rejection it returns the protocol
// error string to report; on success both return values are zero. retry is
// set when the room was reaped between lookup and lock acquisition, in
// which case the caller should fetch a fresh room and try again.
// All checks pass before any mutation happens.
func (r *Room) join(s *Session, role Role, token string) (rejection string, retry bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.gone {
		return "", true
	}

	if r.token != "" && r.token != token {
		return errRoomTokenMismatch, false
	}

	switch role {
	case RoleSender:
		if r.sender != nil {
			return errSenderConnected, false
		}
	case RoleReceiver:
		if r.receiver != nil {
			return errReceiverConnected, false
		}
	}

	// First writer wins; the token never changes afterwards.
	if r.token == "" {
		r.token = token
	}

	if role == RoleSender {
		r.sender = s
	} else {
		r.receiver = s
	}
	r.clients[s] = struct{}{}

	s.roomID = r.id
	s.role = role
	s.token = token
	s.joined = true

	s.enqueue(newJoinedFrame(r.id, role))
	r.broadcastStateLocked()

	log.WithFields(log.Fields{
		"session": s.uuid,
		"room":    r.id,
		"role":    role,
	}).Info("Peer joined room")

	return "", false
}

// target returns the occupant of the slot opposite to role, or nil.
// Caller must hold r.lock.
func (r *Room) target(role Role) *Session {
	if role == RoleSender {
		return r.receiver
	}
	return r.sender
}

// broadcastStateLocked pushes the current occupancy snapshot to every
// attached connection. Delivery is fire-and-forget: a backpressured peer is
// skipped, not retried. Caller must hold r.lock.
func (r *Room) broadcastStateLocked() {
	state := roomStateFrame{
		Type:              FrameTypeRoomState,
		RoomID:            r.id,
		SenderConnected:   r.sender != nil,
		ReceiverConnected: r.receiver != nil,
	}
	for client := range r.clients {
		client.enqueue(state)
	}
}
