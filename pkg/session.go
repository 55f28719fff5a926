package pkg

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Sized for SDP payloads.
	maxMessageSize = 64 * 1024
)

// Session is one live websocket connection. Its identity fields (roomID,
// role, token) are assigned exactly once on a successful join and never
// reassigned; the only transitions are Unjoined -> Joined -> Closed.
type Session struct {
	manager *Manager
	conn    *websocket.Conn
	uuid    uuid.UUID
	send    chan []byte

	// Identity, set under the room lock on join. Only this session's read
	// goroutine consults it afterwards.
	roomID string
	role   Role
	token  string
	joined bool
}

func newSession(m *Manager, conn *websocket.Conn) *Session {
	return &Session{
		manager: m,
		conn:    conn,
		uuid:    uuid.New(),
		send:    make(chan []byte, 256),
	}
}

// enqueue serializes v into the session's outbound queue. The send is
// non-blocking: a full queue means the peer is too slow and the frame is
// dropped, never queued elsewhere or retried.
func (s *Session) enqueue(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to encode frame: ", err)
		return
	}

	select {
	case s.send <- data:
	default:
		log.WithFields(log.Fields{"session": s.uuid}).
			Warn("Dropped frame for slow session")
	}
}

func (s *Session) sendError(message string) {
	s.enqueue(newErrorFrame(message))
}

// readPump pumps frames from the websocket into the dispatch logic. It runs
// in the connection's handler goroutine; when it returns the session is
// detached from its room before the outbound queue closes, so no other
// session can write to a closed channel.
func (s *Session) readPump() {
	defer func() {
		s.manager.Leave(s)
		close(s.send)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Error("Failed to read message: ", err)
			}
			break
		}

		s.handleFrame(data)
	}
}

// writePump pumps frames from the outbound queue to the websocket and keeps
// the connection alive with pings. It owns all writes to the socket.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("Failed to write message: ", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame decodes one inbound frame and dispatches on its type. Anything
// that does not decode, and any unrecognized type, gets the one generic
// malformed-frame error and no further effect.
func (s *Session) handleFrame(data []byte) {
	f, err := decodeFrame(data)
	if err != nil {
		s.sendError(errInvalidJSON)
		return
	}

	switch f.Type {
	case FrameTypeJoin:
		s.handleJoin(f)
	case FrameTypeSignal:
		s.handleSignal(f)
	default:
		s.sendError(errInvalidJSON)
	}
}

// handleJoin validates the join request and attaches the session to its
// room. Every rejection leaves room and registry state untouched.
func (s *Session) handleJoin(f *frame) {
	if s.joined {
		s.sendError(errAlreadyJoined)
		return
	}

	if f.RoomID == "" || f.Role == "" || f.Token == "" {
		s.sendError(errMissingJoinFields)
		return
	}

	if !ValidRole(f.Role) {
		s.sendError(errInvalidRole)
		return
	}

	if !ValidToken(f.Token) {
		s.sendError(errInvalidToken)
		return
	}

	for {
		room := s.manager.GetOrCreateRoom(f.RoomID)

		rejection, retry := room.join(s, f.Role, f.Token)
		if retry {
			// The room emptied and was reaped between lookup and
			// lock; a fresh one takes its place.
			continue
		}

		if rejection != "" {
			SignalingJoinRejectionsCounter.Inc()
			s.sendError(rejection)
		}
		return
	}
}

// handleSignal relays an opaque payload to the opposite role's occupant.
// Every failure mode is a silent drop: no queuing, no error back to the
// sender, no leaking of room existence.
func (s *Session) handleSignal(f *frame) {
	if !s.joined || f.RoomID != s.roomID || len(f.Payload) == 0 {
		return
	}

	room := s.manager.GetRoom(s.roomID)
	if room == nil {
		return
	}

	room.lock.Lock()
	defer room.lock.Unlock()

	// A stale identity (the room was torn down and recreated under the
	// same id) no longer matches the bound token and relays nothing.
	if room.token != "" && room.token != s.token {
		return
	}

	target := room.target(s.role)
	if target == nil {
		return
	}

	target.enqueue(newSignalFrame(f.Payload))
	SignalingSignalsCounter.Inc()
}
