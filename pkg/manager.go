package pkg

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Manager is the process-wide room registry. Rooms are created lazily on
// the first join referencing an unseen id and removed the instant their
// attached-connection set empties. Nothing survives a restart.
type Manager struct {
	lock     sync.RWMutex
	rooms    map[string]*Room
	upgrader websocket.Upgrader
}

func NewManager() *Manager {
	return &Manager{
		lock:  sync.RWMutex{},
		rooms: make(map[string]*Room),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// GetRoom looks a room up without creating it. Used by the signal relay,
// where an unknown room means the message is silently dropped.
func (m *Manager) GetRoom(id string) *Room {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.rooms[id]
}

// GetOrCreateRoom returns the room for id, inserting an empty one (no bound
// token, no occupants) if absent. Concurrent creators for the same unseen id
// observe exactly one room.
func (m *Manager) GetOrCreateRoom(id string) *Room {
	m.lock.Lock()
	defer m.lock.Unlock()

	if room, ok := m.rooms[id]; ok {
		return room
	}

	room := &Room{
		manager: m,
		id:      id,
		clients: make(map[*Session]struct{}),
	}

	m.rooms[id] = room

	SignalingRoomsGauge.Inc()
	log.WithFields(log.Fields{"room": id}).Info("Room created")

	return room
}

// Leave detaches s from its room, clearing the role slot it occupied. The
// room is removed from the registry if s was its last occupant; otherwise
// the remaining occupants get a fresh room-state broadcast. Safe to call
// for sessions that never joined, and idempotent against a racing join to
// the vacated slot: the registry lock is taken before the room lock so
// remove-if-empty and insert-if-absent cannot interleave for the same id.
func (m *Manager) Leave(s *Session) {
	if !s.joined {
		return
	}

	m.lock.Lock()
	room, ok := m.rooms[s.roomID]
	if !ok {
		m.lock.Unlock()
		return
	}

	room.lock.Lock()

	delete(room.clients, s)
	if room.sender == s {
		room.sender = nil
	}
	if room.receiver == s {
		room.receiver = nil
	}

	if len(room.clients) == 0 {
		room.gone = true
		delete(m.rooms, room.id)
		SignalingRoomsGauge.Dec()
		log.WithFields(log.Fields{"room": room.id}).Info("Room deleted")
	} else {
		room.broadcastStateLocked()
	}

	room.lock.Unlock()
	m.lock.Unlock()
}

// HealthHandler reports liveness.
func (m *Manager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SocketHandler upgrades the connection and drives a session until its
// websocket closes.
func (m *Manager) SocketHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade connection: ", err)
		return
	}

	session := newSession(m, conn)

	SignalingSessionsGauge.Inc()
	defer SignalingSessionsGauge.Dec()

	logFields := log.Fields{
		"session": session.uuid,
		"remote":  conn.RemoteAddr().String(),
	}

	log.WithFields(logFields).Info("New session")

	go session.writePump()
	session.readPump()

	log.WithFields(logFields).Info("Closed session")
}
