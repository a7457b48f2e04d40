package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer wraps the socket.io server together with the maps that track
// live connections and per-room observer plumbing.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket

	// Per-room teardown for the store subscription and the timeout
	// watchdog; entries are refcounted by connected sockets in the room.
	roomWatches map[string]*roomWatch
	// Rooms each username has socket-joined, so disconnects can release
	// their watches without asking the adapter.
	userRooms map[string]map[string]struct{}
	mutex     sync.RWMutex
}

type roomWatch struct {
	refs int
	stop func()
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
		roomWatches:     make(map[string]*roomWatch),
		userRooms:       make(map[string]map[string]struct{}),
	}
}

// TrackUserRoom remembers that username socket-joined roomId.
func (s *SocketServer) TrackUserRoom(username, roomId string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.userRooms[username] == nil {
		s.userRooms[username] = make(map[string]struct{})
	}
	s.userRooms[username][roomId] = struct{}{}
}

// ForgetUserRoom drops the membership record for one room.
func (s *SocketServer) ForgetUserRoom(username, roomId string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.userRooms[username], roomId)
}

// DrainUserRooms returns and clears every room username was tracked in.
func (s *SocketServer) DrainUserRooms(username string) []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	roomIds := make([]string, 0, len(s.userRooms[username]))
	for roomId := range s.userRooms[username] {
		roomIds = append(roomIds, roomId)
	}
	delete(s.userRooms, username)
	return roomIds
}

func (s *SocketServer) AddConnection(username string, socket *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = socket
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	socket, exists := s.UserConnections[username]
	return socket, exists
}

// AcquireRoomWatch bumps the observer count for roomId. The first observer
// gets true and must call start() to set things up; start's return value is
// kept as the teardown callback.
func (s *SocketServer) AcquireRoomWatch(roomId string, start func() func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if w, ok := s.roomWatches[roomId]; ok {
		w.refs++
		return
	}
	s.roomWatches[roomId] = &roomWatch{refs: 1, stop: start()}
}

// ReleaseRoomWatch drops one observer; the last one out tears everything down.
func (s *SocketServer) ReleaseRoomWatch(roomId string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	w, ok := s.roomWatches[roomId]
	if !ok {
		return
	}
	w.refs--
	if w.refs > 0 {
		return
	}
	delete(s.roomWatches, roomId)
	if w.stop != nil {
		w.stop()
	}
}
