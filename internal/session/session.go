// Package session manages the lifecycle of per-connection Session objects:
// creation, reference counting, the three per-session locks that
// serialize handle-table and search-table mutation, and shutdown draining
// that closes every still-open handle (spec §3 "Session", §5).
package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hgfsd/hgfsd/internal/handletable"
	"github.com/hgfsd/hgfsd/internal/search"
)

// Status is a Session's lifecycle state.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
)

// Kind distinguishes guest-facing sessions from internally created ones
// (e.g. a session the server itself uses at startup).
type Kind int

const (
	KindRegular Kind = iota
	KindInternal
)

// SendFunc delivers a reply buffer back over the session's transport.
type SendFunc func(reply []byte) error

// Session is shared (reference-counted) by the dispatcher and the
// transport. Its three locks are always acquired in one documented order —
// FileIOLock, then NodeArrayLock, then SearchArrayLock — to prevent
// deadlocks between handlers that must hold more than one at a time.
type Session struct {
	ID uint64
	// TraceID is a random correlation ID stamped once at session creation,
	// independent of the small, reused numeric ID — useful for tying
	// together log lines and metrics across a session's lifetime even
	// after its numeric ID has been recycled by a later connection.
	TraceID string
	Kind    Kind
	send    SendFunc

	mu     sync.Mutex
	status Status
	refs   int32

	// FileIOLock serializes read/write against a single handle so that
	// concurrent requests on the same FileNode cannot interleave.
	FileIOLock sync.Mutex
	// NodeArrayLock guards the FileNode table: allocation, lookup, LRU
	// touch, eviction, and free.
	NodeArrayLock sync.Mutex
	// SearchArrayLock guards the search-state table.
	SearchArrayLock sync.Mutex

	Nodes    *handletable.Table
	Searches *search.Table
}

// New creates an Open session with refcount 1, owned by the caller.
func New(id uint64, kind Kind, send SendFunc, maxNodes, maxCachedNodes int) *Session {
	return &Session{
		ID:       id,
		TraceID:  uuid.New().String(),
		Kind:     kind,
		send:     send,
		status:   StatusOpen,
		refs:     1,
		Nodes:    handletable.New(maxNodes, maxCachedNodes),
		Searches: search.New(),
	}
}

// Send delivers a reply buffer over the session's transport.
func (s *Session) Send(reply []byte) error {
	return s.send(reply)
}

// Acquire increments the reference count. Callers that hand out a Session
// pointer beyond their own scope (e.g. a handler running in its own
// goroutine) must Acquire before doing so and Release when done.
func (s *Session) Acquire() {
	atomic.AddInt32(&s.refs, 1)
}

// Release decrements the reference count. If it reaches zero after the
// session has been Closed, onFinal runs exactly once.
func (s *Session) Release(onFinal func()) {
	if atomic.AddInt32(&s.refs, -1) != 0 {
		return
	}
	s.mu.Lock()
	closed := s.status == StatusClosed
	s.mu.Unlock()
	if closed && onFinal != nil {
		onFinal()
	}
}

// Close transitions the session to Closed, drains every still-open
// handle, closing each node's host descriptor via closeNode, and discards
// every open search. Close is idempotent: calling it twice is a no-op the second
// time.
func (s *Session) Close(closeNode func(*handletable.FileNode)) {
	s.mu.Lock()
	if s.status == StatusClosed {
		s.mu.Unlock()
		return
	}
	s.status = StatusClosed
	s.mu.Unlock()

	s.NodeArrayLock.Lock()
	for _, h := range s.Nodes.ActiveHandles() {
		if n, err := s.Nodes.Lookup(h); err == nil {
			if closeNode != nil {
				closeNode(n)
			}
			s.Nodes.Close(h)
		}
	}
	s.NodeArrayLock.Unlock()

	s.SearchArrayLock.Lock()
	s.Searches = search.New()
	s.SearchArrayLock.Unlock()
}

// StatusNow reports the session's current lifecycle state.
func (s *Session) StatusNow() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Manager owns the map of live sessions, keyed by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
	nextID   atomic.Uint64

	maxNodes       int
	maxCachedNodes int
}

// NewManager creates an empty session manager. Every session it creates
// gets the same node-array sizing; SPEC_FULL §6 exposes these as server
// config.
func NewManager(maxNodes, maxCachedNodes int) *Manager {
	return &Manager{
		sessions:       make(map[uint64]*Session),
		maxNodes:       maxNodes,
		maxCachedNodes: maxCachedNodes,
	}
}

// CreateSession allocates a new session ID and registers a Session for it.
func (m *Manager) CreateSession(kind Kind, send SendFunc) *Session {
	id := m.nextID.Add(1)
	s := New(id, kind, send, m.maxNodes, m.maxCachedNodes)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// GetSession returns the session for id, if it still exists.
func (m *Manager) GetSession(id uint64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// RemoveSession closes and unregisters the session for id.
func (m *Manager) RemoveSession(id uint64, closeNode func(*handletable.FileNode)) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close(closeNode)
	}
}

// ListSessions returns every currently registered session ID.
func (m *Manager) ListSessions() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown closes every registered session, draining their handles.
func (m *Manager) Shutdown(closeNode func(*handletable.FileNode)) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uint64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close(closeNode)
	}
}
