package handlers

import (
	"net/http"

	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/pkg/adminapi/response"
)

// SessionHandler exposes the session manager's live session list for an
// operator (hgfsctl session list). It never mutates state.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionView struct {
	ID          uint64 `json:"id"`
	CachedNodes int    `json:"cached_nodes"`
	TotalNodes  int    `json:"total_nodes"`
}

// List returns every currently open session with its handle-table
// occupancy.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := h.sessions.ListSessions()
	views := make([]sessionView, 0, len(ids))
	for _, id := range ids {
		sess, ok := h.sessions.GetSession(id)
		if !ok {
			continue
		}
		sess.NodeArrayLock.Lock()
		view := sessionView{
			ID:          id,
			CachedNodes: sess.Nodes.CachedCount(),
			TotalNodes:  sess.Nodes.NumNodes(),
		}
		sess.NodeArrayLock.Unlock()
		views = append(views, view)
	}
	response.JSON(w, http.StatusOK, response.OK(views))
}
