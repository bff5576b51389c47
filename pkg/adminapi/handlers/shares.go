package handlers

import (
	"net/http"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
	"github.com/hgfsd/hgfsd/pkg/adminapi/response"
)

// ShareHandler exposes the frozen share registry for inspection by an
// operator (hgfsctl share list). The registry itself is read-only for the
// server's lifetime; the only I/O this handler performs is the same
// StatVolume call QueryVolume makes on the guest-facing protocol (spec
// §4.7), so an operator's capacity view matches what a guest would see.
type ShareHandler struct {
	shares *shareregistry.Registry
	fs     hostfs.FS
}

// NewShareHandler builds a ShareHandler.
func NewShareHandler(shares *shareregistry.Registry, fs hostfs.FS) *ShareHandler {
	return &ShareHandler{shares: shares, fs: fs}
}

// shareView is the wire shape returned to hgfsctl; it mirrors
// shareregistry.ShareInfo field-for-field, plus the live capacity of the
// filesystem backing the share's root, but keeps the HTTP contract
// decoupled from that type's Go layout.
type shareView struct {
	Name           string `json:"name"`
	RootPath       string `json:"root_path"`
	ReadAllowed    bool   `json:"read_allowed"`
	WriteAllowed   bool   `json:"write_allowed"`
	CaseSensitive  bool   `json:"case_sensitive"`
	FollowSymlinks bool   `json:"follow_symlinks"`
	FreeBytes      uint64 `json:"free_bytes"`
	TotalBytes     uint64 `json:"total_bytes"`
}

// List returns every configured share.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	shares := h.shares.ListShares()
	views := make([]shareView, 0, len(shares))
	for _, s := range shares {
		view := shareView{
			Name:           s.Name,
			RootPath:       s.RootPath,
			ReadAllowed:    s.ReadAllowed,
			WriteAllowed:   s.WriteAllowed,
			CaseSensitive:  s.CaseSensitive,
			FollowSymlinks: s.FollowSymlinks,
		}
		if stat, err := h.fs.StatVolume(s.RootPath); err != nil {
			logger.Debug("adminapi: statvolume failed", "share", s.Name, "error", err)
		} else {
			view.FreeBytes = stat.FreeBytes
			view.TotalBytes = stat.TotalBytes
		}
		views = append(views, view)
	}
	response.JSON(w, http.StatusOK, response.OK(views))
}
