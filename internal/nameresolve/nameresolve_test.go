package nameresolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
)

func newTestResolver(t *testing.T, share shareregistry.ShareInfo) (*Resolver, *hostfs.FakeFS) {
	t.Helper()
	fs := hostfs.NewFakeFS()
	reg, err := shareregistry.New([]shareregistry.ShareInfo{share})
	require.NoError(t, err)
	return New(reg, fs), fs
}

func buf(parts ...string) []byte {
	var out []byte
	for i, p := range parts {
		out = append(out, []byte(p)...)
		if i != len(parts)-1 {
			out = append(out, 0)
		}
	}
	return out
}

func TestResolveSimpleFile(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, WriteAllowed: true, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.WriteFile("/srv/export/dir/file.txt", []byte("hi"), 0644)

	path, status := r.Resolve(Request{Buffer: buf("export", "dir", "file.txt"), WantRead: true})
	require.Equal(t, Success, status)
	require.Equal(t, "/srv/export/dir/file.txt", path)
}

func TestResolveUnknownShare(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true}
	r, _ := newTestResolver(t, share)

	_, status := r.Resolve(Request{Buffer: buf("nope", "file"), WantRead: true})
	require.Equal(t, NotFound, status)
}

func TestResolveAccessDeniedOnWriteToReadOnlyShare(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true}
	r, fs := newTestResolver(t, share)
	fs.WriteFile("/srv/export/file.txt", nil, 0644)

	_, status := r.Resolve(Request{Buffer: buf("export", "file.txt"), WantWrite: true})
	require.Equal(t, AccessDenied, status)
}

func TestResolveSymlinkEscapeDenied(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, FollowSymlinks: true, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.MkdirAll("/srv/export", 0755)
	fs.MakeSymlink("/srv/export/escape", "/etc/passwd")

	_, status := r.Resolve(Request{Buffer: buf("export", "escape"), WantRead: true})
	require.Equal(t, AccessDenied, status)
}

func TestResolveSymlinkWithinRootAllowed(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, FollowSymlinks: true, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.WriteFile("/srv/export/real/target.txt", []byte("data"), 0644)
	fs.MakeSymlink("/srv/export/link", "/srv/export/real")

	path, status := r.Resolve(Request{Buffer: buf("export", "link"), WantRead: true})
	require.Equal(t, Success, status)
	require.Equal(t, "/srv/export/real", path)
}

func TestResolveNoFollowSymlinksRejectsSymlinkComponent(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, FollowSymlinks: false, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.WriteFile("/srv/export/real/target.txt", []byte("data"), 0644)
	fs.MakeSymlink("/srv/export/link", "/srv/export/real")

	_, status := r.Resolve(Request{Buffer: buf("export", "link"), WantRead: true})
	require.Equal(t, AccessDenied, status)
}

// TestResolveTwoHopSymlinkChainEscapeDenied covers a chain where the first
// hop's target is still lexically inside the share root, but that target
// is itself a symlink pointing outside: a -> "b" (relative, in-root), then
// b -> "/etc" (escapes). A string-only check of the first hop's resolved
// path would pass it through, letting the host transparently dereference
// b when the next component is joined and Lstat'd.
func TestResolveTwoHopSymlinkChainEscapeDenied(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, FollowSymlinks: true, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.MkdirAll("/srv/export", 0755)
	fs.MakeSymlink("/srv/export/a", "b")
	fs.MakeSymlink("/srv/export/b", "/etc")

	_, status := r.Resolve(Request{Buffer: buf("export", "a", "passwd"), WantRead: true})
	require.Equal(t, AccessDenied, status)
}

func TestResolveCaseInsensitiveCanonicalization(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, CaseSensitive: false}
	r, fs := newTestResolver(t, share)
	fs.WriteFile("/srv/export/Documents/Report.TXT", []byte("x"), 0644)

	path, status := r.Resolve(Request{Buffer: buf("export", "documents", "report.txt"), WantRead: true})
	require.Equal(t, Success, status)
	require.Equal(t, "/srv/export/Documents/Report.TXT", path)
}

func TestResolveRejectsDotDotComponent(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, CaseSensitive: true}
	r, _ := newTestResolver(t, share)

	_, status := r.Resolve(Request{Buffer: buf("export", "..", "etc"), WantRead: true})
	require.Equal(t, InvalidName, status)
}

func TestResolveCreateCaseFinalComponentMayNotExist(t *testing.T) {
	share := shareregistry.ShareInfo{Name: "export", RootPath: "/srv/export", ReadAllowed: true, WriteAllowed: true, CaseSensitive: true}
	r, fs := newTestResolver(t, share)
	fs.MkdirAll("/srv/export/dir", 0755)

	path, status := r.Resolve(Request{Buffer: buf("export", "dir", "new.txt"), WantWrite: true})
	require.Equal(t, Success, status)
	require.Equal(t, "/srv/export/dir/new.txt", path)
}
