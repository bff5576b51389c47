package handletable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCloseRoundTrip(t *testing.T) {
	tbl := New(64, 8)
	h, err := tbl.Open(FileNode{Path: "/a"}, true, nil)
	require.NoError(t, err)

	n, err := tbl.Lookup(h)
	require.NoError(t, err)
	require.Equal(t, "/a", n.Path)

	_, err = tbl.Close(h)
	require.NoError(t, err)
}

func TestCloseOnUnusedHandleIsInvalid(t *testing.T) {
	tbl := New(64, 8)
	h, err := tbl.Open(FileNode{Path: "/a"}, true, nil)
	require.NoError(t, err)

	_, err = tbl.Close(h)
	require.NoError(t, err)

	// Closing the same handle twice must not be idempotent success (spec
	// §4.5): the slot is now Unused.
	_, err = tbl.Close(h)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestStaleHandleAfterReuseIsInvalid(t *testing.T) {
	tbl := New(64, 8)
	h1, err := tbl.Open(FileNode{Path: "/a"}, true, nil)
	require.NoError(t, err)
	_, err = tbl.Close(h1)
	require.NoError(t, err)

	h2, err := tbl.Open(FileNode{Path: "/b"}, true, nil)
	require.NoError(t, err)
	require.Equal(t, h1.index(), h2.index(), "slot should be reused from the free list")
	require.NotEqual(t, h1, h2, "generation must differ so the stale handle is rejected")

	_, err = tbl.Lookup(h1)
	require.ErrorIs(t, err, ErrInvalidHandle)

	n2, err := tbl.Lookup(h2)
	require.NoError(t, err)
	require.Equal(t, "/b", n2.Path)
}

func TestTwoOpensOfSameFileGetDistinctHandles(t *testing.T) {
	tbl := New(64, 8)
	h1, err := tbl.Open(FileNode{Path: "/a", LocalID: LocalID{FileID: 1}}, true, nil)
	require.NoError(t, err)
	h2, err := tbl.Open(FileNode{Path: "/a", LocalID: LocalID{FileID: 1}}, true, nil)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestCachedCountNeverExceedsCapAndEvictsLRU(t *testing.T) {
	tbl := New(64, 2)
	var evicted []string
	onEvict := func(n *FileNode) { evicted = append(evicted, n.Path) }

	h1, err := tbl.Open(FileNode{Path: "/1"}, true, onEvict)
	require.NoError(t, err)
	_, err = tbl.Open(FileNode{Path: "/2"}, true, onEvict)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.CachedCount())

	// Touching h1 moves it to MRU, so /2 becomes the eviction candidate
	// instead on the next insert... but we touch h1 here to prove /1 stays.
	require.NoError(t, tbl.Touch(h1))

	_, err = tbl.Open(FileNode{Path: "/3"}, true, onEvict)
	require.NoError(t, err)

	require.LessOrEqual(t, tbl.CachedCount(), 2)
	require.Equal(t, []string{"/2"}, evicted)

	n1, err := tbl.Lookup(h1)
	require.NoError(t, err)
	require.Equal(t, StateInUseCached, n1.state)
}

func TestEvictedNodeBecomesUncachedStub(t *testing.T) {
	tbl := New(64, 1)
	h1, err := tbl.Open(FileNode{Path: "/1"}, true, nil)
	require.NoError(t, err)

	_, err = tbl.Open(FileNode{Path: "/2"}, true, nil)
	require.NoError(t, err)

	n1, err := tbl.Lookup(h1)
	require.NoError(t, err)
	require.Equal(t, StateInUseNotCached, n1.state)
	require.Nil(t, n1.fd)
}

func TestOplockNodeNeverEvicted(t *testing.T) {
	tbl := New(64, 1)
	h1, err := tbl.Open(FileNode{Path: "/locked"}, true, nil)
	require.NoError(t, err)
	require.NoError(t, tbl.SetOplock(h1, 1))

	var evicted []string
	_, err = tbl.Open(FileNode{Path: "/2"}, true, func(n *FileNode) { evicted = append(evicted, n.Path) })
	require.NoError(t, err)

	require.Empty(t, evicted, "oplock holder must never be chosen for eviction")
	n1, err := tbl.Lookup(h1)
	require.NoError(t, err)
	require.Equal(t, uint8(1), n1.OplockKind)
}

func TestNumNodesInvariant(t *testing.T) {
	tbl := New(4, 4)
	require.Equal(t, 4, tbl.NumNodes())
}
