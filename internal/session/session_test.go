package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hgfsd/hgfsd/internal/handletable"
)

func noopSend([]byte) error { return nil }

func TestNewSessionStartsOpen(t *testing.T) {
	s := New(1, KindRegular, noopSend, 16, 4)
	require.Equal(t, StatusOpen, s.StatusNow())
}

func TestCloseDrainsOpenHandles(t *testing.T) {
	s := New(1, KindRegular, noopSend, 16, 4)
	_, err := s.Nodes.Open(handletable.FileNode{Path: "/a"}, true, nil)
	require.NoError(t, err)
	_, err = s.Nodes.Open(handletable.FileNode{Path: "/b"}, true, nil)
	require.NoError(t, err)

	var closedPaths []string
	s.Close(func(n *handletable.FileNode) { closedPaths = append(closedPaths, n.Path) })

	require.ElementsMatch(t, []string{"/a", "/b"}, closedPaths)
	require.Equal(t, StatusClosed, s.StatusNow())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(1, KindRegular, noopSend, 16, 4)
	calls := 0
	s.Close(func(*handletable.FileNode) { calls++ })
	s.Close(func(*handletable.FileNode) { calls++ })
	require.Equal(t, 0, calls)
}

func TestManagerCreateGetRemove(t *testing.T) {
	m := NewManager(16, 4)
	s := m.CreateSession(KindRegular, noopSend)

	got, ok := m.GetSession(s.ID)
	require.True(t, ok)
	require.Same(t, s, got)

	m.RemoveSession(s.ID, nil)
	_, ok = m.GetSession(s.ID)
	require.False(t, ok)
	require.Equal(t, StatusClosed, s.StatusNow())
}

func TestManagerShutdownDrainsAllSessions(t *testing.T) {
	m := NewManager(16, 4)
	s1 := m.CreateSession(KindRegular, noopSend)
	s2 := m.CreateSession(KindRegular, noopSend)
	_, err := s1.Nodes.Open(handletable.FileNode{Path: "/x"}, true, nil)
	require.NoError(t, err)

	var closed int
	m.Shutdown(func(*handletable.FileNode) { closed++ })

	require.Equal(t, 1, closed)
	require.Equal(t, StatusClosed, s1.StatusNow())
	require.Equal(t, StatusClosed, s2.StatusNow())
	require.Empty(t, m.ListSessions())
}

func TestReleaseRunsOnFinalOnlyAfterCloseAndZeroRefs(t *testing.T) {
	s := New(1, KindRegular, noopSend, 16, 4)
	s.Acquire()

	finalCalls := 0
	onFinal := func() { finalCalls++ }

	s.Release(onFinal)
	require.Equal(t, 0, finalCalls, "refs still > 0, no final cleanup yet")

	s.Close(nil)
	s.Release(onFinal)
	require.Equal(t, 1, finalCalls)
}
