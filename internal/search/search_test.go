package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/wire"
)

func TestDirSourceFiltersDotEntries(t *testing.T) {
	fs := hostfs.NewFakeFS()
	fs.WriteFile("/export/a.txt", nil, 0644)
	fs.MkdirAll("/export/sub", 0755)

	tbl := New()
	h, err := tbl.Open(KindDir, NewDirSource(fs, "/export"))
	require.NoError(t, err)

	var names []string
	for i := uint32(0); ; i++ {
		e, eod, err := tbl.Read(h, i)
		require.NoError(t, err)
		if eod {
			break
		}
		names = append(names, string(e.Name))
	}
	require.ElementsMatch(t, []string{"a.txt", "sub"}, names)
}

func TestSearchSnapshotIsStableAcrossHostChanges(t *testing.T) {
	fs := hostfs.NewFakeFS()
	fs.WriteFile("/export/a.txt", nil, 0644)

	tbl := New()
	h, err := tbl.Open(KindDir, NewDirSource(fs, "/export"))
	require.NoError(t, err)

	e0, eod, err := tbl.Read(h, 0)
	require.NoError(t, err)
	require.False(t, eod)
	require.Equal(t, "a.txt", string(e0.Name))

	// Mutate the host directory after the snapshot was captured.
	fs.WriteFile("/export/b.txt", nil, 0644)
	fs.Remove("/export/a.txt")

	// (S1) Re-reading the same index still returns the same entry.
	e0Again, eod, err := tbl.Read(h, 0)
	require.NoError(t, err)
	require.False(t, eod)
	require.Equal(t, e0, e0Again)

	_, eod, err = tbl.Read(h, 1)
	require.NoError(t, err)
	require.True(t, eod)
}

func TestVirtualSearchOverShareList(t *testing.T) {
	src := &SliceSource{Entries: []wire.DirEntry{
		{Type: wire.FileTypeDirectory, Name: []byte("export")},
		{Type: wire.FileTypeDirectory, Name: []byte("readonly")},
	}}
	tbl := New()
	h, err := tbl.Open(KindOther, src)
	require.NoError(t, err)

	e, eod, err := tbl.Read(h, 1)
	require.NoError(t, err)
	require.False(t, eod)
	require.Equal(t, "readonly", string(e.Name))
}

func TestSearchCloseInvalidatesHandle(t *testing.T) {
	src := &SliceSource{}
	tbl := New()
	h, err := tbl.Open(KindOther, src)
	require.NoError(t, err)
	require.NoError(t, tbl.Close(h))

	_, _, err = tbl.Read(h, 0)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestSearchSlotReuseGetsNewGeneration(t *testing.T) {
	tbl := New()
	h1, err := tbl.Open(KindOther, &SliceSource{})
	require.NoError(t, err)
	require.NoError(t, tbl.Close(h1))

	h2, err := tbl.Open(KindOther, &SliceSource{})
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	_, _, err = tbl.Read(h1, 0)
	require.ErrorIs(t, err, ErrInvalidHandle)
}
