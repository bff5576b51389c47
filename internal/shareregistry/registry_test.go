package shareregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]ShareInfo{
		{Name: "export"},
		{Name: "export"},
	})
	require.Error(t, err)
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New([]ShareInfo{{Name: ""}})
	require.Error(t, err)
}

func TestGetShareAndListShares(t *testing.T) {
	reg, err := New([]ShareInfo{
		{Name: "export", RootPath: "/srv/export", ReadAllowed: true, WriteAllowed: true},
		{Name: "readonly", RootPath: "/srv/ro", ReadAllowed: true},
	})
	require.NoError(t, err)

	s, ok := reg.GetShare("export")
	require.True(t, ok)
	require.Equal(t, "/srv/export", s.RootPath)

	_, ok = reg.GetShare("missing")
	require.False(t, ok)

	require.Len(t, reg.ListShares(), 2)
}

func TestCheckAccess(t *testing.T) {
	reg, err := New(nil)
	require.NoError(t, err)

	readOnly := ShareInfo{Name: "ro", ReadAllowed: true}
	require.Equal(t, Allowed, reg.CheckAccess(readOnly, true, false))
	require.Equal(t, Denied, reg.CheckAccess(readOnly, true, true))

	readWrite := ShareInfo{Name: "rw", ReadAllowed: true, WriteAllowed: true}
	require.Equal(t, Allowed, reg.CheckAccess(readWrite, true, true))
}
