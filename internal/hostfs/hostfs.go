// Package hostfs defines the host filesystem surface consumed by the name
// resolver, handle table, and dispatcher. It is the one seam in the server
// that touches real files, so every caller goes through this interface
// rather than the os package directly — that keeps the rest of the tree
// testable against FakeFS without a real disk.
package hostfs

import (
	"io"
	"os"
	"time"
)

// Info is the subset of host file metadata the server cares about.
type Info struct {
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
	IsLink  bool
	// Dev/Ino identify the host file independent of path, used to build a
	// FileNode's LocalId.
	Dev uint64
	Ino uint64
}

// VolumeStat reports free/total space for QueryVolume.
type VolumeStat struct {
	FreeBytes  uint64
	TotalBytes uint64
}

// File is an open host file descriptor.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	// Stat returns the current metadata of the open file.
	Stat() (Info, error)
	// Truncate resizes the file.
	Truncate(size int64) error
}

// FS is the host filesystem operations the server needs.
//
// Every method takes an absolute, already-resolved host path; path
// resolution itself (the symlink-escape check, case folding) is the name
// resolver's job, not this interface's.
type FS interface {
	// ========================================================================
	// Metadata
	// ========================================================================

	// Lstat reports metadata without following a trailing symlink.
	Lstat(path string) (Info, error)
	// Readlink reads the target of a symlink.
	Readlink(path string) (string, error)
	// ReadDirNames lists the raw entry names of a directory, in host order.
	ReadDirNames(path string) ([]string, error)

	// ========================================================================
	// File Operations
	// ========================================================================

	// OpenFile opens path with the given os.O_* flags and permission bits.
	OpenFile(path string, flag int, perm os.FileMode) (File, error)
	// Remove removes a file, empty directory, or symlink.
	Remove(path string) error
	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error
	// Mkdir creates a directory with the given permission bits.
	Mkdir(path string, perm os.FileMode) error
	// Symlink creates a symlink at path pointing at target.
	Symlink(target, path string) error
	// Chmod sets a file's permission bits.
	Chmod(path string, mode os.FileMode) error
	// Chtimes sets a file's access and modification times.
	Chtimes(path string, atime, mtime time.Time) error

	// ========================================================================
	// Volume
	// ========================================================================

	// StatVolume reports free/total bytes of the filesystem containing path.
	StatVolume(path string) (VolumeStat, error)
}
