package hostfs

import (
	"os"
	"syscall"
	"time"
)

func devIno(fi os.FileInfo) (dev, ino uint64) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Dev), st.Ino
	}
	return 0, 0
}

// OSFS implements FS against the real operating system.
type OSFS struct{}

// NewOSFS returns an FS backed by the os package.
func NewOSFS() *OSFS { return &OSFS{} }

func infoFromOS(fi os.FileInfo) Info {
	dev, ino := devIno(fi)
	return Info{
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
		IsLink:  fi.Mode()&os.ModeSymlink != 0,
		Dev:     dev,
		Ino:     ino,
	}
}

func (OSFS) Lstat(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFromOS(fi), nil
}

func (OSFS) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

func (OSFS) ReadDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

func (OSFS) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &osFile{f}, nil
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFS) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (OSFS) Symlink(target, path string) error {
	return os.Symlink(target, path)
}

func (OSFS) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (OSFS) Chtimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (OSFS) StatVolume(path string) (VolumeStat, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return VolumeStat{}, err
	}
	blockSize := uint64(stat.Bsize)
	return VolumeStat{
		FreeBytes:  stat.Bavail * blockSize,
		TotalBytes: stat.Blocks * blockSize,
	}, nil
}

type osFile struct {
	*os.File
}

func (f *osFile) Stat() (Info, error) {
	fi, err := f.File.Stat()
	if err != nil {
		return Info{}, err
	}
	return infoFromOS(fi), nil
}

func (f *osFile) Truncate(size int64) error {
	return f.File.Truncate(size)
}
