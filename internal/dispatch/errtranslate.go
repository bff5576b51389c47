package dispatch

import (
	"errors"
	"os"
	"syscall"

	"github.com/hgfsd/hgfsd/internal/nameresolve"
	"github.com/hgfsd/hgfsd/internal/wire"
)

// Internal error taxonomy members that do not correspond to an OS errno
// (spec §7).
var (
	ErrBufferTooSmall = errors.New("dispatch: buffer too small")
	ErrHandleGone     = errors.New("dispatch: handle gone")
	ErrNameEscape     = errors.New("dispatch: name escape")
	ErrNameTooLong    = errors.New("dispatch: name too long")
	ErrUnsupported    = errors.New("dispatch: unsupported")
)

// translateErr maps a host-FS/internal error to the closed protocol status
// enumeration, per the authoritative table in spec §7.
func translateErr(err error) wire.Status {
	if err == nil {
		return wire.StatusSuccess
	}

	switch {
	case errors.Is(err, ErrHandleGone):
		return wire.StatusInvalidHandle
	case errors.Is(err, ErrNameEscape):
		return wire.StatusAccessDenied
	case errors.Is(err, ErrNameTooLong):
		return wire.StatusNameTooLong
	case errors.Is(err, ErrUnsupported):
		return wire.StatusOperationNotSupported
	case errors.Is(err, ErrBufferTooSmall):
		return wire.StatusProtocolError
	case errors.Is(err, os.ErrNotExist):
		return wire.StatusNoSuchFileOrDir
	case errors.Is(err, os.ErrExist):
		return wire.StatusFileExists
	case errors.Is(err, syscall.EPERM):
		return wire.StatusOperationNotPermitted
	case errors.Is(err, os.ErrPermission):
		return wire.StatusAccessDenied
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOENT:
			return wire.StatusNoSuchFileOrDir
		case syscall.EBADF:
			return wire.StatusInvalidHandle
		case syscall.EPERM:
			return wire.StatusOperationNotPermitted
		case syscall.EEXIST:
			return wire.StatusFileExists
		case syscall.ENOTDIR:
			return wire.StatusNotDirectory
		case syscall.ENOTEMPTY:
			return wire.StatusDirNotEmpty
		case syscall.EACCES:
			return wire.StatusAccessDenied
		case syscall.ETXTBSY, syscall.EBUSY:
			return wire.StatusSharingViolation
		case syscall.ENOSPC:
			return wire.StatusNoSpace
		case syscall.EOPNOTSUPP:
			return wire.StatusOperationNotSupported
		case syscall.ENAMETOOLONG:
			return wire.StatusNameTooLong
		}
	}

	return wire.StatusGenericError
}

// translateNameStatus maps a nameresolve.NameStatus rejection to the
// corresponding protocol status.
func translateNameStatus(s nameresolve.NameStatus) wire.Status {
	switch s {
	case nameresolve.Success:
		return wire.StatusSuccess
	case nameresolve.NotFound:
		return wire.StatusNoSuchFileOrDir
	case nameresolve.AccessDenied:
		return wire.StatusAccessDenied
	case nameresolve.NameTooLong:
		return wire.StatusNameTooLong
	case nameresolve.InvalidName:
		return wire.StatusInvalidName
	default:
		return wire.StatusGenericError
	}
}
