package logger

import (
	"fmt"
	"log/slog"

	"github.com/hgfsd/hgfsd/internal/wire"
)

// Standard field keys for structured logging across the HGFS server. Use
// these keys consistently in every log call that carries the same kind of
// value, so log aggregation and querying doesn't have to guess between
// "handle" and "file_handle" for the same thing.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // Session-lifetime correlation ID (session.Session.TraceID)
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Protocol & Operation
	// ========================================================================
	KeyOpcode    = "opcode"    // Wire opcode (operation + version folded into one value)
	KeyOperation = "operation" // Operation family name, independent of wire version
	KeyVersion   = "version"   // Negotiated payload version for the operation
	KeyHandle    = "handle"    // File or search handle (opaque per-session identifier)
	KeyShare     = "share"     // Share name as exposed in the guest's CP-name namespace
	KeyStatus    = "status"    // wire.Status reply code
	KeyStatusMsg = "status_msg"

	// ========================================================================
	// File System Operations
	// ========================================================================
	KeyPath       = "path"        // Host-side resolved path
	KeyFilename   = "filename"    // File or directory name (basename)
	KeyParentPath = "parent_path" // Parent directory path
	KeyOldPath    = "old_path"    // Source path for rename operations
	KeyNewPath    = "new_path"    // Destination path for rename operations
	KeyType       = "type"        // File type: file, directory, symlink
	KeySize       = "size"        // File size in bytes
	KeyMode       = "mode"        // File mode/permissions (Unix-style)

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyOffset       = "offset"
	KeyCount        = "count"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"
	KeyEOF          = "eof"
	KeyStable       = "stable" // Write durability level; no HGFS request in this server carries one

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeySessionID    = "session_id"    // session.Session.ID, the small reused numeric ID
	KeyConnectionID = "connection_id" // Transport-level connection identifier
	KeyRequestID    = "request_id"    // Per-request packet ID from the wire header
	KeySnapshotID   = "snapshot_id"   // Correlation ID stamped on a directory search snapshot

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientAddr = "client_addr" // Transport-level peer address

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyWorker     = "worker" // Dispatch worker slot handling a session

	// ========================================================================
	// Directory Search
	// ========================================================================
	KeyEntries   = "entries"   // Number of directory entries returned
	KeyIndex     = "index"     // Search-read continuation index
	KeyMaxCount  = "max_count" // Maximum entries requested
	KeyEndOfDir  = "end_of_dir"
	KeySearchKind = "search_kind" // search.Kind: directory snapshot vs virtual share list

	// ========================================================================
	// Symlinks
	// ========================================================================
	KeyLinkTarget = "link_target" // Symbolic link target path

	// ========================================================================
	// Oplocks
	// ========================================================================
	KeyOplockLevel = "oplock_level" // Requested/granted oplock level (spec §4.8)
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for the session's correlation ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Protocol & Operation
// ----------------------------------------------------------------------------

// Opcode returns a slog.Attr for a wire.Opcode, logged by its decoded
// operation name rather than the bare numeric value, falling back to the
// number if the opcode isn't in the table (e.g. corrupt input).
func Opcode(oc wire.Opcode) slog.Attr {
	if op, version, ok := oc.Decode(); ok {
		return slog.String(KeyOpcode, fmt.Sprintf("%s.v%d", op, version))
	}
	return slog.Any(KeyOpcode, uint32(oc))
}

// Op returns a slog.Attr for an operation family name.
func Op(op wire.Operation) slog.Attr {
	return slog.String(KeyOperation, op.String())
}

// Version returns a slog.Attr for a negotiated operation version.
func Version(v int) slog.Attr {
	return slog.Int(KeyVersion, v)
}

// Handle returns a slog.Attr for a file or search handle.
func Handle(h uint32) slog.Attr {
	return slog.Any(KeyHandle, h)
}

// Share returns a slog.Attr for a share name.
func Share(name string) slog.Attr {
	return slog.String(KeyShare, name)
}

// Status returns a slog.Attr for a wire.Status reply code, logged by name.
func Status(s wire.Status) slog.Attr {
	return slog.String(KeyStatus, s.String())
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// ----------------------------------------------------------------------------
// File System Operations
// ----------------------------------------------------------------------------

// Path returns a slog.Attr for a file/directory path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a slog.Attr for a filename (basename).
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// ParentPath returns a slog.Attr for a parent directory path.
func ParentPath(p string) slog.Attr {
	return slog.String(KeyParentPath, p)
}

// OldPath returns a slog.Attr for the source path of a rename.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path of a rename.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// TypeStr returns a slog.Attr for a file type string.
func TypeStr(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// Size returns a slog.Attr for a file size.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Mode returns a slog.Attr for a file mode/permissions value.
func Mode(m uint32) slog.Attr {
	return slog.Any(KeyMode, m)
}

// ----------------------------------------------------------------------------
// I/O Operations
// ----------------------------------------------------------------------------

// Offset returns a slog.Attr for a file offset.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Count returns a slog.Attr for a byte count requested.
func Count(c uint32) slog.Attr {
	return slog.Any(KeyCount, c)
}

// BytesRead returns a slog.Attr for actual bytes read.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// EOF returns a slog.Attr for an end-of-file indicator.
func EOF(eof bool) slog.Attr {
	return slog.Bool(KeyEOF, eof)
}

// Stable returns a slog.Attr for the write durability level requested.
func Stable(s int) slog.Attr {
	return slog.Int(KeyStable, s)
}

// ----------------------------------------------------------------------------
// Session & Connection
// ----------------------------------------------------------------------------

// SessionID returns a slog.Attr for a session's numeric ID.
func SessionID(id uint64) slog.Attr {
	return slog.Uint64(KeySessionID, id)
}

// ConnectionID returns a slog.Attr for a transport connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for a wire packet's request ID.
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// SnapshotID returns a slog.Attr for a directory search's snapshot ID.
func SnapshotID(id string) slog.Attr {
	return slog.String(KeySnapshotID, id)
}

// ----------------------------------------------------------------------------
// Client Identification
// ----------------------------------------------------------------------------

// ClientAddr returns a slog.Attr for the transport-level peer address.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or a no-op Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Worker returns a slog.Attr for the dispatch worker slot handling a session.
func Worker(n int) slog.Attr {
	return slog.Int(KeyWorker, n)
}

// ----------------------------------------------------------------------------
// Directory Search
// ----------------------------------------------------------------------------

// Entries returns a slog.Attr for a number of directory entries.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// Index returns a slog.Attr for a search-read continuation index.
func Index(i uint32) slog.Attr {
	return slog.Any(KeyIndex, i)
}

// MaxCount returns a slog.Attr for the maximum entries requested.
func MaxCount(n uint32) slog.Attr {
	return slog.Any(KeyMaxCount, n)
}

// EndOfDir returns a slog.Attr for whether a search read reached the end.
func EndOfDir(eod bool) slog.Attr {
	return slog.Bool(KeyEndOfDir, eod)
}

// SearchKind returns a slog.Attr describing whether a search enumerates a
// host directory or the virtual share list.
func SearchKind(kind string) slog.Attr {
	return slog.String(KeySearchKind, kind)
}

// ----------------------------------------------------------------------------
// Symlinks
// ----------------------------------------------------------------------------

// LinkTarget returns a slog.Attr for a symbolic link target path.
func LinkTarget(target string) slog.Attr {
	return slog.String(KeyLinkTarget, target)
}

// ----------------------------------------------------------------------------
// Oplocks
// ----------------------------------------------------------------------------

// OplockLevel returns a slog.Attr for a requested/granted oplock level.
func OplockLevel(level int) slog.Attr {
	return slog.Int(KeyOplockLevel, level)
}
