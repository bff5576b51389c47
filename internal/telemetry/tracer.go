package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hgfsd/hgfsd/internal/wire"
)

// Attribute keys for HGFS protocol operations, following OpenTelemetry
// semantic convention style ("fs." prefix) rather than inventing a
// per-protocol namespace, since the server speaks exactly one wire protocol.
const (
	AttrClientAddr = "client.address"

	AttrOperation = "fs.operation" // wire.Operation name, version-independent
	AttrOpcode    = "fs.opcode"    // wire.Opcode, operation+version folded together
	AttrHandle    = "fs.handle"    // File or search handle
	AttrShare     = "fs.share"     // Share name in the guest's CP-name namespace
	AttrPath      = "fs.path"      // Host-resolved path
	AttrFilename  = "fs.filename"
	AttrOffset    = "fs.offset"
	AttrCount     = "fs.count"
	AttrSize      = "fs.size"
	AttrStatus    = "fs.status" // wire.Status reply code, by name
	AttrEOF       = "fs.eof"

	AttrSessionID  = "session.id"
	AttrTraceID    = "session.trace_id"
	AttrSnapshotID = "search.snapshot_id"
)

// Span names for HGFS operations and internal components.
const (
	SpanRequest = "hgfs.request" // Root span for one dispatched request

	SpanOpen         = "hgfs.Open"
	SpanRead         = "hgfs.Read"
	SpanWrite        = "hgfs.Write"
	SpanClose        = "hgfs.Close"
	SpanGetAttr      = "hgfs.GetAttr"
	SpanSetAttr      = "hgfs.SetAttr"
	SpanSearchOpen   = "hgfs.SearchOpen"
	SpanSearchRead   = "hgfs.SearchRead"
	SpanSearchClose  = "hgfs.SearchClose"
	SpanCreateDir    = "hgfs.CreateDir"
	SpanDelete       = "hgfs.Delete"
	SpanRename       = "hgfs.Rename"
	SpanQueryVolume  = "hgfs.QueryVolume"
	SpanSymlink      = "hgfs.SymlinkCreate"
	SpanOplockChange = "hgfs.OplockChange"
	SpanStreamWrite  = "hgfs.StreamWrite"

	SpanNameResolve = "nameresolve.resolve"
	SpanHandleOpen  = "handletable.open"
)

var operationSpanNames = [...]string{
	wire.OpOpen:          SpanOpen,
	wire.OpRead:          SpanRead,
	wire.OpWrite:         SpanWrite,
	wire.OpClose:         SpanClose,
	wire.OpGetAttr:       SpanGetAttr,
	wire.OpSetAttr:       SpanSetAttr,
	wire.OpSearchOpen:    SpanSearchOpen,
	wire.OpSearchRead:    SpanSearchRead,
	wire.OpSearchClose:   SpanSearchClose,
	wire.OpCreateDir:     SpanCreateDir,
	wire.OpDelete:        SpanDelete,
	wire.OpRename:        SpanRename,
	wire.OpQueryVolume:   SpanQueryVolume,
	wire.OpSymlinkCreate: SpanSymlink,
	wire.OpOplockChange:  SpanOplockChange,
	wire.OpStreamWrite:   SpanStreamWrite,
}

// ClientAddr returns an attribute for the transport-level peer address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Operation returns an attribute for an operation family name.
func Operation(op wire.Operation) attribute.KeyValue {
	return attribute.String(AttrOperation, op.String())
}

// Opcode returns an attribute for a wire opcode, decoded to its operation
// and version where possible.
func Opcode(oc wire.Opcode) attribute.KeyValue {
	if op, version, ok := oc.Decode(); ok {
		return attribute.String(AttrOpcode, fmt.Sprintf("%s.v%d", op, version))
	}
	return attribute.Int64(AttrOpcode, int64(oc))
}

// Handle returns an attribute for a file or search handle.
func Handle(h uint32) attribute.KeyValue {
	return attribute.Int64(AttrHandle, int64(h))
}

// Share returns an attribute for a share name.
func Share(share string) attribute.KeyValue {
	return attribute.String(AttrShare, share)
}

// Path returns an attribute for a host-resolved path.
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// Filename returns an attribute for a filename.
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Offset returns an attribute for an I/O offset.
func Offset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, int64(offset))
}

// Count returns an attribute for a byte count.
func Count(count uint32) attribute.KeyValue {
	return attribute.Int64(AttrCount, int64(count))
}

// Size returns an attribute for a file size.
func Size(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrSize, int64(size))
}

// Status returns an attribute for a wire.Status reply code.
func Status(status wire.Status) attribute.KeyValue {
	return attribute.String(AttrStatus, status.String())
}

// EOF returns an attribute for an end-of-file indicator.
func EOF(eof bool) attribute.KeyValue {
	return attribute.Bool(AttrEOF, eof)
}

// SessionID returns an attribute for a session's numeric ID.
func SessionID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrSessionID, int64(id))
}

// TraceID returns an attribute for a session's correlation ID.
func TraceID(id string) attribute.KeyValue {
	return attribute.String(AttrTraceID, id)
}

// SnapshotID returns an attribute for a directory search's snapshot ID.
func SnapshotID(id string) attribute.KeyValue {
	return attribute.String(AttrSnapshotID, id)
}

// StartOperationSpan starts a span for a dispatched HGFS operation, named
// after the operation family (falling back to SpanRequest for an opcode the
// table doesn't recognize) and pre-populated with the opcode, session, and
// handle attributes every operation carries.
func StartOperationSpan(ctx context.Context, oc wire.Opcode, sessionID uint64, handle uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	op, _, ok := oc.Decode()
	name := SpanRequest
	if ok && int(op) < len(operationSpanNames) {
		name = operationSpanNames[op]
	}

	allAttrs := []attribute.KeyValue{Opcode(oc), SessionID(sessionID)}
	if handle != 0 {
		allAttrs = append(allAttrs, Handle(handle))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartNameResolveSpan starts a span for a share-relative name resolution.
func StartNameResolveSpan(ctx context.Context, share string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanNameResolve, trace.WithAttributes(Share(share)))
}
