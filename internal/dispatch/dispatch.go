// Package dispatch implements the per-opcode operation handlers that tie
// together the packet codec, name resolver, handle table, search state,
// and host filesystem (spec §4.7). Every handler follows the same shape:
// unpack, look up any handle, resolve any name, perform the host-FS
// operation, update the handle table, pack the reply.
package dispatch

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hgfsd/hgfsd/internal/cpname"
	"github.com/hgfsd/hgfsd/internal/handletable"
	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/nameresolve"
	"github.com/hgfsd/hgfsd/internal/search"
	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
	"github.com/hgfsd/hgfsd/internal/telemetry"
	"github.com/hgfsd/hgfsd/internal/wire"
)

// Config bounds the per-session resources the dispatcher allocates into
// (spec §6 "Configuration (exposed to operator)").
type Config struct {
	MaxFileNodesPerSession int
	MaxCachedOpenNodes     int
	MaxSearchesPerSession  int
	AlwaysUseHostTime      bool
}

// Dispatcher routes unpacked requests to their opcode handler.
type Dispatcher struct {
	shares   *shareregistry.Registry
	resolver *nameresolve.Resolver
	fs       hostfs.FS
	versions *wire.VersionTable
	cfg      Config
	metrics  Metrics
}

// New builds a Dispatcher.
func New(shares *shareregistry.Registry, resolver *nameresolve.Resolver, fs hostfs.FS, cfg Config) *Dispatcher {
	return &Dispatcher{shares: shares, resolver: resolver, fs: fs, versions: wire.NewVersionTable(), cfg: cfg}
}

// SetMetrics attaches a Metrics sink. Passing nil disables instrumentation
// with zero overhead; the default Dispatcher built by New already starts
// with a nil sink.
func (d *Dispatcher) SetMetrics(m Metrics) {
	d.metrics = m
}

// Dispatch unpacks one request packet, routes it to the matching opcode
// handler, and returns the packed reply. It never panics on a malformed
// packet or an operation that fails; every failure path still produces a
// reply with the corresponding protocol status. When a Metrics sink is
// attached, every dispatch records its operation, outcome status, and
// latency by decoding the reply's own header rather than threading
// instrumentation through each handler.
func (d *Dispatcher) Dispatch(sess *session.Session, packet []byte) []byte {
	start := time.Now()

	var span trace.Span
	if reqHeader, _, err := wire.UnpackHeader(packet); err == nil {
		_, span = telemetry.StartOperationSpan(context.Background(), reqHeader.Opcode, sess.ID, 0,
			telemetry.TraceID(sess.TraceID))
	}

	reply := d.dispatch(sess, packet)

	if d.metrics != nil || span != nil {
		if h, status, _, err := wire.UnpackReplyHeader(reply); err == nil {
			if op, _, ok := h.Opcode.Decode(); ok {
				if d.metrics != nil {
					d.metrics.RecordOperation(op, status, time.Since(start))
				}
				if span != nil {
					span.SetAttributes(telemetry.Status(status))
				}
			}
		}
	}
	if span != nil {
		span.End()
	}
	return reply
}

func (d *Dispatcher) dispatch(sess *session.Session, packet []byte) []byte {
	header, body, err := wire.UnpackHeader(packet)
	if err != nil {
		// No opcode could even be recovered; the zero Opcode is the best
		// available label for the error reply.
		return wire.NewErrorReply(0, 0, wire.StatusProtocolError)
	}

	op, version, ok := header.Opcode.Decode()
	if !ok {
		return wire.NewErrorReply(header.ID, header.Opcode, wire.StatusOperationNotSupported)
	}

	switch op {
	case wire.OpOpen:
		return d.handleOpen(sess, header.ID, body)
	case wire.OpRead:
		return d.handleRead(sess, header.ID, body)
	case wire.OpWrite:
		return d.handleWrite(sess, header.ID, body)
	case wire.OpStreamWrite:
		return d.handleStreamWrite(sess, header.ID, body)
	case wire.OpClose:
		return d.handleClose(sess, header.ID, body)
	case wire.OpGetAttr:
		return d.handleGetAttr(sess, header.ID, version, body)
	case wire.OpSetAttr:
		return d.handleSetAttr(sess, header.ID, version, body)
	case wire.OpSearchOpen:
		return d.handleSearchOpen(sess, header.ID, body)
	case wire.OpSearchRead:
		return d.handleSearchRead(sess, header.ID, version, body)
	case wire.OpSearchClose:
		return d.handleSearchClose(sess, header.ID, body)
	case wire.OpCreateDir:
		return d.handleCreateDir(sess, header.ID, body)
	case wire.OpDelete:
		return d.handleDelete(sess, header.ID, body)
	case wire.OpRename:
		return d.handleRename(sess, header.ID, body)
	case wire.OpQueryVolume:
		return d.handleQueryVolume(sess, header.ID, body)
	case wire.OpSymlinkCreate:
		return d.handleSymlinkCreate(sess, header.ID, body)
	case wire.OpOplockChange:
		return wire.PackOplockChangeReply(header.ID, wire.StatusOperationNotSupported)
	default:
		return wire.NewErrorReply(header.ID, header.Opcode, wire.StatusOperationNotSupported)
	}
}

// resolveForAccess runs the name resolver for a CP-name buffer, returning
// the resolved host path or the translated protocol status on failure.
func (d *Dispatcher) resolveForAccess(name []byte, wantRead, wantWrite bool) (string, wire.Status) {
	path, status := d.resolver.Resolve(nameresolve.Request{Buffer: name, WantRead: wantRead, WantWrite: wantWrite})
	if status != nameresolve.Success {
		return "", translateNameStatus(status)
	}
	return path, wire.StatusSuccess
}

func openFlagsToOS(flags wire.OpenFlags, access wire.AccessMode) int {
	var osFlags int
	switch {
	case access&wire.AccessWrite != 0 && access&wire.AccessRead != 0:
		osFlags = os.O_RDWR
	case access&wire.AccessWrite != 0:
		osFlags = os.O_WRONLY
	default:
		osFlags = os.O_RDONLY
	}
	if flags&wire.OpenCreateIfAbsent != 0 {
		osFlags |= os.O_CREATE
	}
	if flags&wire.OpenTruncate != 0 {
		osFlags |= os.O_TRUNC
	}
	if flags&wire.OpenExclusive != 0 {
		osFlags |= os.O_EXCL
	}
	return osFlags
}

func nodeFlagsFrom(flags wire.OpenFlags) handletable.Flags {
	var f handletable.Flags
	if flags&wire.OpenAppend != 0 {
		f |= handletable.FlagAppend
	}
	if flags&wire.OpenSequential != 0 {
		f |= handletable.FlagSequential
	}
	return f
}

func (d *Dispatcher) handleOpen(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackOpenRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeOpenV1, wire.StatusProtocolError)
	}

	wantRead := req.Access&wire.AccessRead != 0
	wantWrite := req.Access&wire.AccessWrite != 0

	path, status := d.resolveForAccess(req.Name, wantRead, wantWrite)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeOpenV1, status)
	}

	shareNameRaw, _, _ := cpname.SplitFirstComponent(req.Name)

	// "create-exclusive and file-exists" must translate to FileExists
	// (spec §4.7), which EEXIST from O_CREATE|O_EXCL already gives us.
	osFlags := openFlagsToOS(req.Flags, req.Access)

	sess.FileIOLock.Lock()
	defer sess.FileIOLock.Unlock()

	fd, err := d.fs.OpenFile(path, osFlags, 0644)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeOpenV1, translateErr(err))
	}

	created := req.Flags&wire.OpenCreateIfAbsent != 0
	var localID handletable.LocalID
	if info, statErr := fd.Stat(); statErr == nil {
		localID = handletable.LocalID{VolumeID: info.Dev, FileID: info.Ino}
	}

	node := handletable.FileNode{
		Path:        path,
		ShareName:   string(shareNameRaw),
		LocalID:     localID,
		AccessMode:  uint32(req.Access),
		ShareAccess: uint32(req.ShareAccess),
		Flags:       nodeFlagsFrom(req.Flags),
	}
	node.SetFD(fd)

	sess.NodeArrayLock.Lock()
	handle, err := sess.Nodes.Open(node, true, d.closeAndRecordEviction)
	sess.NodeArrayLock.Unlock()
	if err != nil {
		_ = fd.Close()
		return wire.NewErrorReply(id, wire.OpcodeOpenV1, wire.StatusGenericError)
	}

	return wire.PackOpenReply(id, wire.StatusSuccess, wire.OpenReply{Handle: uint32(handle), Created: created})
}

// ensureOpen transparently re-opens a node's descriptor if it was evicted
// (spec §4.5: "this re-open is performed by the dispatcher, transparently
// to the guest, using the stored name and mode"), promoting it back onto
// the cached list.
func (d *Dispatcher) ensureOpen(sess *session.Session, h handletable.Handle, n *handletable.FileNode) error {
	if n.FD() != nil {
		d.recordCacheHit()
		return nil
	}
	d.recordCacheMiss()
	osFlags := openFlagsToOS(0, wire.AccessMode(n.AccessMode))
	fd, err := d.fs.OpenFile(n.Path, osFlags, 0644)
	if err != nil {
		return err
	}
	return sess.Nodes.Promote(h, fd, d.closeAndRecordEviction)
}

// closeAndRecordEviction is the handletable.EvictFunc used at every Open and
// Promote call site: it closes the evicted descriptor and, if a Metrics
// sink is attached, counts the eviction.
func (d *Dispatcher) closeAndRecordEviction(evicted *handletable.FileNode) {
	if f := evicted.FD(); f != nil {
		_ = f.Close()
	}
	if d.metrics != nil {
		d.metrics.RecordEviction()
	}
}

func (d *Dispatcher) recordCacheHit() {
	if d.metrics != nil {
		d.metrics.RecordCacheHit()
	}
}

func (d *Dispatcher) recordCacheMiss() {
	if d.metrics != nil {
		d.metrics.RecordCacheMiss()
	}
}

func (d *Dispatcher) handleRead(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackReadRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeReadV1, wire.StatusProtocolError)
	}

	sess.FileIOLock.Lock()
	defer sess.FileIOLock.Unlock()

	sess.NodeArrayLock.Lock()
	n, err := sess.Nodes.Lookup(handletable.Handle(req.Handle))
	if err == nil {
		err = d.ensureOpen(sess, handletable.Handle(req.Handle), n)
		if err == nil {
			sess.Nodes.Touch(handletable.Handle(req.Handle))
		}
	}
	sess.NodeArrayLock.Unlock()
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeReadV1, translateErr(errOrInvalidHandle(err)))
	}

	buf := make([]byte, req.Length)
	nRead, err := n.FD().ReadAt(buf, int64(req.Offset))
	if err != nil && nRead == 0 {
		return wire.NewErrorReply(id, wire.OpcodeReadV1, translateErr(err))
	}
	return wire.PackReadReply(id, wire.StatusSuccess, wire.ReadReply{Data: buf[:nRead]})
}

func (d *Dispatcher) handleWrite(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackWriteRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeWriteV1, wire.StatusProtocolError)
	}
	return d.doWrite(sess, id, wire.OpcodeWriteV1, req.Handle, req.Offset, req.Data, false)
}

func (d *Dispatcher) handleStreamWrite(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackStreamWriteRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeStreamWriteV1, wire.StatusProtocolError)
	}
	return d.doWrite(sess, id, wire.OpcodeStreamWriteV1, req.Handle, 0, req.Data, true)
}

// doWrite honors the append-forces-end-of-file rule (spec §4.7): a node
// opened with the append flag always writes at its current end-of-file,
// ignoring whatever offset the guest supplied; StreamWrite always behaves
// this way regardless of the node's flags.
func (d *Dispatcher) doWrite(sess *session.Session, id uint32, opcode wire.Opcode, handle uint32, offset uint64, data []byte, forceAppend bool) []byte {
	sess.FileIOLock.Lock()
	defer sess.FileIOLock.Unlock()

	sess.NodeArrayLock.Lock()
	n, err := sess.Nodes.Lookup(handletable.Handle(handle))
	if err == nil {
		err = d.ensureOpen(sess, handletable.Handle(handle), n)
		if err == nil {
			sess.Nodes.Touch(handletable.Handle(handle))
		}
	}
	sess.NodeArrayLock.Unlock()
	if err != nil {
		return wire.NewErrorReply(id, opcode, translateErr(errOrInvalidHandle(err)))
	}

	writeOffset := int64(offset)
	if forceAppend || n.Flags&handletable.FlagAppend != 0 {
		info, statErr := n.FD().Stat()
		if statErr != nil {
			return wire.NewErrorReply(id, opcode, translateErr(statErr))
		}
		writeOffset = info.Size
	}

	written, err := n.FD().WriteAt(data, writeOffset)
	if err != nil {
		return wire.NewErrorReply(id, opcode, translateErr(err))
	}

	if opcode == wire.OpcodeStreamWriteV1 {
		return wire.PackStreamWriteReply(id, wire.StatusSuccess, wire.WriteReply{Written: uint32(written)})
	}
	return wire.PackWriteReply(id, wire.StatusSuccess, wire.WriteReply{Written: uint32(written)})
}

func (d *Dispatcher) handleClose(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackCloseRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeCloseV1, wire.StatusProtocolError)
	}

	sess.NodeArrayLock.Lock()
	n, err := sess.Nodes.Close(handletable.Handle(req.Handle))
	sess.NodeArrayLock.Unlock()
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeCloseV1, wire.StatusInvalidHandle)
	}
	if f := n.FD(); f != nil {
		_ = f.Close()
	}
	return wire.PackCloseReply(id, wire.StatusSuccess)
}

func (d *Dispatcher) handleQueryVolume(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackQueryVolumeRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeQueryVolumeV1, wire.StatusProtocolError)
	}
	path, status := d.resolveForAccess(req.Name, true, false)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeQueryVolumeV1, status)
	}
	stat, err := d.fs.StatVolume(path)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeQueryVolumeV1, translateErr(err))
	}
	return wire.PackQueryVolumeReply(id, wire.StatusSuccess, wire.QueryVolumeReply{
		FreeBytes: stat.FreeBytes, TotalBytes: stat.TotalBytes,
	})
}

func (d *Dispatcher) handleCreateDir(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackCreateDirRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeCreateDirV1, wire.StatusProtocolError)
	}
	path, status := d.resolveForAccess(req.Name, false, true)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeCreateDirV1, status)
	}
	mode := os.FileMode(req.OwnerPerms)<<6 | os.FileMode(req.GroupPerms)<<3 | os.FileMode(req.OtherPerms)
	if err := d.fs.Mkdir(path, mode); err != nil {
		return wire.NewErrorReply(id, wire.OpcodeCreateDirV1, translateErr(err))
	}
	return wire.PackCreateDirReply(id, wire.StatusSuccess)
}

// handleDelete unlinks a name. Deleting an already-open file is permitted:
// the descriptor remains usable by its handle until explicitly closed
// (spec §4.7); nothing in the handle table needs to change here.
func (d *Dispatcher) handleDelete(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackDeleteRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeDeleteV1, wire.StatusProtocolError)
	}
	path, status := d.resolveForAccess(req.Name, false, true)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeDeleteV1, status)
	}
	if err := d.fs.Remove(path); err != nil {
		return wire.NewErrorReply(id, wire.OpcodeDeleteV1, translateErr(err))
	}
	return wire.PackDeleteReply(id, wire.StatusSuccess)
}

// handleRename moves a name and, per spec §4.7, updates the stored name of
// every open node that matched the old path so subsequent attribute
// queries see the new name.
func (d *Dispatcher) handleRename(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackRenameRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeRenameV1, wire.StatusProtocolError)
	}
	oldPath, status := d.resolveForAccess(req.OldName, false, true)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeRenameV1, status)
	}
	newPath, status := d.resolveForAccess(req.NewName, false, true)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeRenameV1, status)
	}
	if err := d.fs.Rename(oldPath, newPath); err != nil {
		return wire.NewErrorReply(id, wire.OpcodeRenameV1, translateErr(err))
	}

	sess.NodeArrayLock.Lock()
	for _, h := range sess.Nodes.ActiveHandles() {
		if n, err := sess.Nodes.Lookup(h); err == nil && n.Path == oldPath {
			n.Path = newPath
		}
	}
	sess.NodeArrayLock.Unlock()

	return wire.PackRenameReply(id, wire.StatusSuccess)
}

func (d *Dispatcher) handleSymlinkCreate(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackSymlinkCreateRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSymlinkCreateV1, wire.StatusProtocolError)
	}
	path, status := d.resolveForAccess(req.Name, false, true)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, wire.OpcodeSymlinkCreateV1, status)
	}
	if err := d.fs.Symlink(string(req.Target), path); err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSymlinkCreateV1, translateErr(err))
	}
	return wire.PackSymlinkCreateReply(id, wire.StatusSuccess)
}

func (d *Dispatcher) attrFromInfo(info hostfs.Info) wire.Attr {
	typ := wire.FileTypeRegular
	switch {
	case info.IsDir:
		typ = wire.FileTypeDirectory
	case info.IsLink:
		typ = wire.FileTypeSymlink
	}
	return wire.Attr{
		Type:       typ,
		Size:       uint64(info.Size),
		WriteTime:  info.ModTime.UnixNano(),
		OwnerPerms: uint8(info.Mode.Perm() >> 6 & 0x7),
		GroupPerms: uint8(info.Mode.Perm() >> 3 & 0x7),
		OtherPerms: uint8(info.Mode.Perm() & 0x7),
		FileID:     info.Ino,
	}
}

// handleGetAttr prefers by-handle lookup; if that reports InvalidHandle it
// retries once by-name (spec §4.7).
func (d *Dispatcher) handleGetAttr(sess *session.Session, id uint32, version int, body []byte) []byte {
	req, err := wire.UnpackGetAttrRequest(body, version)
	if err != nil {
		return wire.NewErrorReply(id, getAttrOpcode(version), wire.StatusProtocolError)
	}

	if req.Target.ByHandle {
		sess.NodeArrayLock.Lock()
		n, lookupErr := sess.Nodes.Lookup(handletable.Handle(req.Target.Handle))
		var path string
		if lookupErr == nil {
			path = n.Path
		}
		sess.NodeArrayLock.Unlock()

		if lookupErr == nil {
			info, statErr := d.fs.Lstat(path)
			if statErr == nil {
				return wire.PackGetAttrReply(id, wire.StatusSuccess, version, wire.GetAttrReply{Attr: d.attrFromInfo(info)})
			}
			return wire.NewErrorReply(id, getAttrOpcode(version), translateErr(statErr))
		}
		// InvalidHandle: retry once by-name is not possible without a name,
		// so only proceed if the caller also supplied one.
		if len(req.Target.Name) == 0 {
			return wire.NewErrorReply(id, getAttrOpcode(version), wire.StatusInvalidHandle)
		}
	}

	path, status := d.resolveForAccess(req.Target.Name, true, false)
	if status != wire.StatusSuccess {
		return wire.NewErrorReply(id, getAttrOpcode(version), status)
	}
	info, err := d.fs.Lstat(path)
	if err != nil {
		return wire.NewErrorReply(id, getAttrOpcode(version), translateErr(err))
	}
	return wire.PackGetAttrReply(id, wire.StatusSuccess, version, wire.GetAttrReply{Attr: d.attrFromInfo(info)})
}

func getAttrOpcode(version int) wire.Opcode {
	if version >= 2 {
		return wire.OpcodeGetAttrV2
	}
	return wire.OpcodeGetAttrV1
}

func setAttrOpcode(version int) wire.Opcode {
	if version >= 2 {
		return wire.OpcodeSetAttrV2
	}
	return wire.OpcodeSetAttrV1
}

func (d *Dispatcher) handleSetAttr(sess *session.Session, id uint32, version int, body []byte) []byte {
	req, err := wire.UnpackSetAttrRequest(body, version)
	if err != nil {
		return wire.NewErrorReply(id, setAttrOpcode(version), wire.StatusProtocolError)
	}

	var path string
	if req.Target.ByHandle {
		sess.NodeArrayLock.Lock()
		n, lookupErr := sess.Nodes.Lookup(handletable.Handle(req.Target.Handle))
		if lookupErr == nil {
			path = n.Path
		}
		sess.NodeArrayLock.Unlock()
		if lookupErr != nil {
			return wire.NewErrorReply(id, setAttrOpcode(version), wire.StatusInvalidHandle)
		}
	} else {
		resolved, status := d.resolveForAccess(req.Target.Name, false, true)
		if status != wire.StatusSuccess {
			return wire.NewErrorReply(id, setAttrOpcode(version), status)
		}
		path = resolved
	}

	if req.Attr.Mask&wire.AttrSize != 0 {
		fd, err := d.fs.OpenFile(path, os.O_WRONLY, 0644)
		if err != nil {
			return wire.NewErrorReply(id, setAttrOpcode(version), translateErr(err))
		}
		err = fd.Truncate(int64(req.Attr.Size))
		_ = fd.Close()
		if err != nil {
			return wire.NewErrorReply(id, setAttrOpcode(version), translateErr(err))
		}
	}
	if req.Attr.Mask&(wire.AttrOwnerPerms|wire.AttrGroupPerms|wire.AttrOtherPerms) != 0 {
		mode := os.FileMode(req.Attr.OwnerPerms)<<6 | os.FileMode(req.Attr.GroupPerms)<<3 | os.FileMode(req.Attr.OtherPerms)
		if err := d.fs.Chmod(path, mode); err != nil {
			return wire.NewErrorReply(id, setAttrOpcode(version), translateErr(err))
		}
	}
	return wire.PackSetAttrReply(id, wire.StatusSuccess, version)
}

func (d *Dispatcher) handleSearchOpen(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackSearchOpenRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSearchOpenV1, wire.StatusProtocolError)
	}

	var (
		kind    search.Kind
		src     search.Source
		logPath string
	)
	if len(req.Name) == 0 {
		// A zero-length CP name addresses the virtual namespace root, not
		// any real share: enumerate the share list itself (spec §4.6
		// "virtual searches") via the injectable Source rather than a host
		// directory. This is the guest's way of discovering what shares
		// exist without already knowing a name to resolve.
		kind = search.KindOther
		src = &search.SliceSource{Entries: shareListEntries(d.shares.ListShares())}
		logPath = "<shares>"
	} else {
		path, status := d.resolveForAccess(req.Name, true, false)
		if status != wire.StatusSuccess {
			return wire.NewErrorReply(id, wire.OpcodeSearchOpenV1, status)
		}
		kind = search.KindDir
		src = search.NewDirSource(d.fs, path)
		logPath = path
	}

	sess.SearchArrayLock.Lock()
	h, err := sess.Searches.Open(kind, src)
	var snapshotID string
	if err == nil {
		snapshotID = sess.Searches.SnapshotID(h)
	}
	sess.SearchArrayLock.Unlock()
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSearchOpenV1, translateErr(err))
	}
	logger.Debug("dispatch: search opened", "session_id", sess.ID, "trace_id", sess.TraceID,
		"snapshot_id", snapshotID, "path", logPath)
	return wire.PackSearchOpenReply(id, wire.StatusSuccess, wire.SearchOpenReply{Handle: uint32(h)})
}

// shareListEntries packs the registry's share list into the same DirEntry
// shape a real directory search would produce, so search-read need not
// distinguish a virtual search from a host one.
func shareListEntries(shares []shareregistry.ShareInfo) []wire.DirEntry {
	entries := make([]wire.DirEntry, 0, len(shares))
	for i, s := range shares {
		entries = append(entries, wire.DirEntry{
			FileID: uint64(i) + 1,
			Type:   wire.FileTypeDirectory,
			Name:   []byte(s.Name),
		})
	}
	return entries
}

func (d *Dispatcher) handleSearchRead(sess *session.Session, id uint32, version int, body []byte) []byte {
	req, err := wire.UnpackSearchReadRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, searchReadOpcode(version), wire.StatusProtocolError)
	}

	var entries []wire.DirEntry
	eod := false
	sess.SearchArrayLock.Lock()
	for i := uint32(0); i < req.MaxCount; i++ {
		e, end, lookupErr := sess.Searches.Read(search.Handle(req.Handle), req.Index+i)
		if lookupErr != nil {
			sess.SearchArrayLock.Unlock()
			return wire.NewErrorReply(id, searchReadOpcode(version), wire.StatusInvalidHandle)
		}
		if end {
			eod = true
			break
		}
		entries = append(entries, e)
	}
	sess.SearchArrayLock.Unlock()

	return wire.PackSearchReadReply(id, wire.StatusSuccess, version, wire.SearchReadReply{Entries: entries, EndOfDir: eod})
}

func searchReadOpcode(version int) wire.Opcode {
	if version >= 2 {
		return wire.OpcodeSearchReadV2
	}
	return wire.OpcodeSearchReadV1
}

func (d *Dispatcher) handleSearchClose(sess *session.Session, id uint32, body []byte) []byte {
	req, err := wire.UnpackSearchCloseRequest(body)
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSearchCloseV1, wire.StatusProtocolError)
	}
	sess.SearchArrayLock.Lock()
	err = sess.Searches.Close(search.Handle(req.Handle))
	sess.SearchArrayLock.Unlock()
	if err != nil {
		return wire.NewErrorReply(id, wire.OpcodeSearchCloseV1, wire.StatusInvalidHandle)
	}
	return wire.PackSearchCloseReply(id, wire.StatusSuccess)
}

func errOrInvalidHandle(err error) error {
	if err == handletable.ErrInvalidHandle {
		return ErrHandleGone
	}
	return err
}
