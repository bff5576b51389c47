package wire

import "sync/atomic"

// Operation identifies an HGFS operation family, independent of wire
// version. The dispatcher routes on Operation; Opcode (operation+version
// folded into one wire value, per spec §4.2) is purely a codec concern.
type Operation int

const (
	OpOpen Operation = iota
	OpRead
	OpWrite
	OpClose
	OpGetAttr
	OpSetAttr
	OpSearchOpen
	OpSearchRead
	OpSearchClose
	OpCreateDir
	OpDelete
	OpRename
	OpQueryVolume
	OpSymlinkCreate
	OpOplockChange
	OpStreamWrite
	opCount
)

var operationNames = [opCount]string{
	OpOpen:          "Open",
	OpRead:          "Read",
	OpWrite:         "Write",
	OpClose:         "Close",
	OpGetAttr:       "GetAttr",
	OpSetAttr:       "SetAttr",
	OpSearchOpen:    "SearchOpen",
	OpSearchRead:    "SearchRead",
	OpSearchClose:   "SearchClose",
	OpCreateDir:     "CreateDir",
	OpDelete:        "Delete",
	OpRename:        "Rename",
	OpQueryVolume:   "QueryVolume",
	OpSymlinkCreate: "SymlinkCreate",
	OpOplockChange:  "OplockChange",
	OpStreamWrite:   "StreamWrite",
}

// String implements fmt.Stringer, used by metrics label and log formatting.
func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return "Unknown"
	}
	return operationNames[o]
}

// Opcode is the wire-level opcode: a single value that identifies both the
// operation and the payload version in use.
type Opcode uint32

const (
	OpcodeOpenV1 Opcode = iota + 1
	OpcodeReadV1
	OpcodeWriteV1
	OpcodeCloseV1
	OpcodeGetAttrV1
	OpcodeGetAttrV2
	OpcodeSetAttrV1
	OpcodeSetAttrV2
	OpcodeSearchOpenV1
	OpcodeSearchReadV1
	OpcodeSearchReadV2
	OpcodeSearchCloseV1
	OpcodeCreateDirV1
	OpcodeDeleteV1
	OpcodeRenameV1
	OpcodeQueryVolumeV1
	OpcodeSymlinkCreateV1
	OpcodeOplockChangeV1
	OpcodeStreamWriteV1
)

type opcodeInfo struct {
	op      Operation
	version int
}

var opcodeTable = map[Opcode]opcodeInfo{
	OpcodeOpenV1:          {OpOpen, 1},
	OpcodeReadV1:          {OpRead, 1},
	OpcodeWriteV1:         {OpWrite, 1},
	OpcodeCloseV1:         {OpClose, 1},
	OpcodeGetAttrV1:       {OpGetAttr, 1},
	OpcodeGetAttrV2:       {OpGetAttr, 2},
	OpcodeSetAttrV1:       {OpSetAttr, 1},
	OpcodeSetAttrV2:       {OpSetAttr, 2},
	OpcodeSearchOpenV1:    {OpSearchOpen, 1},
	OpcodeSearchReadV1:    {OpSearchRead, 1},
	OpcodeSearchReadV2:    {OpSearchRead, 2},
	OpcodeSearchCloseV1:   {OpSearchClose, 1},
	OpcodeCreateDirV1:     {OpCreateDir, 1},
	OpcodeDeleteV1:        {OpDelete, 1},
	OpcodeRenameV1:        {OpRename, 1},
	OpcodeQueryVolumeV1:   {OpQueryVolume, 1},
	OpcodeSymlinkCreateV1: {OpSymlinkCreate, 1},
	OpcodeOplockChangeV1:  {OpOplockChange, 1},
	OpcodeStreamWriteV1:   {OpStreamWrite, 1},
}

// opcodeByVersion inverts opcodeTable for Opcode-for(operation,version)
// lookups used by the version table when composing outgoing requests.
var opcodeByVersion = func() map[Operation]map[int]Opcode {
	m := make(map[Operation]map[int]Opcode)
	for oc, info := range opcodeTable {
		if m[info.op] == nil {
			m[info.op] = make(map[int]Opcode)
		}
		m[info.op][info.version] = oc
	}
	return m
}()

// Decode returns the Operation and version a wire Opcode represents.
func (o Opcode) Decode() (Operation, int, bool) {
	info, ok := opcodeTable[o]
	return info.op, info.version, ok
}

// OpcodeFor returns the wire Opcode for an (operation, version) pair.
func OpcodeFor(op Operation, version int) (Opcode, bool) {
	oc, ok := opcodeByVersion[op][version]
	return oc, ok
}

// VersionTable tracks, per Operation, the "current version" the engine uses
// when it composes an outgoing request (spec §4.2). Each cell is an
// independent atomic int32 so concurrent requests across sessions never
// contend on a lock to read or downgrade it.
type VersionTable struct {
	cells [opCount]atomic.Int32
}

// NewVersionTable creates a table with every operation starting at its
// highest known version.
func NewVersionTable() *VersionTable {
	t := &VersionTable{}
	for op := Operation(0); op < opCount; op++ {
		best := 1
		for v := range opcodeByVersion[op] {
			if v > best {
				best = v
			}
		}
		t.cells[op].Store(int32(best))
	}
	return t
}

// Current returns the version currently in use for op.
func (t *VersionTable) Current(op Operation) int {
	return int(t.cells[op].Load())
}

// Downgrade atomically drops op's version by one, floored at 1, and returns
// the new version. Concurrent downgrades are safe: CompareAndSwap retries
// until it wins or discovers another caller already downgraded past its
// target.
func (t *VersionTable) Downgrade(op Operation) int {
	for {
		cur := t.cells[op].Load()
		if cur <= 1 {
			return 1
		}
		if t.cells[op].CompareAndSwap(cur, cur-1) {
			return int(cur - 1)
		}
	}
}

// SendFunc delivers a built request and returns the status the peer
// replied with plus the raw reply payload.
type SendFunc func(request []byte) (Status, []byte, error)

// SendWithDowngrade builds a request at the table's current version for op,
// sends it, and on StatusProtocolError downgrades the cell and retries
// exactly once at the lower version (spec §4.2, scenario 6 in spec §8).
// The negotiation is invisible to the caller: build is handed the version
// to encode into the request, and the final reply payload (or error) is
// returned directly.
func (t *VersionTable) SendWithDowngrade(op Operation, build func(version int) []byte, send SendFunc) ([]byte, error) {
	version := t.Current(op)
	status, reply, err := send(build(version))
	if err != nil {
		return nil, err
	}
	if status != StatusProtocolError {
		return reply, nil
	}

	newVersion := t.Downgrade(op)
	if newVersion == version {
		// Already at the floor; nothing left to retry with.
		return reply, nil
	}
	_, reply, err = send(build(newVersion))
	if err != nil {
		return nil, err
	}
	return reply, nil
}
