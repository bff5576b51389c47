package wire

// AccessMode is the access the guest requests on Open.
type AccessMode uint32

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
)

// OpenFlags is the create-disposition flag matrix named in spec §4.7.
type OpenFlags uint32

const (
	OpenCreateIfAbsent OpenFlags = 1 << iota
	OpenTruncate
	OpenExclusive
	OpenAppend
	OpenSequential
)

// ShareAccessMode controls multi-reader/writer semantics (spec §3
// FileNode.share-access mode).
type ShareAccessMode uint32

const (
	ShareAccessRead ShareAccessMode = 1 << iota
	ShareAccessWrite
	ShareDenyRead
	ShareDenyWrite
)

// OpenRequest is the V1 (and, unchanged, V2) Open payload.
type OpenRequest struct {
	Name        []byte // CP-encoded "share\x00relative\x00path"
	Access      AccessMode
	Flags       OpenFlags
	ShareAccess ShareAccessMode
}

// PackOpenRequest packs an Open request body (header is packed separately).
func PackOpenRequest(r OpenRequest) []byte {
	buf := make([]byte, 0, 16+len(r.Name))
	buf = putBytes(buf, r.Name)
	buf = putUint32(buf, uint32(r.Access))
	buf = putUint32(buf, uint32(r.Flags))
	buf = putUint32(buf, uint32(r.ShareAccess))
	return buf
}

// UnpackOpenRequest parses an Open request body.
func UnpackOpenRequest(buf []byte) (OpenRequest, error) {
	name, rest, err := takeBytes(buf)
	if err != nil {
		return OpenRequest{}, err
	}
	access, rest, err := takeUint32(rest)
	if err != nil {
		return OpenRequest{}, err
	}
	flags, rest, err := takeUint32(rest)
	if err != nil {
		return OpenRequest{}, err
	}
	shareAccess, _, err := takeUint32(rest)
	if err != nil {
		return OpenRequest{}, err
	}
	return OpenRequest{
		Name:        name,
		Access:      AccessMode(access),
		Flags:       OpenFlags(flags),
		ShareAccess: ShareAccessMode(shareAccess),
	}, nil
}

// OpenReply carries the newly allocated handle.
type OpenReply struct {
	Handle  uint32
	Created bool
}

func PackOpenReply(id uint32, status Status, r OpenReply) []byte {
	body := make([]byte, 0, 5)
	body = putUint32(body, r.Handle)
	if r.Created {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	return packReply(id, OpcodeOpenV1, status, body)
}

func UnpackOpenReply(buf []byte) (OpenReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return OpenReply{}, 0, err
	}
	handle, body, err := takeUint32(body)
	if err != nil {
		return OpenReply{}, 0, err
	}
	created, _, err := takeByte(body)
	if err != nil {
		return OpenReply{}, 0, err
	}
	return OpenReply{Handle: handle, Created: created != 0}, status, nil
}

// packReply is a shared helper that prefixes a packed body with the
// header+status every reply carries.
func packReply(id uint32, opcode Opcode, status Status, body []byte) []byte {
	buf := make([]byte, ReplyHeaderSize, ReplyHeaderSize+len(body))
	PackReplyHeader(buf, Header{Opcode: opcode, ID: id}, status)
	return append(buf, body...)
}
