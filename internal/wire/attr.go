package wire

// AttrMask declares which fields of Attr are meaningful in a given message
// (spec §3 "Attribute record"). V1 carries an implicit fixed mask; V2
// carries the mask explicitly on the wire.
type AttrMask uint32

const (
	AttrType AttrMask = 1 << iota
	AttrSize
	AttrAccessTime
	AttrWriteTime
	AttrChangeTime
	AttrSpecialPerms
	AttrOwnerPerms
	AttrGroupPerms
	AttrOtherPerms
	AttrUID
	AttrGID
	AttrFileID
)

// ImplicitV1Mask is the fixed mask implied by every V1 attribute message.
const ImplicitV1Mask = AttrType | AttrSize | AttrAccessTime | AttrWriteTime |
	AttrChangeTime | AttrOwnerPerms | AttrGroupPerms | AttrOtherPerms

// FileType enumerates the portable file types in an Attr record.
type FileType uint8

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
)

// Attr is the mask-plus-fields attribute record (spec §3).
type Attr struct {
	Mask          AttrMask
	Type          FileType
	Size          uint64
	AccessTime    int64 // Unix nanoseconds
	WriteTime     int64
	ChangeTime    int64
	SpecialPerms  uint8
	OwnerPerms    uint8
	GroupPerms    uint8
	OtherPerms    uint8
	UID           uint32
	GID           uint32
	FileID        uint64
}

func packAttr(dst []byte, a Attr, mask AttrMask) []byte {
	dst = putUint32(dst, uint32(mask))
	dst = append(dst, byte(a.Type))
	dst = putUint64(dst, a.Size)
	dst = putUint64(dst, uint64(a.AccessTime))
	dst = putUint64(dst, uint64(a.WriteTime))
	dst = putUint64(dst, uint64(a.ChangeTime))
	dst = append(dst, a.SpecialPerms, a.OwnerPerms, a.GroupPerms, a.OtherPerms)
	dst = putUint32(dst, a.UID)
	dst = putUint32(dst, a.GID)
	dst = putUint64(dst, a.FileID)
	return dst
}

const attrWireSize = 4 + 1 + 8*4 + 4 + 4 + 4 + 8

func unpackAttr(buf []byte) (Attr, []byte, error) {
	if len(buf) < attrWireSize {
		return Attr{}, nil, ErrProtocol
	}
	mask, rest, err := takeUint32(buf)
	if err != nil {
		return Attr{}, nil, err
	}
	typ, rest, err := takeByte(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	size, rest, err := takeUint64(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	atime, rest, err := takeUint64(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	wtime, rest, err := takeUint64(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	ctime, rest, err := takeUint64(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	if len(rest) < 4 {
		return Attr{}, nil, ErrProtocol
	}
	special, owner, group, other := rest[0], rest[1], rest[2], rest[3]
	rest = rest[4:]
	uid, rest, err := takeUint32(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	gid, rest, err := takeUint32(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	fileID, rest, err := takeUint64(rest)
	if err != nil {
		return Attr{}, nil, err
	}
	return Attr{
		Mask:         AttrMask(mask),
		Type:         FileType(typ),
		Size:         size,
		AccessTime:   int64(atime),
		WriteTime:    int64(wtime),
		ChangeTime:   int64(ctime),
		SpecialPerms: special,
		OwnerPerms:   owner,
		GroupPerms:   group,
		OtherPerms:   other,
		UID:          uid,
		GID:          gid,
		FileID:       fileID,
	}, rest, nil
}

// GetAttrTarget selects between by-handle and by-name lookup (spec §4.7
// "Getattr can be issued by-handle or by-name").
type GetAttrTarget struct {
	ByHandle bool
	Handle   uint32
	Name     []byte
}

type GetAttrRequest struct {
	Target  GetAttrTarget
	Version int
}

func PackGetAttrRequest(r GetAttrRequest) []byte {
	buf := make([]byte, 0, 16+len(r.Target.Name))
	if r.Target.ByHandle {
		buf = append(buf, 1)
		buf = putUint32(buf, r.Target.Handle)
	} else {
		buf = append(buf, 0)
		buf = putBytes(buf, r.Target.Name)
	}
	return buf
}

func UnpackGetAttrRequest(buf []byte, version int) (GetAttrRequest, error) {
	byHandle, rest, err := takeByte(buf)
	if err != nil {
		return GetAttrRequest{}, err
	}
	if byHandle != 0 {
		handle, _, err := takeUint32(rest)
		if err != nil {
			return GetAttrRequest{}, err
		}
		return GetAttrRequest{Target: GetAttrTarget{ByHandle: true, Handle: handle}, Version: version}, nil
	}
	name, _, err := takeBytes(rest)
	if err != nil {
		return GetAttrRequest{}, err
	}
	return GetAttrRequest{Target: GetAttrTarget{Name: name}, Version: version}, nil
}

type GetAttrReply struct {
	Attr Attr
}

func PackGetAttrReply(id uint32, status Status, version int, r GetAttrReply) []byte {
	opcode := OpcodeGetAttrV1
	mask := AttrMask(ImplicitV1Mask)
	if version >= 2 {
		opcode = OpcodeGetAttrV2
		mask = r.Attr.Mask
	}
	return packReply(id, opcode, status, packAttr(nil, r.Attr, mask))
}

func UnpackGetAttrReply(buf []byte) (GetAttrReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return GetAttrReply{}, 0, err
	}
	attr, _, err := unpackAttr(body)
	if err != nil {
		return GetAttrReply{}, 0, err
	}
	return GetAttrReply{Attr: attr}, status, nil
}

type SetAttrRequest struct {
	Target  GetAttrTarget
	Attr    Attr
	Version int
}

func PackSetAttrRequest(r SetAttrRequest) []byte {
	buf := make([]byte, 0, 32+len(r.Target.Name))
	if r.Target.ByHandle {
		buf = append(buf, 1)
		buf = putUint32(buf, r.Target.Handle)
	} else {
		buf = append(buf, 0)
		buf = putBytes(buf, r.Target.Name)
	}
	mask := AttrMask(ImplicitV1Mask)
	if r.Version >= 2 {
		mask = r.Attr.Mask
	}
	buf = packAttr(buf, r.Attr, mask)
	return buf
}

func UnpackSetAttrRequest(buf []byte, version int) (SetAttrRequest, error) {
	byHandle, rest, err := takeByte(buf)
	if err != nil {
		return SetAttrRequest{}, err
	}
	target := GetAttrTarget{ByHandle: byHandle != 0}
	if target.ByHandle {
		handle, r2, err := takeUint32(rest)
		if err != nil {
			return SetAttrRequest{}, err
		}
		target.Handle = handle
		rest = r2
	} else {
		name, r2, err := takeBytes(rest)
		if err != nil {
			return SetAttrRequest{}, err
		}
		target.Name = name
		rest = r2
	}
	attr, _, err := unpackAttr(rest)
	if err != nil {
		return SetAttrRequest{}, err
	}
	return SetAttrRequest{Target: target, Attr: attr, Version: version}, nil
}

func PackSetAttrReply(id uint32, status Status, version int) []byte {
	opcode := OpcodeSetAttrV1
	if version >= 2 {
		opcode = OpcodeSetAttrV2
	}
	return packReply(id, opcode, status, nil)
}
