package wire

// SearchOpenRequest begins a directory enumeration (spec §5 search state).
type SearchOpenRequest struct {
	Name []byte
}

func PackSearchOpenRequest(r SearchOpenRequest) []byte {
	return putBytes(nil, r.Name)
}

func UnpackSearchOpenRequest(buf []byte) (SearchOpenRequest, error) {
	name, _, err := takeBytes(buf)
	if err != nil {
		return SearchOpenRequest{}, err
	}
	return SearchOpenRequest{Name: name}, nil
}

// SearchOpenReply carries the newly allocated search handle.
type SearchOpenReply struct {
	Handle uint32
}

func PackSearchOpenReply(id uint32, status Status, r SearchOpenReply) []byte {
	return packReply(id, OpcodeSearchOpenV1, status, putUint32(nil, r.Handle))
}

func UnpackSearchOpenReply(buf []byte) (SearchOpenReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return SearchOpenReply{}, 0, err
	}
	handle, _, err := takeUint32(body)
	if err != nil {
		return SearchOpenReply{}, 0, err
	}
	return SearchOpenReply{Handle: handle}, status, nil
}

// DirEntry is one materialized entry of a search snapshot.
type DirEntry struct {
	FileID uint64
	Type   FileType
	Name   []byte
}

func packDirEntry(dst []byte, e DirEntry) []byte {
	dst = putUint64(dst, e.FileID)
	dst = append(dst, byte(e.Type))
	dst = putBytes(dst, e.Name)
	return dst
}

func unpackDirEntry(buf []byte) (DirEntry, []byte, error) {
	fileID, rest, err := takeUint64(buf)
	if err != nil {
		return DirEntry{}, nil, err
	}
	typ, rest, err := takeByte(rest)
	if err != nil {
		return DirEntry{}, nil, err
	}
	name, rest, err := takeBytes(rest)
	if err != nil {
		return DirEntry{}, nil, err
	}
	return DirEntry{FileID: fileID, Type: FileType(typ), Name: name}, rest, nil
}

// SearchReadRequest asks for up to MaxCount entries from a search snapshot
// starting at Index.
type SearchReadRequest struct {
	Handle   uint32
	Index    uint32
	MaxCount uint32
}

func PackSearchReadRequest(r SearchReadRequest) []byte {
	buf := make([]byte, 0, 12)
	buf = putUint32(buf, r.Handle)
	buf = putUint32(buf, r.Index)
	buf = putUint32(buf, r.MaxCount)
	return buf
}

func UnpackSearchReadRequest(buf []byte) (SearchReadRequest, error) {
	handle, rest, err := takeUint32(buf)
	if err != nil {
		return SearchReadRequest{}, err
	}
	index, rest, err := takeUint32(rest)
	if err != nil {
		return SearchReadRequest{}, err
	}
	maxCount, _, err := takeUint32(rest)
	if err != nil {
		return SearchReadRequest{}, err
	}
	return SearchReadRequest{Handle: handle, Index: index, MaxCount: maxCount}, nil
}

// SearchReadReply carries the batch of entries produced and whether the
// snapshot is exhausted (spec invariant S1: the end-of-directory marker is
// stable for the snapshot's lifetime).
type SearchReadReply struct {
	Entries []DirEntry
	EndOfDir bool
}

func PackSearchReadReply(id uint32, status Status, version int, r SearchReadReply) []byte {
	opcode := OpcodeSearchReadV1
	if version >= 2 {
		opcode = OpcodeSearchReadV2
	}
	body := putUint32(nil, uint32(len(r.Entries)))
	for _, e := range r.Entries {
		body = packDirEntry(body, e)
	}
	if r.EndOfDir {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	return packReply(id, opcode, status, body)
}

func UnpackSearchReadReply(buf []byte) (SearchReadReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return SearchReadReply{}, 0, err
	}
	count, rest, err := takeUint32(body)
	if err != nil {
		return SearchReadReply{}, 0, err
	}
	entries := make([]DirEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e DirEntry
		e, rest, err = unpackDirEntry(rest)
		if err != nil {
			return SearchReadReply{}, 0, err
		}
		entries = append(entries, e)
	}
	eod, _, err := takeByte(rest)
	if err != nil {
		return SearchReadReply{}, 0, err
	}
	return SearchReadReply{Entries: entries, EndOfDir: eod != 0}, status, nil
}

// SearchCloseRequest releases a search handle.
type SearchCloseRequest struct {
	Handle uint32
}

func PackSearchCloseRequest(r SearchCloseRequest) []byte {
	return putUint32(nil, r.Handle)
}

func UnpackSearchCloseRequest(buf []byte) (SearchCloseRequest, error) {
	handle, _, err := takeUint32(buf)
	if err != nil {
		return SearchCloseRequest{}, err
	}
	return SearchCloseRequest{Handle: handle}, nil
}

func PackSearchCloseReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeSearchCloseV1, status, nil)
}
