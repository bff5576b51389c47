package wire

// ReadRequest asks for Length bytes starting at Offset from Handle.
type ReadRequest struct {
	Handle uint32
	Offset uint64
	Length uint32
}

func PackReadRequest(r ReadRequest) []byte {
	buf := make([]byte, 0, 16)
	buf = putUint32(buf, r.Handle)
	buf = putUint64(buf, r.Offset)
	buf = putUint32(buf, r.Length)
	return buf
}

func UnpackReadRequest(buf []byte) (ReadRequest, error) {
	handle, rest, err := takeUint32(buf)
	if err != nil {
		return ReadRequest{}, err
	}
	offset, rest, err := takeUint64(rest)
	if err != nil {
		return ReadRequest{}, err
	}
	length, _, err := takeUint32(rest)
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{Handle: handle, Offset: offset, Length: length}, nil
}

// ReadReply carries the bytes actually read; len(Data) may be less than the
// requested length at end-of-file.
type ReadReply struct {
	Data []byte
}

func PackReadReply(id uint32, status Status, r ReadReply) []byte {
	return packReply(id, OpcodeReadV1, status, putBytes(nil, r.Data))
}

func UnpackReadReply(buf []byte) (ReadReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return ReadReply{}, 0, err
	}
	data, _, err := takeBytes(body)
	if err != nil {
		return ReadReply{}, 0, err
	}
	return ReadReply{Data: data}, status, nil
}

// WriteRequest writes Data at Offset. Per spec §4.7, a node opened with the
// append flag ignores Offset and always writes at end-of-file; that
// rewriting happens in the dispatcher, not the codec.
type WriteRequest struct {
	Handle uint32
	Offset uint64
	Data   []byte
}

func PackWriteRequest(r WriteRequest) []byte {
	buf := make([]byte, 0, 12+len(r.Data))
	buf = putUint32(buf, r.Handle)
	buf = putUint64(buf, r.Offset)
	buf = putBytes(buf, r.Data)
	return buf
}

func UnpackWriteRequest(buf []byte) (WriteRequest, error) {
	handle, rest, err := takeUint32(buf)
	if err != nil {
		return WriteRequest{}, err
	}
	offset, rest, err := takeUint64(rest)
	if err != nil {
		return WriteRequest{}, err
	}
	data, _, err := takeBytes(rest)
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{Handle: handle, Offset: offset, Data: data}, nil
}

// WriteReply carries the number of bytes actually written.
type WriteReply struct {
	Written uint32
}

func PackWriteReply(id uint32, status Status, r WriteReply) []byte {
	return packReply(id, OpcodeWriteV1, status, putUint32(nil, r.Written))
}

func UnpackWriteReply(buf []byte) (WriteReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return WriteReply{}, 0, err
	}
	written, _, err := takeUint32(body)
	if err != nil {
		return WriteReply{}, 0, err
	}
	return WriteReply{Written: written}, status, nil
}

// StreamWriteRequest is the always-append counterpart of WriteRequest,
// carrying no offset (spec §7 "StreamWrite").
type StreamWriteRequest struct {
	Handle uint32
	Data   []byte
}

func PackStreamWriteRequest(r StreamWriteRequest) []byte {
	buf := make([]byte, 0, 8+len(r.Data))
	buf = putUint32(buf, r.Handle)
	buf = putBytes(buf, r.Data)
	return buf
}

func UnpackStreamWriteRequest(buf []byte) (StreamWriteRequest, error) {
	handle, rest, err := takeUint32(buf)
	if err != nil {
		return StreamWriteRequest{}, err
	}
	data, _, err := takeBytes(rest)
	if err != nil {
		return StreamWriteRequest{}, err
	}
	return StreamWriteRequest{Handle: handle, Data: data}, nil
}

func PackStreamWriteReply(id uint32, status Status, r WriteReply) []byte {
	return packReply(id, OpcodeStreamWriteV1, status, putUint32(nil, r.Written))
}

// CloseRequest closes a handle.
type CloseRequest struct {
	Handle uint32
}

func PackCloseRequest(r CloseRequest) []byte {
	return putUint32(nil, r.Handle)
}

func UnpackCloseRequest(buf []byte) (CloseRequest, error) {
	handle, _, err := takeUint32(buf)
	if err != nil {
		return CloseRequest{}, err
	}
	return CloseRequest{Handle: handle}, nil
}

func PackCloseReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeCloseV1, status, nil)
}
