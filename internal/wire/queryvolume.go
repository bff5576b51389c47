package wire

// QueryVolumeRequest asks for free/total space of the share containing Name.
type QueryVolumeRequest struct {
	Name []byte
}

func PackQueryVolumeRequest(r QueryVolumeRequest) []byte {
	return putBytes(nil, r.Name)
}

func UnpackQueryVolumeRequest(buf []byte) (QueryVolumeRequest, error) {
	name, _, err := takeBytes(buf)
	if err != nil {
		return QueryVolumeRequest{}, err
	}
	return QueryVolumeRequest{Name: name}, nil
}

// QueryVolumeReply reports space in bytes.
type QueryVolumeReply struct {
	FreeBytes  uint64
	TotalBytes uint64
}

func PackQueryVolumeReply(id uint32, status Status, r QueryVolumeReply) []byte {
	body := make([]byte, 0, 16)
	body = putUint64(body, r.FreeBytes)
	body = putUint64(body, r.TotalBytes)
	return packReply(id, OpcodeQueryVolumeV1, status, body)
}

func UnpackQueryVolumeReply(buf []byte) (QueryVolumeReply, Status, error) {
	_, status, body, err := UnpackReplyHeader(buf)
	if err != nil {
		return QueryVolumeReply{}, 0, err
	}
	free, rest, err := takeUint64(body)
	if err != nil {
		return QueryVolumeReply{}, 0, err
	}
	total, _, err := takeUint64(rest)
	if err != nil {
		return QueryVolumeReply{}, 0, err
	}
	return QueryVolumeReply{FreeBytes: free, TotalBytes: total}, status, nil
}
