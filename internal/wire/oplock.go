package wire

// OplockChangeRequest is accepted on the wire but always answered with
// StatusOperationNotSupported by the dispatcher (SPEC_FULL §7: oplocks are a
// reserved-fields stub, not a working break-notification channel).
type OplockChangeRequest struct {
	Handle      uint32
	RequestedLevel uint8
}

func PackOplockChangeRequest(r OplockChangeRequest) []byte {
	buf := make([]byte, 0, 5)
	buf = putUint32(buf, r.Handle)
	buf = append(buf, r.RequestedLevel)
	return buf
}

func UnpackOplockChangeRequest(buf []byte) (OplockChangeRequest, error) {
	handle, rest, err := takeUint32(buf)
	if err != nil {
		return OplockChangeRequest{}, err
	}
	level, _, err := takeByte(rest)
	if err != nil {
		return OplockChangeRequest{}, err
	}
	return OplockChangeRequest{Handle: handle, RequestedLevel: level}, nil
}

func PackOplockChangeReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeOplockChangeV1, status, nil)
}
