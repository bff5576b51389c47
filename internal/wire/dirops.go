package wire

// CreateDirRequest creates a directory at Name with the given permissions.
type CreateDirRequest struct {
	Name        []byte
	OwnerPerms  uint8
	GroupPerms  uint8
	OtherPerms  uint8
}

func PackCreateDirRequest(r CreateDirRequest) []byte {
	buf := make([]byte, 0, 8+len(r.Name))
	buf = putBytes(buf, r.Name)
	buf = append(buf, r.OwnerPerms, r.GroupPerms, r.OtherPerms)
	return buf
}

func UnpackCreateDirRequest(buf []byte) (CreateDirRequest, error) {
	name, rest, err := takeBytes(buf)
	if err != nil {
		return CreateDirRequest{}, err
	}
	if len(rest) < 3 {
		return CreateDirRequest{}, ErrProtocol
	}
	return CreateDirRequest{Name: name, OwnerPerms: rest[0], GroupPerms: rest[1], OtherPerms: rest[2]}, nil
}

func PackCreateDirReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeCreateDirV1, status, nil)
}

// DeleteRequest removes a file, directory, or symlink at Name.
type DeleteRequest struct {
	Name []byte
}

func PackDeleteRequest(r DeleteRequest) []byte {
	return putBytes(nil, r.Name)
}

func UnpackDeleteRequest(buf []byte) (DeleteRequest, error) {
	name, _, err := takeBytes(buf)
	if err != nil {
		return DeleteRequest{}, err
	}
	return DeleteRequest{Name: name}, nil
}

func PackDeleteReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeDeleteV1, status, nil)
}

// RenameRequest moves OldName to NewName, both share-relative CP-names.
type RenameRequest struct {
	OldName []byte
	NewName []byte
}

func PackRenameRequest(r RenameRequest) []byte {
	buf := make([]byte, 0, 16+len(r.OldName)+len(r.NewName))
	buf = putBytes(buf, r.OldName)
	buf = putBytes(buf, r.NewName)
	return buf
}

func UnpackRenameRequest(buf []byte) (RenameRequest, error) {
	oldName, rest, err := takeBytes(buf)
	if err != nil {
		return RenameRequest{}, err
	}
	newName, _, err := takeBytes(rest)
	if err != nil {
		return RenameRequest{}, err
	}
	return RenameRequest{OldName: oldName, NewName: newName}, nil
}

func PackRenameReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeRenameV1, status, nil)
}

// SymlinkCreateRequest creates a symlink at Name pointing at Target.
type SymlinkCreateRequest struct {
	Name   []byte
	Target []byte
}

func PackSymlinkCreateRequest(r SymlinkCreateRequest) []byte {
	buf := make([]byte, 0, 16+len(r.Name)+len(r.Target))
	buf = putBytes(buf, r.Name)
	buf = putBytes(buf, r.Target)
	return buf
}

func UnpackSymlinkCreateRequest(buf []byte) (SymlinkCreateRequest, error) {
	name, rest, err := takeBytes(buf)
	if err != nil {
		return SymlinkCreateRequest{}, err
	}
	target, _, err := takeBytes(rest)
	if err != nil {
		return SymlinkCreateRequest{}, err
	}
	return SymlinkCreateRequest{Name: name, Target: target}, nil
}

func PackSymlinkCreateReply(id uint32, status Status) []byte {
	return packReply(id, OpcodeSymlinkCreateV1, status, nil)
}
