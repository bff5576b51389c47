package wire

// Status is the closed, cross-platform status enumeration carried by every
// reply packet (spec §4.2). It is distinct from any host OS errno; the
// dispatcher is responsible for translating host-FS/internal errors into
// one of these values before packing a reply.
type Status uint32

const (
	StatusSuccess Status = iota
	StatusNoSuchFileOrDir
	StatusInvalidHandle
	StatusOperationNotPermitted
	StatusFileExists
	StatusNotDirectory
	StatusDirNotEmpty
	StatusProtocolError
	StatusAccessDenied
	StatusSharingViolation
	StatusNoSpace
	StatusOperationNotSupported
	StatusNameTooLong
	StatusInvalidName
	StatusGenericError
)

var statusNames = map[Status]string{
	StatusSuccess:               "Success",
	StatusNoSuchFileOrDir:       "NoSuchFileOrDir",
	StatusInvalidHandle:         "InvalidHandle",
	StatusOperationNotPermitted: "OperationNotPermitted",
	StatusFileExists:            "FileExists",
	StatusNotDirectory:          "NotDirectory",
	StatusDirNotEmpty:           "DirNotEmpty",
	StatusProtocolError:         "ProtocolError",
	StatusAccessDenied:          "AccessDenied",
	StatusSharingViolation:      "SharingViolation",
	StatusNoSpace:               "NoSpace",
	StatusOperationNotSupported: "OperationNotSupported",
	StatusNameTooLong:           "NameTooLong",
	StatusInvalidName:           "InvalidName",
	StatusGenericError:          "GenericError",
}

// String implements fmt.Stringer. Unknown values (a peer-originated status
// outside the closed enumeration) render as "GenericError", mirroring the
// translation rule in spec §4.2 ("Unknown status codes from peers translate
// to GenericError").
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "GenericError"
}

// IsKnown reports whether s is a member of the closed enumeration.
func (s Status) IsKnown() bool {
	_, ok := statusNames[s]
	return ok
}

// Normalize maps any status outside the closed enumeration to
// StatusGenericError, the rule applied whenever a status arrives from a peer
// rather than being produced locally by the translation table in §7.
func Normalize(s Status) Status {
	if s.IsKnown() {
		return s
	}
	return StatusGenericError
}
