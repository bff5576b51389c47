package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, HeaderSize)
	PackHeader(buf, Header{Opcode: OpcodeOpenV1, ID: 42})
	h, rest, err := UnpackHeader(buf)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, Header{Opcode: OpcodeOpenV1, ID: 42}, h)
}

func TestUnpackHeaderTooShort(t *testing.T) {
	_, _, err := UnpackHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrProtocol)
}

func TestReplyHeaderNormalizesUnknownStatus(t *testing.T) {
	buf := make([]byte, ReplyHeaderSize)
	PackReplyHeader(buf, Header{Opcode: OpcodeOpenV1, ID: 1}, Status(9999))
	_, status, _, err := UnpackReplyHeader(buf)
	require.NoError(t, err)
	require.Equal(t, StatusGenericError, status)
}

func TestOpenRoundTrip(t *testing.T) {
	req := OpenRequest{
		Name:        []byte("share\x00dir\x00file.txt"),
		Access:      AccessRead | AccessWrite,
		Flags:       OpenCreateIfAbsent | OpenTruncate,
		ShareAccess: ShareAccessRead,
	}
	buf := PackOpenRequest(req)
	got, err := UnpackOpenRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	reply := PackOpenReply(7, StatusSuccess, OpenReply{Handle: 99, Created: true})
	or, status, err := UnpackOpenReply(reply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, OpenReply{Handle: 99, Created: true}, or)
}

func TestReadWriteRoundTrip(t *testing.T) {
	rreq := ReadRequest{Handle: 1, Offset: 128, Length: 4096}
	buf := PackReadRequest(rreq)
	got, err := UnpackReadRequest(buf)
	require.NoError(t, err)
	require.Equal(t, rreq, got)

	rreply := PackReadReply(1, StatusSuccess, ReadReply{Data: []byte("hello")})
	rr, status, err := UnpackReadReply(rreply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, []byte("hello"), rr.Data)

	wreq := WriteRequest{Handle: 1, Offset: 0, Data: []byte("payload")}
	wbuf := PackWriteRequest(wreq)
	wgot, err := UnpackWriteRequest(wbuf)
	require.NoError(t, err)
	require.Equal(t, wreq, wgot)

	wreply := PackWriteReply(1, StatusSuccess, WriteReply{Written: 7})
	wr, status, err := UnpackWriteReply(wreply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, uint32(7), wr.Written)
}

func TestStreamWriteRoundTrip(t *testing.T) {
	req := StreamWriteRequest{Handle: 3, Data: []byte("appended")}
	buf := PackStreamWriteRequest(req)
	got, err := UnpackStreamWriteRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	reply := PackStreamWriteReply(3, StatusSuccess, WriteReply{Written: 8})
	_, status, err := UnpackWriteReply(reply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
}

func TestCloseRoundTrip(t *testing.T) {
	req := CloseRequest{Handle: 5}
	buf := PackCloseRequest(req)
	got, err := UnpackCloseRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestGetAttrRoundTripByHandle(t *testing.T) {
	req := GetAttrRequest{Target: GetAttrTarget{ByHandle: true, Handle: 12}, Version: 1}
	buf := PackGetAttrRequest(req)
	got, err := UnpackGetAttrRequest(buf, 1)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestGetAttrRoundTripByName(t *testing.T) {
	req := GetAttrRequest{Target: GetAttrTarget{Name: []byte("share\x00f")}, Version: 2}
	buf := PackGetAttrRequest(req)
	got, err := UnpackGetAttrRequest(buf, 2)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestGetAttrReplyV1UsesImplicitMask(t *testing.T) {
	attr := Attr{
		Type:       FileTypeRegular,
		Size:       1024,
		OwnerPerms: 7, GroupPerms: 5, OtherPerms: 5,
	}
	buf := PackGetAttrReply(1, StatusSuccess, 1, GetAttrReply{Attr: attr})
	reply, status, err := UnpackGetAttrReply(buf)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, AttrMask(ImplicitV1Mask), reply.Attr.Mask)
	require.Equal(t, uint64(1024), reply.Attr.Size)
}

func TestGetAttrReplyV2CarriesExplicitMask(t *testing.T) {
	attr := Attr{Mask: AttrSize | AttrFileID, Size: 42, FileID: 7}
	buf := PackGetAttrReply(1, StatusSuccess, 2, GetAttrReply{Attr: attr})
	reply, status, err := UnpackGetAttrReply(buf)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, AttrSize|AttrFileID, reply.Attr.Mask)
}

func TestSetAttrRoundTrip(t *testing.T) {
	req := SetAttrRequest{
		Target:  GetAttrTarget{ByHandle: true, Handle: 3},
		Attr:    Attr{Mask: AttrSize, Size: 0},
		Version: 2,
	}
	buf := PackSetAttrRequest(req)
	got, err := UnpackSetAttrRequest(buf, 2)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestSearchRoundTrip(t *testing.T) {
	oreq := SearchOpenRequest{Name: []byte("share\x00dir")}
	buf := PackSearchOpenRequest(oreq)
	got, err := UnpackSearchOpenRequest(buf)
	require.NoError(t, err)
	require.Equal(t, oreq, got)

	oreply := PackSearchOpenReply(1, StatusSuccess, SearchOpenReply{Handle: 4})
	sor, status, err := UnpackSearchOpenReply(oreply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, uint32(4), sor.Handle)

	rreq := SearchReadRequest{Handle: 4, Index: 0, MaxCount: 16}
	rbuf := PackSearchReadRequest(rreq)
	rgot, err := UnpackSearchReadRequest(rbuf)
	require.NoError(t, err)
	require.Equal(t, rreq, rgot)

	entries := []DirEntry{
		{FileID: 1, Type: FileTypeRegular, Name: []byte("a.txt")},
		{FileID: 2, Type: FileTypeDirectory, Name: []byte("sub")},
	}
	rreply := PackSearchReadReply(1, StatusSuccess, 1, SearchReadReply{Entries: entries, EndOfDir: true})
	srr, status, err := UnpackSearchReadReply(rreply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.True(t, srr.EndOfDir)
	require.Equal(t, entries, srr.Entries)

	creq := SearchCloseRequest{Handle: 4}
	cbuf := PackSearchCloseRequest(creq)
	cgot, err := UnpackSearchCloseRequest(cbuf)
	require.NoError(t, err)
	require.Equal(t, creq, cgot)
}

func TestDirOpsRoundTrip(t *testing.T) {
	cd := CreateDirRequest{Name: []byte("share\x00newdir"), OwnerPerms: 7, GroupPerms: 5, OtherPerms: 5}
	cdbuf := PackCreateDirRequest(cd)
	cdgot, err := UnpackCreateDirRequest(cdbuf)
	require.NoError(t, err)
	require.Equal(t, cd, cdgot)

	del := DeleteRequest{Name: []byte("share\x00file")}
	delbuf := PackDeleteRequest(del)
	delgot, err := UnpackDeleteRequest(delbuf)
	require.NoError(t, err)
	require.Equal(t, del, delgot)

	ren := RenameRequest{OldName: []byte("share\x00a"), NewName: []byte("share\x00b")}
	renbuf := PackRenameRequest(ren)
	rengot, err := UnpackRenameRequest(renbuf)
	require.NoError(t, err)
	require.Equal(t, ren, rengot)

	sym := SymlinkCreateRequest{Name: []byte("share\x00link"), Target: []byte("../target")}
	symbuf := PackSymlinkCreateRequest(sym)
	symgot, err := UnpackSymlinkCreateRequest(symbuf)
	require.NoError(t, err)
	require.Equal(t, sym, symgot)
}

func TestQueryVolumeRoundTrip(t *testing.T) {
	req := QueryVolumeRequest{Name: []byte("share\x00")}
	buf := PackQueryVolumeRequest(req)
	got, err := UnpackQueryVolumeRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	reply := PackQueryVolumeReply(1, StatusSuccess, QueryVolumeReply{FreeBytes: 1 << 30, TotalBytes: 1 << 32})
	qr, status, err := UnpackQueryVolumeReply(reply)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, uint64(1<<30), qr.FreeBytes)
}

func TestOplockChangeAlwaysUnsupported(t *testing.T) {
	req := OplockChangeRequest{Handle: 1, RequestedLevel: 2}
	buf := PackOplockChangeRequest(req)
	got, err := UnpackOplockChangeRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	reply := PackOplockChangeReply(1, StatusOperationNotSupported)
	_, status, _, err := UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, StatusOperationNotSupported, status)
}

func TestTakeBytesRejectsOverflowingLength(t *testing.T) {
	buf := make([]byte, 4)
	buf[0] = 0xFF
	buf[1] = 0xFF
	buf[2] = 0xFF
	buf[3] = 0xFF
	_, err := UnpackCloseRequest(buf)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestVersionTableDowngradeOnProtocolError(t *testing.T) {
	vt := NewVersionTable()
	require.Equal(t, 2, vt.Current(OpGetAttr))

	calls := 0
	var lastVersion int
	send := func(req []byte) (Status, []byte, error) {
		calls++
		lastVersion = int(req[0])
		if calls == 1 {
			return StatusProtocolError, nil, nil
		}
		return StatusSuccess, []byte{byte(lastVersion)}, nil
	}
	build := func(version int) []byte { return []byte{byte(version)} }

	reply, err := vt.SendWithDowngrade(OpGetAttr, build, send)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, vt.Current(OpGetAttr))
	require.Equal(t, []byte{1}, reply)
}

func TestVersionTableDowngradeFloorsAtOne(t *testing.T) {
	vt := NewVersionTable()
	vt.Downgrade(OpOpen) // already 1; OpOpen has only a V1 opcode
	require.Equal(t, 1, vt.Current(OpOpen))
}
