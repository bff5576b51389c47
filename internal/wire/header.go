// Package wire implements the versioned HGFS packet codec: request header
// unpacking, opcode-specific payload pack/unpack, and the closed reply
// status enumeration. Lengths on the wire are little-endian (spec §6).
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrProtocol is returned whenever a packet fails to unpack because a
// declared length does not fit within the buffer, or the buffer is shorter
// than a fixed-size header. Per spec §4.2 this always translates to
// StatusProtocolError and the request is rejected without side effects.
var ErrProtocol = errors.New("wire: malformed packet")

// HeaderSize is the size in bytes of the fixed request/reply header.
const HeaderSize = 8

// Header is the fixed-size header shared by every request.
type Header struct {
	Opcode Opcode
	ID     uint32
}

// UnpackHeader reads the fixed header from the front of buf.
func UnpackHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, ErrProtocol
	}
	h := Header{
		Opcode: Opcode(binary.LittleEndian.Uint32(buf[0:4])),
		ID:     binary.LittleEndian.Uint32(buf[4:8]),
	}
	return h, buf[HeaderSize:], nil
}

// PackHeader writes the fixed header to dst[0:HeaderSize].
func PackHeader(dst []byte, h Header) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(h.Opcode))
	binary.LittleEndian.PutUint32(dst[4:8], h.ID)
}

// ReplyHeaderSize is HeaderSize plus the 4-byte status field every reply
// carries immediately after the header.
const ReplyHeaderSize = HeaderSize + 4

// PackReplyHeader writes header+status to the front of a reply buffer,
// normalizing any out-of-enumeration status to StatusGenericError.
func PackReplyHeader(dst []byte, h Header, status Status) {
	PackHeader(dst, h)
	binary.LittleEndian.PutUint32(dst[HeaderSize:HeaderSize+4], uint32(Normalize(status)))
}

// UnpackReplyHeader reads header+status from the front of buf.
func UnpackReplyHeader(buf []byte) (Header, Status, []byte, error) {
	h, rest, err := UnpackHeader(buf)
	if err != nil {
		return Header{}, 0, nil, err
	}
	if len(rest) < 4 {
		return Header{}, 0, nil, ErrProtocol
	}
	status := Normalize(Status(binary.LittleEndian.Uint32(rest[0:4])))
	return h, status, rest[4:], nil
}

// NewErrorReply packs a reply carrying only a header and status code, used
// for every failure path (spec §4.7 step 1: "on failure, pack a reply with
// ProtocolError and return").
func NewErrorReply(id uint32, opcode Opcode, status Status) []byte {
	buf := make([]byte, ReplyHeaderSize)
	PackReplyHeader(buf, Header{Opcode: opcode, ID: id}, status)
	return buf
}

// takeUint32 reads a little-endian uint32 at the front of buf, returning the
// remaining bytes. It is the workhorse used by every opcode-specific Unpack
// function to validate that declared lengths stay within bounds.
func takeUint32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, ErrProtocol
	}
	return binary.LittleEndian.Uint32(buf[0:4]), buf[4:], nil
}

func takeUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, ErrProtocol
	}
	return binary.LittleEndian.Uint64(buf[0:8]), buf[8:], nil
}

func takeByte(buf []byte) (byte, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, ErrProtocol
	}
	return buf[0], buf[1:], nil
}

// takeBytes reads a u32-length-prefixed byte string, validating that the
// declared length fits within buf (spec §4.2: "overflow yields
// ProtocolError").
func takeBytes(buf []byte) ([]byte, []byte, error) {
	n, rest, err := takeUint32(buf)
	if err != nil {
		return nil, nil, err
	}
	if uint64(n) > uint64(len(rest)) {
		return nil, nil, ErrProtocol
	}
	return rest[:n], rest[n:], nil
}

func putUint32(dst []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return append(dst, b...)
}

func putUint64(dst []byte, v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return append(dst, b...)
}

func putBytes(dst []byte, v []byte) []byte {
	dst = putUint32(dst, uint32(len(v)))
	return append(dst, v...)
}
