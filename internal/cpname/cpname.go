// Package cpname implements the cross-platform (CP) path encoding used on
// the wire between guest and host: path components separated by a single
// NUL byte, with an escape byte protecting any byte in a caller-supplied
// "must escape" set. A second form, the guest-escape form, uses the same
// escape primitive to hide characters that are illegal in the guest's local
// filesystem; the host reverses it before further processing.
package cpname

import "errors"

// ErrBufferTooSmall is returned by Encode when dst cannot hold the result.
var ErrBufferTooSmall = errors.New("cpname: destination buffer too small")

// DefaultEscape is the conventional escape byte ('%').
const DefaultEscape byte = '%'

// MustEscapeSet is a 256-entry table; MustEscapeSet[b] is true if byte b
// must be escaped when it appears in a path component.
type MustEscapeSet [256]bool

// NewMustEscapeSet builds a MustEscapeSet from the given bytes, always
// including the escape byte itself and the NUL separator.
func NewMustEscapeSet(escape byte, extra ...byte) MustEscapeSet {
	var set MustEscapeSet
	set[escape] = true
	set[0] = true
	for _, b := range extra {
		set[b] = true
	}
	return set
}

// Encode writes the CP-encoded form of input into dst, escaping every byte
// present in mustEscape with the escape byte followed by the original byte
// plus 1 (so that the escaped byte never collides with a real NUL
// separator). It returns the number of bytes written to dst, or
// ErrBufferTooSmall if dst is not large enough.
func Encode(input []byte, mustEscape MustEscapeSet, escape byte, dst []byte) (int, error) {
	n := 0
	for _, b := range input {
		if mustEscape[b] {
			if n+2 > len(dst) {
				return 0, ErrBufferTooSmall
			}
			dst[n] = escape
			dst[n+1] = b + 1
			n += 2
			continue
		}
		if n+1 > len(dst) {
			return 0, ErrBufferTooSmall
		}
		dst[n] = b
		n++
	}
	return n, nil
}

// EncodedLen returns the number of bytes Encode would write for input,
// useful for sizing a destination buffer ahead of time.
func EncodedLen(input []byte, mustEscape MustEscapeSet) int {
	n := 0
	for _, b := range input {
		if mustEscape[b] {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// DecodeInPlace reverses Encode, overwriting buf with the unescaped bytes
// and returning the new length. Decode never fails: a trailing escape byte
// with no following byte, or an escape for an out-of-range value, is
// dropped rather than rejected, matching the permissive behavior mandated
// by the wire protocol.
func DecodeInPlace(buf []byte, escape byte) int {
	w := 0
	for r := 0; r < len(buf); r++ {
		b := buf[r]
		if b != escape {
			buf[w] = b
			w++
			continue
		}
		if r+1 >= len(buf) {
			// Truncated escape sequence at end of buffer: drop it.
			break
		}
		r++
		if buf[r] == 0 {
			// Escaped value underflowed back to 0 (shouldn't happen for a
			// well-formed encoder, but decode must never fail): drop it.
			continue
		}
		buf[w] = buf[r] - 1
		w++
	}
	return w
}

// Decode is the allocating counterpart of DecodeInPlace.
func Decode(input []byte, escape byte) []byte {
	buf := make([]byte, len(input))
	copy(buf, input)
	n := DecodeInPlace(buf, escape)
	return buf[:n]
}

// SplitFirstComponent splits a CP-encoded buffer at its first NUL
// separator, returning the first component and the remainder (which
// begins immediately after the separator). hasRest reports whether a
// separator was found; when it is false, rest is nil and buf is the only
// component.
func SplitFirstComponent(buf []byte) (first, rest []byte, hasRest bool) {
	for i, b := range buf {
		if b == 0 {
			return buf[:i], buf[i+1:], true
		}
	}
	return buf, nil, false
}

// Components splits a full CP-encoded buffer into its NUL-separated
// components.
func Components(buf []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range buf {
		if b == 0 {
			out = append(out, buf[start:i])
			start = i + 1
		}
	}
	out = append(out, buf[start:])
	return out
}

// Join reassembles path components into a single NUL-separated CP buffer.
func Join(components [][]byte) []byte {
	n := 0
	for i, c := range components {
		n += len(c)
		if i != len(components)-1 {
			n++
		}
	}
	out := make([]byte, 0, n)
	for i, c := range components {
		out = append(out, c...)
		if i != len(components)-1 {
			out = append(out, 0)
		}
	}
	return out
}
