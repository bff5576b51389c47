// Package transport defines the consumed transport contract (spec §6):
// delivering framed packet buffers to the dispatcher and carrying reply
// bytes back. Framing, accept/close notification, and the wire encoding
// below the packet boundary are the transport's responsibility, not the
// dispatcher's.
package transport

import "context"

// SessionRef is an opaque reference to the session a received packet
// belongs to, as handed back by Receive.
type SessionRef uint64

// Transport is the consumed collaborator the session manager and
// dispatcher run against. A session is accepted once and then produces a
// stream of (packet, session) pairs until the transport signals closure.
type Transport interface {
	// Receive blocks until a packet arrives, the context is cancelled, or
	// the transport is closed.
	Receive(ctx context.Context) (packet []byte, session SessionRef, err error)
	// Send delivers a reply packet for the given session.
	Send(session SessionRef, packet []byte) error
	// Closed reports whether the transport has observed the session close
	// (e.g. the guest disconnected).
	Closed(session SessionRef) bool
}
