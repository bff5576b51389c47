package transport

import (
	"context"
	"fmt"
	"sync"
)

// Loopback is an in-process Transport for tests: packets fed in with Push
// arrive from Receive, and replies handed to Send are recorded per session
// and can be read back, in order, with Sent.
type Loopback struct {
	mu       sync.Mutex
	sent     map[SessionRef][][]byte
	closed   map[SessionRef]bool
	inbound  chan inbound
}

// NewLoopback creates an empty Loopback transport.
func NewLoopback() *Loopback {
	return &Loopback{
		sent:    make(map[SessionRef][][]byte),
		closed:  make(map[SessionRef]bool),
		inbound: make(chan inbound, 64),
	}
}

// Push enqueues a packet as if it arrived from the given session.
func (l *Loopback) Push(session SessionRef, packet []byte) {
	l.inbound <- inbound{packet: packet, session: session}
}

func (l *Loopback) Receive(ctx context.Context) ([]byte, SessionRef, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case in := <-l.inbound:
		return in.packet, in.session, in.err
	}
}

func (l *Loopback) Send(session SessionRef, packet []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed[session] {
		return fmt.Errorf("transport: session %d closed", session)
	}
	l.sent[session] = append(l.sent[session], packet)
	return nil
}

func (l *Loopback) Closed(session SessionRef) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed[session]
}

// CloseSession marks a session as closed, so future Sends fail.
func (l *Loopback) CloseSession(session SessionRef) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed[session] = true
}

// Sent returns every reply packet sent to a session, in order.
func (l *Loopback) Sent(session SessionRef) [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.sent[session]...)
}
