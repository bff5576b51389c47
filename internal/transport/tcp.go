package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// maxFrameLen bounds a single length-prefixed frame to guard against a
// peer declaring an absurd length and exhausting memory.
const maxFrameLen = 16 << 20

// inbound couples a received packet with the session it arrived on.
type inbound struct {
	packet  []byte
	session SessionRef
	err     error
}

// TCPServer implements Transport over length-prefixed TCP frames: each
// frame is a 4-byte little-endian length followed by that many payload
// bytes, mirroring the record-marking style the rest of the codebase uses
// for its own TCP listeners.
type TCPServer struct {
	listener net.Listener

	mu       sync.Mutex
	conns    map[SessionRef]net.Conn
	nextID   SessionRef
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	inboundCh chan inbound
}

// NewTCPServer constructs a TCPServer bound to addr. Call Serve to start
// accepting connections.
func NewTCPServer(addr string) (*TCPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &TCPServer{
		listener:  ln,
		conns:     make(map[SessionRef]net.Conn),
		shutdown:  make(chan struct{}),
		inboundCh: make(chan inbound, 64),
	}, nil
}

// Addr returns the listener's bound address.
func (s *TCPServer) Addr() net.Addr { return s.listener.Addr() }

// Serve runs the accept loop until Close is called or the listener errors.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				return err
			}
		}

		s.mu.Lock()
		s.nextID++
		id := s.nextID
		s.conns[id] = conn
		s.mu.Unlock()

		s.wg.Add(1)
		go s.readLoop(id, conn)
	}
}

func (s *TCPServer) readLoop(id SessionRef, conn net.Conn) {
	defer s.wg.Done()
	defer s.dropConn(id)

	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			s.inboundCh <- inbound{session: id, err: err}
			return
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		if n > maxFrameLen {
			s.inboundCh <- inbound{session: id, err: fmt.Errorf("transport: frame too large: %d", n)}
			return
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(conn, buf); err != nil {
			s.inboundCh <- inbound{session: id, err: err}
			return
		}
		s.inboundCh <- inbound{packet: buf, session: id}
	}
}

func (s *TCPServer) dropConn(id SessionRef) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Receive implements Transport.
func (s *TCPServer) Receive(ctx context.Context) ([]byte, SessionRef, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case in := <-s.inboundCh:
		return in.packet, in.session, in.err
	}
}

// Send implements Transport.
func (s *TCPServer) Send(session SessionRef, packet []byte) error {
	s.mu.Lock()
	conn, ok := s.conns[session]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: unknown session %d", session)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(packet)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := conn.Write(packet)
	return err
}

// Closed implements Transport.
func (s *TCPServer) Closed(session SessionRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conns[session]
	return !ok
}

// Close stops accepting new connections and closes every live one.
func (s *TCPServer) Close() error {
	var err error
	s.once.Do(func() {
		close(s.shutdown)
		err = s.listener.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
	return err
}
