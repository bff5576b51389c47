package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
)

// UnixServer implements Transport over a Unix domain socket using the same
// length-prefixed framing as TCPServer (spec §6: "unix" is the default
// Transport.Kind, since host and guest are usually collocated).
type UnixServer struct {
	listener net.Listener
	path     string

	mu       sync.Mutex
	conns    map[SessionRef]net.Conn
	nextID   SessionRef
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	inboundCh chan inbound
}

// NewUnixServer binds a Unix domain socket at path. A stale socket file
// left behind by an unclean shutdown is removed before binding.
func NewUnixServer(path string) (*UnixServer, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", path, err)
	}
	return &UnixServer{
		listener:  ln,
		path:      path,
		conns:     make(map[SessionRef]net.Conn),
		shutdown:  make(chan struct{}),
		inboundCh: make(chan inbound, 64),
	}, nil
}

func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, err := net.Dial("unix", path); err == nil {
		return fmt.Errorf("transport: socket %s already in use", path)
	}
	return os.Remove(path)
}

// Addr returns the listener's bound address.
func (s *UnixServer) Addr() net.Addr { return s.listener.Addr() }

// Serve runs the accept loop until Close is called or the listener errors.
func (s *UnixServer) Serve() error {
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

func (s *UnixServer) readLoop(id SessionRef, conn net.Conn) {
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

func (s *UnixServer) dropConn(id SessionRef) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Receive implements Transport.
func (s *UnixServer) Receive(ctx context.Context) ([]byte, SessionRef, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case in := <-s.inboundCh:
		return in.packet, in.session, in.err
	}
}

// Send implements Transport.
func (s *UnixServer) Send(session SessionRef, packet []byte) error {
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
func (s *UnixServer) Closed(session SessionRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conns[session]
	return !ok
}

// Close stops accepting new connections, closes every live one, and
// removes the socket file.
func (s *UnixServer) Close() error {
	var err error
	s.once.Do(func() {
		close(s.shutdown)
		err = s.listener.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		_ = os.Remove(s.path)
	})
	s.wg.Wait()
	return err
}
