// Package server wires a transport.Transport to a dispatch.Dispatcher
// through a session.Manager: the run loop spec §2 and §5 describe but that
// neither package owns by itself. A small fixed pool of worker goroutines
// pulls (packet, transport session) pairs off the transport and dispatches
// them; sessions across the pool run fully in parallel, and the only
// serialization is each session's own three ordered locks (spec §5) — there
// is no per-connection single-goroutine loop here, unlike an adapter that
// processes one connection's requests strictly in order.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hgfsd/hgfsd/internal/dispatch"
	"github.com/hgfsd/hgfsd/internal/handletable"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/internal/transport"
)

// Metrics observes server-level state that spans sessions: how many are
// currently open and how full each one's handle table is. Dispatcher-local
// metrics (per-operation latency, cache hit rate, evictions) are the
// separate dispatch.Metrics interface; a single concrete type may
// implement both.
type Metrics interface {
	SetActiveSessions(n int)
	SetHandleOccupancy(sessionID uint64, cached, total int)
	// ClearSession drops a closed session's occupancy contribution.
	ClearSession(sessionID uint64)
}

// Config bounds the worker pool and the metrics sampling cadence.
type Config struct {
	// Workers is the number of goroutines pulling from the transport.
	// Sessions are independent, so this is the only real degree of
	// dispatch parallelism the server imposes; a value of 0 defaults to 8.
	Workers int
	// SampleInterval controls how often handle-table occupancy is sampled
	// for Metrics. Zero disables sampling even if Metrics is set.
	SampleInterval time.Duration
}

// Server runs the worker pool that drives one Transport against one
// Dispatcher, tracking the transport's own session references against the
// Sessions it creates.
type Server struct {
	transport  transport.Transport
	dispatcher *dispatch.Dispatcher
	sessions   *session.Manager
	cfg        Config
	metrics    Metrics

	mu       sync.Mutex
	bySessID map[transport.SessionRef]*session.Session
}

// New builds a Server. A cfg.Workers of 0 or less defaults to 8.
func New(t transport.Transport, d *dispatch.Dispatcher, sessions *session.Manager, cfg Config) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	return &Server{
		transport:  t,
		dispatcher: d,
		sessions:   sessions,
		cfg:        cfg,
		bySessID:   make(map[transport.SessionRef]*session.Session),
	}
}

// SetMetrics attaches a Metrics sink. Passing nil (the default) disables
// sampling.
func (s *Server) SetMetrics(m Metrics) {
	s.metrics = m
}

// Run starts the worker pool and blocks until ctx is cancelled or every
// worker has exited. On return, every session the server created has been
// closed and its handles drained.
func (s *Server) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			s.workerLoop(ctx, worker)
		}(i)
	}

	if s.metrics != nil && s.cfg.SampleInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.sampleLoop(ctx)
		}()
	}

	wg.Wait()
	s.sessions.Shutdown(closeFileNode)
	return nil
}

func (s *Server) workerLoop(ctx context.Context, worker int) {
	for {
		packet, ref, err := s.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.forgetSession(ref)
			continue
		}

		sess := s.sessionFor(ref)
		reply := s.dispatcher.Dispatch(sess, packet)
		if err := s.transport.Send(ref, reply); err != nil {
			logger.Debug("server: send failed", "session", ref, "error", err, "worker", worker)
		}

		if s.transport.Closed(ref) {
			s.forgetSession(ref)
		}
	}
}

// sessionFor returns the Session bound to a transport reference, creating
// one (and registering it with the session.Manager) on first sight.
func (s *Server) sessionFor(ref transport.SessionRef) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.bySessID[ref]; ok {
		return sess
	}

	r := ref
	sess := s.sessions.CreateSession(session.KindRegular, func(reply []byte) error {
		return s.transport.Send(r, reply)
	})
	logger.Debug("server: session created", "session_id", sess.ID, "trace_id", sess.TraceID)
	s.bySessID[ref] = sess
	s.updateActiveSessionsLocked()
	return sess
}

func (s *Server) forgetSession(ref transport.SessionRef) {
	s.mu.Lock()
	sess, ok := s.bySessID[ref]
	if ok {
		delete(s.bySessID, ref)
	}
	s.updateActiveSessionsLocked()
	s.mu.Unlock()

	if ok {
		s.sessions.RemoveSession(sess.ID, closeFileNode)
		if s.metrics != nil {
			s.metrics.ClearSession(sess.ID)
		}
	}
}

func (s *Server) updateActiveSessionsLocked() {
	if s.metrics != nil {
		s.metrics.SetActiveSessions(len(s.bySessID))
	}
}

func (s *Server) sampleLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sampleOccupancy()
		}
	}
}

func (s *Server) sampleOccupancy() {
	s.mu.Lock()
	sessions := make([]*session.Session, 0, len(s.bySessID))
	for _, sess := range s.bySessID {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.NodeArrayLock.Lock()
		cached, total := sess.Nodes.CachedCount(), sess.Nodes.NumNodes()
		sess.NodeArrayLock.Unlock()
		s.metrics.SetHandleOccupancy(sess.ID, cached, total)
	}
}

// closeFileNode is the handletable close callback every Session.Close and
// Manager.Shutdown call drains its handles with: it releases the host
// descriptor a FileNode may still hold open.
func closeFileNode(n *handletable.FileNode) {
	if f := n.FD(); f != nil {
		_ = f.Close()
	}
}
