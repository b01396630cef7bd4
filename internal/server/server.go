// Package server implements the TCP accept loop and connection lifecycle
// described in spec §4, following the teacher's RedisServer: a listener
// goroutine hands each connection to its own goroutine, a background
// ticker drives active expiration, and a second ticker checks the
// configured save points against the keyspace's mutation counter to
// trigger BGSAVE-equivalent snapshots automatically.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ferrodb/ferrodb/internal/aof"
	"github.com/ferrodb/ferrodb/internal/config"
	"github.com/ferrodb/ferrodb/internal/dispatch"
	"github.com/ferrodb/ferrodb/internal/pubsub"
	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/snapshot"
	"github.com/ferrodb/ferrodb/internal/store"
)

const (
	snapshotFilename     = "dump.ferr"
	aofFilename          = "appendonly.aof"
	activeExpireInterval = 100 * time.Millisecond
	autoSaveCheckInterval = 1 * time.Second
	readIdleTimeout      = 5 * time.Minute
)

// Server owns the listener, the shared store, and the collaborators every
// connection's dispatcher needs.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	aofWriter  *aof.Writer
	hub        *pubsub.Hub
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger

	snapshotPath string

	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	conns    map[string]net.Conn
	shutdown bool

	lastSaveTime      time.Time
	mutationsAtLastSave int64
	saveMu            sync.Mutex
}

// New wires the store, AOF writer, pub/sub hub, and dispatcher, loads any
// persisted state from disk (snapshot first, then AOF replay on top — the
// AOF is authoritative on conflict per §4.C/§6), and binds the listening
// socket. Binding here, rather than in Run, means a port-already-in-use
// error is reported before the process claims to have started, so main.go
// can map it to the startup-failure exit code (§6) instead of the
// post-startup fatal-I/O one.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	st := store.New()
	hub := pubsub.NewHub()

	snapshotPath := filepath.Join(cfg.Dir, snapshotFilename)

	var aofWriter *aof.Writer
	if cfg.AppendOnly {
		aofCfg := aof.DefaultConfig()
		aofCfg.Path = filepath.Join(cfg.Dir, aofFilename)
		w, err := aof.NewWriter(aofCfg, log)
		if err != nil {
			return nil, fmt.Errorf("open append-only file: %w", err)
		}
		aofWriter = w
	}

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		cfg:          cfg,
		store:        st,
		aofWriter:    aofWriter,
		hub:          hub,
		log:          log,
		snapshotPath: snapshotPath,
		listener:     ln,
		conns:        make(map[string]net.Conn),
		lastSaveTime: time.Now(),
	}
	s.dispatcher = dispatch.New(st, aofWriter, hub, snapshotPath, log)

	if err := s.loadPersisted(); err != nil {
		ln.Close()
		return nil, err
	}
	s.mutationsAtLastSave = st.Mutations()

	return s, nil
}

// loadPersisted restores the keyspace from the snapshot file if one
// exists, then replays the AOF on top of it so any writes acknowledged
// after the last snapshot are not lost (§6 recovery order).
func (s *Server) loadPersisted() error {
	entries, err := snapshot.Load(s.snapshotPath)
	if err != nil {
		if errors.Is(err, snapshot.ErrCorruptSnapshot) {
			s.log.Warn("snapshot checksum mismatch, starting from empty state", zap.String("path", s.snapshotPath))
		} else {
			return fmt.Errorf("load snapshot: %w", err)
		}
	} else if entries != nil {
		s.store.Load(entries)
		s.log.Info("snapshot loaded", zap.Int("keys", len(entries)))
	}

	if s.cfg.AppendOnly {
		aofPath := filepath.Join(s.cfg.Dir, aofFilename)
		commands, err := aof.LoadAll(aofPath)
		if err != nil {
			return fmt.Errorf("load append-only file: %w", err)
		}
		// Replay against a dispatcher with no AOF writer attached: the file
		// is already open in append mode, so running replayed commands
		// through the real writer would re-append every one of them and
		// double the file on each restart.
		replayDispatcher := dispatch.New(s.store, nil, s.hub, s.snapshotPath, s.log)
		replaySess := dispatch.NewSession("aof-replay")
		replayed := 0
		for _, args := range commands {
			if len(args) == 0 {
				continue
			}
			replayDispatcher.Execute(replaySess, &resp.Command{Args: args})
			replayed++
		}
		if replayed > 0 {
			s.log.Info("append-only file replayed", zap.Int("commands", replayed))
		}
	}
	return nil
}

// Run serves connections on the listener bound in New until ctx is
// canceled, at which point it performs a graceful shutdown: stop the
// listener, drain in-flight connections, flush the AOF, and write a final
// snapshot. The accept loop and the listener stop run as an errgroup, the
// way the pack's zmux-server orchestrates its own shutdown path; the drain,
// AOF close and final snapshot run in sequence after that group's Wait
// returns. Errors returned from Run
// are post-startup failures (§6 exit code 2); bind failures are reported
// earlier, from New.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("listening", zap.String("addr", s.listener.Addr().String()))

	stopExpire := make(chan struct{})
	go s.runActiveExpireLoop(stopExpire)
	go s.runAutoSaveLoop(stopExpire)
	defer close(stopExpire)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.acceptLoop(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdownListener()
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Warn("shutdown group returned error", zap.Error(err))
	}
	s.drainConnections()
	return s.finalPersist()
}

// Addr returns the bound listener's address; useful when Port is 0 and the
// OS assigns an ephemeral port. Valid any time after New returns.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.shutdown
			s.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		id := uuid.NewString()
		s.mu.Lock()
		s.conns[id] = conn
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, id)
				s.mu.Unlock()
			}()
			s.handleConnection(ctx, id, conn)
		}()
	}
}

func (s *Server) shutdownListener() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) drainConnections() {
	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn("shutdown timeout reached, forcing exit")
	}
}

// finalPersist flushes the AOF and writes one last snapshot so the next
// startup has the freshest possible state.
func (s *Server) finalPersist() error {
	if s.aofWriter != nil {
		if err := s.aofWriter.Close(); err != nil {
			s.log.Error("closing append-only file", zap.Error(err))
		}
	}
	entries := s.store.Snapshot()
	if err := snapshot.Save(s.snapshotPath, entries); err != nil {
		s.log.Error("final snapshot failed", zap.Error(err))
		return err
	}
	s.log.Info("shutdown complete")
	return nil
}

func (s *Server) runActiveExpireLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(activeExpireInterval)
	defer ticker.Stop()
	cfg := store.DefaultSweepConfig()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.store.ActiveExpireCycle(cfg)
		}
	}
}

// runAutoSaveLoop checks the configured save points (§4.D: "M seconds
// since last snapshot and >= K mutations") every second and triggers a
// background snapshot the moment any threshold is crossed.
func (s *Server) runAutoSaveLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(autoSaveCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.maybeAutoSave()
		}
	}
}

func (s *Server) maybeAutoSave() {
	s.saveMu.Lock()
	elapsed := time.Since(s.lastSaveTime)
	mutations := s.store.Mutations() - s.mutationsAtLastSave
	due := false
	for _, sp := range s.cfg.SavePoints {
		if elapsed >= time.Duration(sp.Seconds)*time.Second && mutations >= int64(sp.Changes) {
			due = true
			break
		}
	}
	if !due {
		s.saveMu.Unlock()
		return
	}
	s.lastSaveTime = time.Now()
	s.mutationsAtLastSave = s.store.Mutations()
	s.saveMu.Unlock()

	entries := s.store.Snapshot()
	go func() {
		if err := snapshot.Save(s.snapshotPath, entries); err != nil {
			s.log.Error("auto-save failed", zap.Error(err))
			return
		}
		s.log.Info("auto-save completed", zap.Int("keys", len(entries)))
	}()
}
