// Package server wires the RESP2 accept loop and the background
// maintenance tasks (active expiration, periodic snapshotting) into one
// supervised lifecycle. Grounded on the teacher's gin http.Server
// construction in cmd/zmux-server/main.go (fixed read/write/idle
// timeouts, a named zap sub-logger, ListenAndServe in a goroutine with
// signal-driven Shutdown) generalized from one HTTP listener to a plain
// TCP listener speaking RESP2, and on the node/coordinator accept+signal
// pattern in the pack's distributed-systems example for the
// signal.Notify-driven graceful shutdown shape.
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edirooss/rediskv-server/internal/config"
	"github.com/edirooss/rediskv-server/internal/dispatch"
	"github.com/edirooss/rediskv-server/internal/expire"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server owns the listener and every background task that must stop
// together on shutdown.
type Server struct {
	log    *zap.Logger
	cfg    config.Config
	disp   *dispatch.Dispatcher
	sampler *expire.Sampler
	saver  *snapshot.Saver

	ln net.Listener
}

func New(log *zap.Logger, cfg config.Config, disp *dispatch.Dispatcher, sampler *expire.Sampler, saver *snapshot.Saver) *Server {
	return &Server{log: log.Named("server"), cfg: cfg, disp: disp, sampler: sampler, saver: saver}
}

// Run listens on cfg.ListenAddr and serves connections until ctx is
// cancelled or a SIGINT/SIGTERM arrives. Before returning it waits, via
// the errgroup, for the accept loop and the background tasks; connection
// goroutines are not part of the errgroup and are not waited for.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.Info("listening", zap.String("addr", s.cfg.ListenAddr))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.acceptLoop(gctx) })

	if s.sampler != nil {
		g.Go(func() error { return s.sampler.Run(gctx) })
	}
	if s.saver != nil && s.cfg.RDBAutoSaveSecs > 0 {
		stopSave := make(chan struct{})
		g.Go(func() error {
			<-gctx.Done()
			close(stopSave)
			return nil
		})
		g.Go(func() error {
			s.saver.RunPeriodic(time.Duration(s.cfg.RDBAutoSaveSecs)*time.Second, stopSave)
			return nil
		})
	}

	// Unblock Accept() as soon as the context is cancelled; net.Listener
	// has no context-aware Accept, so closing it is the idiomatic way to
	// interrupt a blocked accept loop.
	g.Go(func() error {
		<-gctx.Done()
		return s.ln.Close()
	})

	err = g.Wait()
	if s.saver != nil {
		if serr := s.saver.Save(); serr != nil {
			s.log.Warn("final save on shutdown failed", zap.Error(serr))
		}
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.Warn("accept failed", zap.Error(err))
				return err
			}
		}
		id := s.disp.IDAlloc.Next()
		go s.handleConn(ctx, id, conn)
	}
}

func (s *Server) respLimits() resp.Limits {
	return resp.Limits{MaxBulkBytes: s.cfg.BulkLimitBytes, MaxArrayLen: s.cfg.ArrayLimitLen}
}
