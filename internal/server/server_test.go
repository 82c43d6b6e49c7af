package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/config"
	"github.com/edirooss/rediskv-server/internal/dispatch"
	"github.com/edirooss/rediskv-server/internal/evict"
	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/slowlog"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/edirooss/rediskv-server/internal/txn"
	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	counters := stats.New()
	cfg := config.Config{Databases: 4}
	dbs := store.NewDBSet(cfg.Databases, 4, counters)
	saver := snapshot.NewSaver(nil, t.TempDir()+"/snap.bin", &snapshot.Store{DBs: dbs})
	return dispatch.New(nil, cfg, dbs, txn.NewCoordinator(), pubsub.NewHub(nil), counters, slowlog.New(32, 0), evict.New(5, counters), saver, &session.IDAllocator{})
}

func Test_HandleConn_RespondsToPingOverThePipe(t *testing.T) {
	t.Parallel()

	client, serverSide := net.Pipe()
	defer client.Close()

	s := New(zap.NewNop(), config.Config{}, newTestDispatcher(t), nil, nil)

	done := make(chan struct{})
	go func() {
		s.handleConn(context.Background(), 1, serverSide)
		close(done)
	}()

	_, err := client.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)

	_, err = client.Write([]byte("*1\r\n$4\r\nQUIT\r\n"))
	require.NoError(t, err)
	_, _ = reader.ReadString('\n')

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleConn did not return after QUIT")
	}
}

func Test_HandleConn_RegistersAndUnregistersTheSession(t *testing.T) {
	t.Parallel()

	client, serverSide := net.Pipe()
	defer client.Close()

	d := newTestDispatcher(t)
	s := New(zap.NewNop(), config.Config{}, d, nil, nil)

	done := make(chan struct{})
	go func() {
		s.handleConn(context.Background(), 7, serverSide)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		if d.Sessions.Count() == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("session never registered")
		case <-time.After(time.Millisecond):
		}
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleConn did not return after client close")
	}
	require.Equal(t, 0, d.Sessions.Count())
}

func Test_Run_ListensAndStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	cfg := config.Config{ListenAddr: "127.0.0.1:0"}
	s := New(zap.NewNop(), cfg, d, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
