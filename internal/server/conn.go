package server

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"go.uber.org/zap"
)

// connWriter serializes writes to one connection: the read loop writes
// command replies, a second goroutine writes pushed pub/sub messages,
// and resp.Conn's buffered writer is not safe for concurrent use.
type connWriter struct {
	mu sync.Mutex
	rc *resp.Conn
}

func (cw *connWriter) WriteReply(r resp.Reply) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.rc.WriteReply(r)
}

// handleConn owns one client connection for its whole lifetime: command
// read/dispatch/reply on the calling goroutine, pub/sub delivery pumped
// by a second goroutine, both funneled through the same connWriter.
func (s *Server) handleConn(ctx context.Context, id int64, netConn net.Conn) {
	defer netConn.Close()

	sess := session.New(id, netConn, s.cfg.AuthPassword != "")
	sess.Sub = s.disp.Hub.NewSubscriber()
	s.disp.Sessions.Register(sess)
	defer func() {
		s.disp.Sessions.Unregister(sess.ID)
		s.disp.Hub.UnsubscribeAll(sess.Sub)
		sess.Sub.Close()
	}()

	rc := resp.NewConn(netConn, s.respLimits())
	cw := &connWriter{rc: rc}

	stop := make(chan struct{})
	defer close(stop)
	go pumpPubSub(sess.Sub, cw, stop)

	log := s.log.With(zap.Int64("client_id", id), zap.String("addr", sess.Addr))
	log.Debug("client connected")
	defer log.Debug("client disconnected")

	for {
		argv, err := rc.ReadCommand()
		if err != nil {
			return
		}
		if len(argv) == 0 {
			continue // empty inline command; wait for the next one
		}
		reply := s.disp.Dispatch(sess, argv)
		if err := cw.WriteReply(reply); err != nil {
			return
		}
		if strings.EqualFold(string(argv[0]), "QUIT") {
			return
		}
	}
}

// pumpPubSub delivers queued pub/sub messages to the connection as they
// arrive, independent of whatever the read loop is blocked on.
func pumpPubSub(sub *pubsub.Subscriber, cw *connWriter, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-sub.Wait():
		}
		for _, msg := range sub.Drain() {
			if err := cw.WriteReply(encodeMessage(msg)); err != nil {
				return
			}
		}
	}
}

func encodeMessage(msg pubsub.Message) resp.Reply {
	if msg.Kind == "pmessage" {
		return resp.Array{resp.BulkStr("pmessage"), resp.BulkStr(msg.Pattern), resp.BulkStr(msg.Channel), resp.Bulk(msg.Payload)}
	}
	return resp.Array{resp.BulkStr(msg.Kind), resp.BulkStr(msg.Channel), resp.Bulk(msg.Payload)}
}
