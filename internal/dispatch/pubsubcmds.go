package dispatch

import (
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
)

func ensureSubscriber(d *Dispatcher, sess *session.Session) {
	if sess.Sub == nil {
		sess.Sub = d.Hub.NewSubscriber()
	}
}

func subAckReply(kind, name string, count int) resp.Reply {
	return resp.Array{resp.BulkStr(kind), resp.Bulk([]byte(name)), resp.Int(int64(count))}
}

func cmdSubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ensureSubscriber(d, sess)
	var acks resp.Array
	for _, c := range argv[1:] {
		ch := string(c)
		d.Hub.Subscribe(ch, sess.Sub)
		sess.AddChannel(ch)
		acks = append(acks, subAckReply("subscribe", ch, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	return flattenAcks(acks)
}

func cmdUnsubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	names := argvTail(argv)
	if len(names) == 0 {
		names = sess.Channels()
	}
	var acks resp.Array
	for _, ch := range names {
		if sess.Sub != nil {
			d.Hub.Unsubscribe(ch, sess.Sub)
		}
		sess.RemoveChannel(ch)
		acks = append(acks, subAckReply("unsubscribe", ch, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	if len(acks) == 0 {
		acks = append(acks, subAckReply("unsubscribe", "", 0))
	}
	return flattenAcks(acks)
}

func cmdPSubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ensureSubscriber(d, sess)
	var acks resp.Array
	for _, c := range argv[1:] {
		pat := string(c)
		d.Hub.PSubscribe(pat, sess.Sub)
		sess.AddPattern(pat)
		acks = append(acks, subAckReply("psubscribe", pat, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	return flattenAcks(acks)
}

func cmdPUnsubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	names := argvTail(argv)
	if len(names) == 0 {
		names = sess.Patterns()
	}
	var acks resp.Array
	for _, pat := range names {
		if sess.Sub != nil {
			d.Hub.PUnsubscribe(pat, sess.Sub)
		}
		sess.RemovePattern(pat)
		acks = append(acks, subAckReply("punsubscribe", pat, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	if len(acks) == 0 {
		acks = append(acks, subAckReply("punsubscribe", "", 0))
	}
	return flattenAcks(acks)
}

func cmdSSubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ensureSubscriber(d, sess)
	var acks resp.Array
	for _, c := range argv[1:] {
		ch := string(c)
		d.Hub.SSubscribe(ch, sess.Sub)
		sess.AddShardChannel(ch)
		acks = append(acks, subAckReply("ssubscribe", ch, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	return flattenAcks(acks)
}

func cmdSUnsubscribe(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	names := argvTail(argv)
	if len(names) == 0 {
		names = sess.ShardChannels()
	}
	var acks resp.Array
	for _, ch := range names {
		if sess.Sub != nil {
			d.Hub.SUnsubscribe(ch, sess.Sub)
		}
		sess.RemoveShardChannel(ch)
		acks = append(acks, subAckReply("sunsubscribe", ch, len(sess.Channels())+len(sess.Patterns())+len(sess.ShardChannels())))
	}
	if len(acks) == 0 {
		acks = append(acks, subAckReply("sunsubscribe", "", 0))
	}
	return flattenAcks(acks)
}

// flattenAcks returns the single subscribe/unsubscribe ack array directly
// for the common single-channel call. Real Redis sends one top-level
// reply per channel argument; since this server's connection loop writes
// exactly one reply per Dispatch call, a multi-channel SUBSCRIBE instead
// gets back an array of acks — documented here rather than silently
// truncated to the first one.
func flattenAcks(acks resp.Array) resp.Reply {
	if len(acks) == 1 {
		return acks[0]
	}
	return acks
}

func argvTail(argv [][]byte) []string {
	out := make([]string, len(argv)-1)
	for i, a := range argv[1:] {
		out[i] = string(a)
	}
	return out
}

func cmdPublish(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n := d.Hub.Publish(string(argv[1]), argv[2])
	return resp.Int(int64(n))
}

func cmdSPublish(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n := d.Hub.SPublish(string(argv[1]), argv[2])
	return resp.Int(int64(n))
}

func cmdPubSubChannels(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	pattern := ""
	if len(argv) >= 3 {
		pattern = string(argv[2])
	}
	return resp.StrArray(d.Hub.ChannelsMatching(pattern))
}

func cmdPubSubNumSub(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	out := make(resp.Array, 0, (len(argv)-2)*2)
	for _, c := range argv[2:] {
		ch := string(c)
		out = append(out, resp.BulkStr(ch), resp.Int(int64(d.Hub.NumSub(ch))))
	}
	return out
}

func cmdPubSubNumPat(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Int(int64(d.Hub.NumPat()))
}

func cmdPubSubShardChannels(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	pattern := ""
	if len(argv) >= 3 {
		pattern = string(argv[2])
	}
	return resp.StrArray(d.Hub.ShardChannelsMatching(pattern))
}

func cmdPubSubShardNumSub(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	out := make(resp.Array, 0, (len(argv)-2)*2)
	for _, c := range argv[2:] {
		ch := string(c)
		out = append(out, resp.BulkStr(ch), resp.Int(int64(d.Hub.NumShardSub(ch))))
	}
	return out
}
