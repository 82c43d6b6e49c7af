package dispatch

import (
	"strconv"
	"strings"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/txn"
)

func cmdPing(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if len(argv) == 2 {
		return resp.Bulk(argv[1])
	}
	return resp.SimpleString("PONG")
}

func cmdEcho(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Bulk(argv[1])
}

func cmdAuth(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if d.Cfg.AuthPassword == "" {
		return resp.Err(rerr.Generic("Client sent AUTH, but no password is set. Did you mean AUTH <username> <password>?"))
	}
	pass := string(argv[len(argv)-1])
	if pass != d.Cfg.AuthPassword {
		return resp.Err(rerr.WrongPassErr())
	}
	sess.SetAuthed(true)
	return resp.OK
}

func cmdSelect(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n, err := parseInt(argv[1])
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if !d.DBs.Valid(int(n)) {
		return resp.Err(rerr.Generic("DB index is out of range"))
	}
	sess.SetDBIndex(int(n))
	return resp.OK
}

// cmdHello replies with a fixed-shape server description (spec.md §4.8);
// RESP3 negotiation itself is out of scope, HELLO 2/3 is accepted but the
// connection stays on RESP2 framing either way.
func cmdHello(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Array{
		resp.BulkStr("server"), resp.BulkStr("rediskv"),
		resp.BulkStr("version"), resp.BulkStr("1.0.0"),
		resp.BulkStr("proto"), resp.Int(2),
		resp.BulkStr("id"), resp.Int(sess.ID),
		resp.BulkStr("mode"), resp.BulkStr("standalone"),
		resp.BulkStr("role"), resp.BulkStr("master"),
		resp.BulkStr("modules"), resp.Array{},
	}
}

func cmdQuit(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.OK
}

func cmdReset(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	sess.Tx = txn.TxState{}
	sess.Watches.Clear()
	if sess.Sub != nil {
		d.Hub.UnsubscribeAll(sess.Sub)
		sess.Sub.Close()
		sess.Sub = nil
	}
	sess.SetSubCount(0)
	sess.SetDBIndex(0)
	sess.SetAuthed(d.Cfg.AuthPassword == "")
	return resp.SimpleString("RESET")
}

func cmdClientID(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Int(sess.ID)
}

func cmdClientGetName(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	name := sess.GetName()
	if name == "" {
		return resp.NilBulk{}
	}
	return resp.BulkStr(name)
}

func cmdClientSetName(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	sess.SetName(string(argv[2]))
	return resp.OK
}

func cmdClientList(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	var b strings.Builder
	for _, s := range d.Sessions.All() {
		b.WriteString(clientInfoLine(s))
		b.WriteString("\n")
	}
	return resp.BulkStr(b.String())
}

func clientInfoLine(sess *session.Session) string {
	name := sess.GetName()
	return "id=" + strconv.FormatInt(sess.ID, 10) + " addr=" + sess.Addr + " name=" + name + " db=" + strconv.Itoa(sess.GetDBIndex())
}

func cmdClientPause(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.OK
}
