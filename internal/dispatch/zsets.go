package dispatch

import (
	"strings"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/edirooss/rediskv-server/internal/zset"
)

type zaddOpts struct {
	nx, xx, gt, lt, ch, incr bool
}

func parseZAddOpts(argv [][]byte) (zaddOpts, int, error) {
	var o zaddOpts
	i := 2
	for ; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "NX":
			o.nx = true
		case "XX":
			o.xx = true
		case "GT":
			o.gt = true
		case "LT":
			o.lt = true
		case "CH":
			o.ch = true
		case "INCR":
			o.incr = true
		default:
			goto done
		}
	}
done:
	if o.nx && (o.gt || o.lt) {
		return o, 0, rerr.SyntaxErr()
	}
	if o.gt && o.lt {
		return o, 0, rerr.SyntaxErr()
	}
	if (len(argv)-i)%2 != 0 || i == len(argv) {
		return o, 0, rerr.SyntaxErr()
	}
	return o, i, nil
}

func cmdZAdd(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	opts, pairsStart, perr := parseZAddOpts(argv)
	if perr != nil {
		return resp.Err(perr.(*rerr.Error))
	}
	if opts.incr && (len(argv)-pairsStart) != 2 {
		return resp.Err(rerr.Generic("INCR option supports a single increment-element pair"))
	}
	key := string(argv[1])
	ks := keyspaceFor(d, sess)

	var added, changed int64
	var incrResult *float64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var zv *store.ZSetValue
		var expiresAt int64
		if exists {
			v, terr := asZSet(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			zv = v
			expiresAt = e.ExpiresAt
		} else {
			if opts.xx {
				return e, false
			}
			zv = store.NewZSetValue()
		}
		anyMutation := false
		for i := pairsStart; i < len(argv); i += 2 {
			score, serr := parseFloat(argv[i])
			if serr != nil {
				opErr = serr
				return e, false
			}
			member := string(argv[i+1])
			old, had := zv.Z.Score(member)
			if opts.incr {
				if opts.nx && had {
					return e, false
				}
				if opts.xx && !had {
					return e, false
				}
				next := score
				if had {
					next = old + score
				}
				if (opts.gt && had && next <= old) || (opts.lt && had && next >= old) {
					return e, false
				}
				zv.Z.Add(member, next)
				incrResult = &next
				anyMutation = true
				continue
			}
			if had {
				if opts.nx {
					continue
				}
				if opts.gt && score <= old {
					continue
				}
				if opts.lt && score >= old {
					continue
				}
				if score != old {
					zv.Z.Add(member, score)
					changed++
					anyMutation = true
				}
			} else {
				if opts.xx {
					continue
				}
				zv.Z.Add(member, score)
				added++
				changed++
				anyMutation = true
			}
		}
		if !anyMutation {
			return e, false
		}
		return &store.Entry{Value: zv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if opts.incr {
		if incrResult == nil {
			return resp.NilBulk{}
		}
		return resp.BulkStr(formatFloat(*incrResult))
	}
	if opts.ch {
		return resp.Int(changed)
	}
	return resp.Int(added)
}

func getZSetOrNil(ks *store.Keyspace, key string) (*zset.ZSet, error) {
	e, ok := ks.Peek(key)
	if !ok {
		return nil, nil
	}
	zv, err := asZSet(e)
	if err != nil {
		return nil, err
	}
	return zv.Z, nil
}

func cmdZRem(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var removed int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		zv, terr := asZSet(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		for _, m := range argv[2:] {
			if zv.Z.Remove(string(m)) {
				removed++
			}
		}
		if zv.Z.Len() == 0 {
			return nil, true
		}
		if removed == 0 {
			return e, false
		}
		return &store.Entry{Value: zv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(removed)
}

func cmdZCard(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(z.Len()))
}

func cmdZScore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.NilBulk{}
	}
	s, ok := z.Score(string(argv[2]))
	if !ok {
		return resp.NilBulk{}
	}
	return resp.BulkStr(formatFloat(s))
}

func cmdZMScore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, len(argv)-2)
	for i, m := range argv[2:] {
		if z == nil {
			out[i] = resp.NilBulk{}
			continue
		}
		if s, ok := z.Score(string(m)); ok {
			out[i] = resp.BulkStr(formatFloat(s))
		} else {
			out[i] = resp.NilBulk{}
		}
	}
	return out
}

func cmdZIncrBy(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	delta, derr := parseFloat(argv[2])
	if derr != nil {
		return resp.Err(derr.(*rerr.Error))
	}
	key := string(argv[1])
	member := string(argv[3])
	ks := keyspaceFor(d, sess)
	var result float64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var zv *store.ZSetValue
		var expiresAt int64
		if exists {
			v, terr := asZSet(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			zv = v
			expiresAt = e.ExpiresAt
		} else {
			zv = store.NewZSetValue()
		}
		old, _ := zv.Z.Score(member)
		result = old + delta
		if isNaNOrInf(result) {
			opErr = rerr.Generic("resulting score is not a number (NaN)")
			return e, false
		}
		zv.Z.Add(member, result)
		return &store.Entry{Value: zv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.BulkStr(formatFloat(result))
}

func cmdZRank(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrankCommon(d, sess, argv, false)
}
func cmdZRevRank(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrankCommon(d, sess, argv, true)
}

func zrankCommon(d *Dispatcher, sess *session.Session, argv [][]byte, rev bool) resp.Reply {
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	withScore := len(argv) >= 4 && strings.EqualFold(string(argv[3]), "WITHSCORE")
	if z == nil {
		if withScore {
			return resp.NilArray{}
		}
		return resp.NilBulk{}
	}
	rank := z.Rank(string(argv[2]))
	if rank < 0 {
		if withScore {
			return resp.NilArray{}
		}
		return resp.NilBulk{}
	}
	if rev {
		rank = z.Len() - 1 - rank
	}
	if withScore {
		score, _ := z.Score(string(argv[2]))
		return resp.Array{resp.Int(int64(rank)), resp.BulkStr(formatFloat(score))}
	}
	return resp.Int(int64(rank))
}

func membersToReply(members []zset.Member, withScores bool) resp.Reply {
	out := make(resp.Array, 0, len(members)*2)
	for _, m := range members {
		out = append(out, resp.BulkStr(m.Name))
		if withScores {
			out = append(out, resp.BulkStr(formatFloat(m.Score)))
		}
	}
	return out
}

func cmdZRange(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByIndex(d, sess, argv, false)
}
func cmdZRevRange(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByIndex(d, sess, argv, true)
}

func zrangeByIndex(d *Dispatcher, sess *session.Session, argv [][]byte, rev bool) resp.Reply {
	start, serr := parseInt(argv[2])
	if serr != nil {
		return resp.Err(serr.(*rerr.Error))
	}
	stop, eerr := parseInt(argv[3])
	if eerr != nil {
		return resp.Err(eerr.(*rerr.Error))
	}
	withScores := false
	for _, a := range argv[4:] {
		if strings.EqualFold(string(a), "WITHSCORES") {
			withScores = true
		}
	}
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Array{}
	}
	n := z.Len()
	lo, hi := start, stop
	if rev {
		lo, hi = int64(n)-1-stop, int64(n)-1-start
	}
	members := z.RangeByIndex(int(lo), int(hi))
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	return membersToReply(members, withScores)
}

func parseScoreBound(b []byte) (float64, bool, error) {
	s := string(b)
	excl := false
	if strings.HasPrefix(s, "(") {
		excl = true
		s = s[1:]
	}
	f, err := parseFloat([]byte(s))
	if err != nil {
		return 0, false, err
	}
	return f, excl, nil
}

func cmdZRangeByScore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByScore(d, sess, argv, false)
}
func cmdZRevRangeByScore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByScore(d, sess, argv, true)
}

func zrangeByScore(d *Dispatcher, sess *session.Session, argv [][]byte, rev bool) resp.Reply {
	minArg, maxArg := argv[2], argv[3]
	if rev {
		minArg, maxArg = argv[3], argv[2]
	}
	min, minExcl, minErr := parseScoreBound(minArg)
	if minErr != nil {
		return resp.Err(minErr.(*rerr.Error))
	}
	max, maxExcl, maxErr := parseScoreBound(maxArg)
	if maxErr != nil {
		return resp.Err(maxErr.(*rerr.Error))
	}
	withScores := false
	var limitOffset, limitCount int64 = 0, -1
	hasLimit := false
	for i := 4; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "WITHSCORES":
			withScores = true
		case "LIMIT":
			if i+2 >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			off, oerr := parseInt(argv[i+1])
			if oerr != nil {
				return resp.Err(oerr.(*rerr.Error))
			}
			cnt, cerr := parseInt(argv[i+2])
			if cerr != nil {
				return resp.Err(cerr.(*rerr.Error))
			}
			limitOffset, limitCount, hasLimit = off, cnt, true
			i += 2
		}
	}
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Array{}
	}
	members := z.RangeByScore(zset.ScoreRange{Min: min, Max: max, MinExcl: minExcl, MaxExcl: maxExcl})
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	if hasLimit {
		members = applyLimit(members, limitOffset, limitCount)
	}
	return membersToReply(members, withScores)
}

func applyLimit(members []zset.Member, offset, count int64) []zset.Member {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(members)) {
		return nil
	}
	members = members[offset:]
	if count < 0 {
		return members
	}
	if count < int64(len(members)) {
		members = members[:count]
	}
	return members
}

func cmdZCount(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	min, minExcl, minErr := parseScoreBound(argv[2])
	if minErr != nil {
		return resp.Err(minErr.(*rerr.Error))
	}
	max, maxExcl, maxErr := parseScoreBound(argv[3])
	if maxErr != nil {
		return resp.Err(maxErr.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(z.CountByScore(zset.ScoreRange{Min: min, Max: max, MinExcl: minExcl, MaxExcl: maxExcl})))
}

func parseLexBound(b []byte) (zset.LexRange, error) {
	s := string(b)
	switch {
	case s == "-":
		return zset.LexRange{MinNegInf: true}, nil
	case s == "+":
		return zset.LexRange{MaxPosInf: true}, nil
	case strings.HasPrefix(s, "["):
		return zset.LexRange{Min: s[1:], Max: s[1:]}, nil
	case strings.HasPrefix(s, "("):
		return zset.LexRange{Min: s[1:], Max: s[1:], MinExcl: true, MaxExcl: true}, nil
	}
	return zset.LexRange{}, rerr.Generic("min or max not valid string range item")
}

func cmdZRangeByLex(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByLex(d, sess, argv, false)
}
func cmdZRevRangeByLex(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zrangeByLex(d, sess, argv, true)
}

func zrangeByLex(d *Dispatcher, sess *session.Session, argv [][]byte, rev bool) resp.Reply {
	minArg, maxArg := argv[2], argv[3]
	if rev {
		minArg, maxArg = argv[3], argv[2]
	}
	minB, minErr := parseLexBound(minArg)
	if minErr != nil {
		return resp.Err(minErr.(*rerr.Error))
	}
	maxB, maxErr := parseLexBound(maxArg)
	if maxErr != nil {
		return resp.Err(maxErr.(*rerr.Error))
	}
	r := zset.LexRange{
		Min: minB.Min, MinExcl: minB.MinExcl, MinNegInf: minB.MinNegInf,
		Max: maxB.Max, MaxExcl: maxB.MaxExcl, MaxPosInf: maxB.MaxPosInf,
	}
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Array{}
	}
	members := z.RangeByLex(r)
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	return membersToReply(members, false)
}

func cmdZLexCount(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	minB, minErr := parseLexBound(argv[2])
	if minErr != nil {
		return resp.Err(minErr.(*rerr.Error))
	}
	maxB, maxErr := parseLexBound(argv[3])
	if maxErr != nil {
		return resp.Err(maxErr.(*rerr.Error))
	}
	r := zset.LexRange{
		Min: minB.Min, MinExcl: minB.MinExcl, MinNegInf: minB.MinNegInf,
		Max: maxB.Max, MaxExcl: maxB.MaxExcl, MaxPosInf: maxB.MaxPosInf,
	}
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(len(z.RangeByLex(r))))
}

func zpopCommon(d *Dispatcher, sess *session.Session, argv [][]byte, max bool) resp.Reply {
	count := int64(1)
	if len(argv) >= 3 {
		n, err := parseInt(argv[2])
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		count = n
	}
	key := string(argv[1])
	ks := keyspaceFor(d, sess)
	var popped []zset.Member
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		zv, terr := asZSet(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		n := zv.Z.Len()
		take := int(count)
		if take > n {
			take = n
		}
		if max {
			all := zv.Z.RangeByIndex(n-take, n-1)
			for i := len(all) - 1; i >= 0; i-- {
				popped = append(popped, all[i])
			}
		} else {
			popped = zv.Z.RangeByIndex(0, take-1)
		}
		for _, m := range popped {
			zv.Z.Remove(m.Name)
		}
		if zv.Z.Len() == 0 {
			return nil, true
		}
		if take == 0 {
			return e, false
		}
		return &store.Entry{Value: zv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return membersToReply(popped, true)
}

func cmdZPopMin(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zpopCommon(d, sess, argv, false)
}
func cmdZPopMax(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zpopCommon(d, sess, argv, true)
}

// aggregate combines scores for ZUNION/ZINTER/ZDIFF family commands.
func aggregate(kind string, scores []float64) float64 {
	switch kind {
	case "MIN":
		m := scores[0]
		for _, s := range scores[1:] {
			if s < m {
				m = s
			}
		}
		return m
	case "MAX":
		m := scores[0]
		for _, s := range scores[1:] {
			if s > m {
				m = s
			}
		}
		return m
	default: // SUM
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum
	}
}

type zsetOpArgs struct {
	keys      []string
	weights   []float64
	aggregate string
}

func parseZSetOpArgs(argv [][]byte, numKeysIdx int) (zsetOpArgs, int, error) {
	numKeys, err := parseInt(argv[numKeysIdx])
	if err != nil || numKeys <= 0 {
		return zsetOpArgs{}, 0, rerr.Generic("at least 1 input key is needed")
	}
	keysStart := numKeysIdx + 1
	keysEnd := keysStart + int(numKeys)
	if keysEnd > len(argv) {
		return zsetOpArgs{}, 0, rerr.SyntaxErr()
	}
	out := zsetOpArgs{aggregate: "SUM"}
	for _, k := range argv[keysStart:keysEnd] {
		out.keys = append(out.keys, string(k))
	}
	i := keysEnd
	for ; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "WEIGHTS":
			for j := 0; j < len(out.keys); j++ {
				i++
				if i >= len(argv) {
					return out, 0, rerr.SyntaxErr()
				}
				w, werr := parseFloat(argv[i])
				if werr != nil {
					return out, 0, werr
				}
				out.weights = append(out.weights, w)
			}
		case "AGGREGATE":
			i++
			if i >= len(argv) {
				return out, 0, rerr.SyntaxErr()
			}
			out.aggregate = strings.ToUpper(string(argv[i]))
		case "WITHSCORES":
			return out, i, nil
		default:
			return out, 0, rerr.SyntaxErr()
		}
	}
	return out, i, nil
}

func zsetOpCompute(ks *store.Keyspace, oa zsetOpArgs, kind string) (map[string]float64, error) {
	zsets := make([]*zset.ZSet, len(oa.keys))
	for i, k := range oa.keys {
		z, err := getZSetOrNil(ks, k)
		if err != nil {
			return nil, err
		}
		zsets[i] = z
	}
	weight := func(i int) float64 {
		if i < len(oa.weights) {
			return oa.weights[i]
		}
		return 1
	}
	out := make(map[string]float64)
	switch kind {
	case "union":
		for i, z := range zsets {
			if z == nil {
				continue
			}
			for _, m := range z.All() {
				if existing, has := out[m.Name]; has {
					out[m.Name] = aggregate(oa.aggregate, []float64{existing, m.Score * weight(i)})
				} else {
					out[m.Name] = m.Score * weight(i)
				}
			}
		}
	case "inter":
		if len(zsets) == 0 || zsets[0] == nil {
			return out, nil
		}
		for _, m := range zsets[0].All() {
			scores := []float64{m.Score * weight(0)}
			in := true
			for i := 1; i < len(zsets); i++ {
				if zsets[i] == nil {
					in = false
					break
				}
				s, has := zsets[i].Score(m.Name)
				if !has {
					in = false
					break
				}
				scores = append(scores, s*weight(i))
			}
			if in {
				out[m.Name] = aggregate(oa.aggregate, scores)
			}
		}
	case "diff":
		if len(zsets) == 0 || zsets[0] == nil {
			return out, nil
		}
		for _, m := range zsets[0].All() {
			excluded := false
			for i := 1; i < len(zsets); i++ {
				if zsets[i] == nil {
					continue
				}
				if _, has := zsets[i].Score(m.Name); has {
					excluded = true
					break
				}
			}
			if !excluded {
				out[m.Name] = m.Score
			}
		}
	}
	return out, nil
}

func sortedResultMembers(m map[string]float64) []zset.Member {
	z := zset.New()
	for name, score := range m {
		z.Add(name, score)
	}
	return z.All()
}

func zsetOpReply(d *Dispatcher, sess *session.Session, argv [][]byte, kind string) resp.Reply {
	oa, withScoresIdx, err := parseZSetOpArgs(argv, 2)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	withScores := withScoresIdx > 0 && withScoresIdx < len(argv) && strings.EqualFold(string(argv[withScoresIdx]), "WITHSCORES")
	ks := keyspaceFor(d, sess)
	result, operr := zsetOpCompute(ks, oa, kind)
	if operr != nil {
		return resp.Err(operr.(*rerr.Error))
	}
	return membersToReply(sortedResultMembers(result), withScores)
}

func zsetOpStoreReply(d *Dispatcher, sess *session.Session, argv [][]byte, kind string) resp.Reply {
	dst := string(argv[1])
	oa, _, err := parseZSetOpArgs(argv, 3)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	result, operr := zsetOpCompute(ks, oa, kind)
	if operr != nil {
		return resp.Err(operr.(*rerr.Error))
	}
	if len(result) == 0 {
		ks.Delete(dst)
		return resp.Int(0)
	}
	zv := store.NewZSetValue()
	for name, score := range result {
		zv.Z.Add(name, score)
	}
	ks.Set(dst, zv, 0)
	return resp.Int(int64(len(result)))
}

func cmdZUnion(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpReply(d, sess, argv, "union")
}
func cmdZInter(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpReply(d, sess, argv, "inter")
}
func cmdZDiff(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpReply(d, sess, argv, "diff")
}
func cmdZUnionStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpStoreReply(d, sess, argv, "union")
}
func cmdZInterStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpStoreReply(d, sess, argv, "inter")
}
func cmdZDiffStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return zsetOpStoreReply(d, sess, argv, "diff")
}

func cmdZScan(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	z, err := getZSetOrNil(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if z == nil {
		return resp.Array{resp.BulkStr("0"), resp.Array{}}
	}
	pattern, _ := scanModifiers(argv[3:])
	out := make(resp.Array, 0, z.Len()*2)
	for _, m := range z.All() {
		if globMatchOrFalse(pattern, m.Name) {
			out = append(out, resp.BulkStr(m.Name), resp.BulkStr(formatFloat(m.Score)))
		}
	}
	return resp.Array{resp.BulkStr("0"), out}
}
