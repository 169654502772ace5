package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lukluk/redikv/internal/replication"
	"github.com/lukluk/redikv/internal/rerr"
	"github.com/lukluk/redikv/internal/resp"
	"github.com/lukluk/redikv/internal/store"
)

// subscribedAllowed is the command allowlist while a session is in
// ModeSubscribed, spec §4.10.
var subscribedAllowed = map[string]bool{
	"SUBSCRIBE": true, "UNSUBSCRIBE": true,
	"PSUBSCRIBE": true, "PUNSUBSCRIBE": true,
	"PING": true, "QUIT": true, "RESET": true,
}

// handlerFunc computes a single reply Value for a command. Blocking
// commands (BLPOP, XREAD BLOCK) still fit this shape: they simply take
// longer to return, since each connection owns its own goroutine.
type handlerFunc func(s *Session, argv [][]byte) resp.Value

type cmdDef struct {
	minArgs int // includes the command name itself
	maxArgs int // -1 = unbounded
	handler handlerFunc
}

var commandTable map[string]cmdDef

func init() {
	commandTable = map[string]cmdDef{
		"PING":    {1, 2, cmdPing},
		"ECHO":    {2, 2, cmdEcho},
		"RESET":   {1, 1, cmdReset},
		"COMMAND": {1, -1, cmdCommand},

		"SET":    {3, 5, cmdSet},
		"GET":    {2, 2, cmdGet},
		"DEL":    {2, -1, cmdDel},
		"EXISTS": {2, -1, cmdExists},
		"TYPE":   {2, 2, cmdType},
		"KEYS":   {2, 2, cmdKeys},
		"INCR":   {2, 2, cmdIncr},
		"DBSIZE": {1, 1, cmdDBSize},

		"RPUSH":  {3, -1, cmdRPush},
		"LPUSH":  {3, -1, cmdLPush},
		"LPOP":   {2, 3, cmdLPop},
		"LLEN":   {2, 2, cmdLLen},
		"LRANGE": {4, 4, cmdLRange},
		"BLPOP":  {3, -1, cmdBLPop},

		"ZADD":   {4, -1, cmdZAdd},
		"ZSCORE": {3, 3, cmdZScore},
		"ZRANK":  {3, 3, cmdZRank},
		"ZCARD":  {2, 2, cmdZCard},
		"ZRANGE": {4, 4, cmdZRange},
		"ZREM":   {3, -1, cmdZRem},

		"XADD":   {5, -1, cmdXAdd},
		"XRANGE": {4, 4, cmdXRange},
		"XREAD":  {4, -1, cmdXRead},

		"PUBLISH": {3, 3, cmdPublish},

		"MULTI":   {1, 1, cmdMulti},
		"DISCARD": {1, 1, cmdDiscard},
		"EXEC":    {1, 1, cmdExec},
		"WATCH":   {2, -1, cmdWatch},

		"REPLCONF": {2, -1, cmdReplConf},
		"INFO":     {1, 2, cmdInfo},
	}
}

// dispatch routes one inbound command frame through mode checks, MULTI
// queueing, replica write-protection, and finally the handler table.
func (s *Session) dispatch(argv [][]byte) {
	if len(argv) == 0 {
		return
	}
	cmd := strings.ToUpper(string(argv[0]))

	if s.mode == ModeSubscribed && !subscribedAllowed[cmd] {
		s.write(resp.ErrorReply(rerr.SubscribedContextOnly(cmd).Error()))
		return
	}

	if s.txn.InMulti() {
		switch cmd {
		case "SUBSCRIBE", "PSUBSCRIBE", "UNSUBSCRIBE", "PUNSUBSCRIBE", "PSYNC":
			s.txn.Queue(argv)
			s.write(resp.SimpleString("QUEUED"))
			return
		}
	}

	switch cmd {
	case "SUBSCRIBE", "PSUBSCRIBE":
		s.cmdSubscribe(cmd, argv)
		return
	case "UNSUBSCRIBE", "PUNSUBSCRIBE":
		s.cmdUnsubscribe(cmd, argv)
		return
	case "PSYNC":
		s.cmdPsync(argv)
		return
	case "QUIT":
		s.write(resp.OK)
		s.conn.Close()
		return
	}

	def, ok := commandTable[cmd]
	if !ok {
		s.write(resp.ErrorReply(rerr.UnknownCommand(cmd).Error()))
		return
	}
	if len(argv) < def.minArgs || (def.maxArgs >= 0 && len(argv) > def.maxArgs) {
		s.write(resp.ErrorReply(rerr.WrongNumArgs(strings.ToLower(cmd)).Error()))
		return
	}

	if s.txn.InMulti() && cmd != "MULTI" && cmd != "EXEC" && cmd != "DISCARD" && cmd != "WATCH" {
		s.txn.Queue(argv)
		s.write(resp.SimpleString("QUEUED"))
		return
	}

	if s.deps.Repl.IsReplica() && replication.CapturingCommands[cmd] && s.mode != ModeReplicaLink {
		s.write(resp.ErrorReply(rerr.ErrReadOnlyReplica.Error()))
		return
	}

	reply := def.handler(s, argv)
	s.recordMetric(cmd, reply)
	s.write(reply)
}

func (s *Session) recordMetric(cmd string, reply resp.Value) {
	if s.deps.Metrics != nil {
		outcome := "ok"
		if reply.Kind == resp.KindError {
			outcome = "error"
		}
		s.deps.Metrics.CommandsTotal.WithLabelValues(strings.ToLower(cmd), outcome).Inc()
	}
}

func (s *Session) capture(argv [][]byte) {
	s.deps.Repl.Capture(argv)
}

func wrongTypeUnless(actual string, allowed ...string) bool {
	for _, a := range allowed {
		if actual == a {
			return false
		}
	}
	return true
}

// ---- Connection ----

func cmdPing(s *Session, argv [][]byte) resp.Value {
	if s.mode == ModeSubscribed {
		return resp.Array(resp.BulkString("pong"), resp.BulkString(""))
	}
	if len(argv) == 2 {
		return resp.Bulk(argv[1])
	}
	return resp.SimpleString("PONG")
}

func cmdEcho(s *Session, argv [][]byte) resp.Value {
	return resp.Bulk(argv[1])
}

func cmdReset(s *Session, argv [][]byte) resp.Value {
	s.txn.Reset()
	s.deps.PubSub.Disconnect(s)
	s.mode = ModeNormal
	return resp.SimpleString("RESET")
}

func cmdCommand(s *Session, argv [][]byte) resp.Value {
	if len(argv) >= 2 && strings.EqualFold(string(argv[1]), "COUNT") {
		return resp.Integer(int64(len(commandTable)))
	}
	return resp.ArraySlice(nil)
}

// ---- Keys ----

func cmdSet(s *Session, argv [][]byte) resp.Value {
	key, value := string(argv[1]), argv[2]
	var expireAt time.Time
	hasExpire := false
	if len(argv) >= 5 {
		if !strings.EqualFold(string(argv[3]), "PX") {
			return resp.ErrorReply(rerr.Errf("ERR", "syntax error").Error())
		}
		ms, err := strconv.ParseInt(string(argv[4]), 10, 64)
		if err != nil {
			return resp.ErrorReply(rerr.ErrNotInteger.Error())
		}
		expireAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
		hasExpire = true
	} else if len(argv) != 3 {
		return resp.ErrorReply(rerr.Errf("ERR", "syntax error").Error())
	}
	s.deps.Store.SetString(key, value, expireAt, hasExpire)
	s.capture(argv)
	return resp.OK
}

func cmdGet(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "string", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	v, ok := s.deps.Store.KV.Get(key)
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(v)
}

func cmdDel(s *Session, argv [][]byte) resp.Value {
	keys := bytesToStrings(argv[1:])
	n := s.deps.Store.Del(keys...)
	if n > 0 {
		s.capture(argv)
	}
	return resp.Integer(n)
}

func cmdExists(s *Session, argv [][]byte) resp.Value {
	keys := bytesToStrings(argv[1:])
	return resp.Integer(s.deps.Store.Exists(keys...))
}

func cmdType(s *Session, argv [][]byte) resp.Value {
	return resp.SimpleString(s.deps.Store.Type(string(argv[1])))
}

func cmdKeys(s *Session, argv [][]byte) resp.Value {
	keys := s.deps.Store.Keys(string(argv[1]))
	vs := make([]resp.Value, len(keys))
	for i, k := range keys {
		vs[i] = resp.BulkString(k)
	}
	return resp.ArraySlice(vs)
}

func cmdIncr(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "string", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	n, err := s.deps.Store.KV.Incr(key)
	if err != nil {
		return resp.ErrorReply(err.Error())
	}
	s.capture(argv)
	return resp.Integer(n)
}

func cmdDBSize(s *Session, argv [][]byte) resp.Value {
	return resp.Integer(s.deps.Store.DBSize())
}

// ---- Lists ----

func cmdRPush(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "list", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	n := s.deps.Store.List.RPush(key, argv[2:]...)
	s.capture(argv)
	return resp.Integer(n)
}

func cmdLPush(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "list", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	n := s.deps.Store.List.LPush(key, argv[2:]...)
	s.capture(argv)
	return resp.Integer(n)
}

func cmdLPop(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "list", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	if len(argv) == 2 {
		popped, existed := s.deps.Store.List.LPop(key, 1)
		if !existed {
			return resp.NullBulk()
		}
		s.capture([][]byte{[]byte("LPOP"), argv[1]})
		return resp.Bulk(popped[0])
	}
	count, err := strconv.Atoi(string(argv[2]))
	if err != nil || count < 0 {
		return resp.ErrorReply(rerr.ErrNotInteger.Error())
	}
	popped, existed := s.deps.Store.List.LPop(key, count)
	if !existed {
		return resp.NullArray()
	}
	if len(popped) > 0 {
		s.capture(argv)
	}
	vs := make([]resp.Value, len(popped))
	for i, e := range popped {
		vs[i] = resp.Bulk(e)
	}
	return resp.ArraySlice(vs)
}

func cmdLLen(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "list", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	return resp.Integer(s.deps.Store.List.LLen(key))
}

func cmdLRange(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "list", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	start, err1 := strconv.ParseInt(string(argv[2]), 10, 64)
	stop, err2 := strconv.ParseInt(string(argv[3]), 10, 64)
	if err1 != nil || err2 != nil {
		return resp.ErrorReply(rerr.ErrNotInteger.Error())
	}
	elems := s.deps.Store.List.LRange(key, start, stop)
	vs := make([]resp.Value, len(elems))
	for i, e := range elems {
		vs[i] = resp.Bulk(e)
	}
	return resp.ArraySlice(vs)
}

func cmdBLPop(s *Session, argv [][]byte) resp.Value {
	keys := bytesToStrings(argv[1 : len(argv)-1])
	for _, k := range keys {
		if t := s.deps.Store.Type(k); wrongTypeUnless(t, "list", "none") {
			return resp.ErrorReply(rerr.ErrWrongType.Error())
		}
	}
	seconds, err := strconv.ParseFloat(string(argv[len(argv)-1]), 64)
	if err != nil || seconds < 0 {
		return resp.ErrorReply(rerr.Errf("ERR", "timeout is not a float or out of range").Error())
	}

	if s.inExec {
		for _, k := range keys {
			popped, existed := s.deps.Store.List.LPop(k, 1)
			if existed {
				s.capture([][]byte{[]byte("LPOP"), []byte(k)})
				return resp.Array(resp.BulkString(k), resp.Bulk(popped[0]))
			}
		}
		return resp.NullArray()
	}

	deadline := blockingDeadline(seconds)
	key, val, ok := s.deps.Coord.BLPop(s.ctx, keys, deadline)
	if !ok {
		return resp.NullArray()
	}
	s.capture([][]byte{[]byte("LPOP"), []byte(key)})
	return resp.Array(resp.BulkString(key), resp.Bulk(val))
}

// ---- Sorted sets ----

func cmdZAdd(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	rest := argv[2:]
	if len(rest)%2 != 0 {
		return resp.ErrorReply(rerr.WrongNumArgs("zadd").Error())
	}
	var added int64
	for i := 0; i < len(rest); i += 2 {
		score, err := strconv.ParseFloat(string(rest[i]), 64)
		if err != nil {
			return resp.ErrorReply(rerr.ErrNotFloat.Error())
		}
		if s.deps.Store.ZSet.ZAdd(key, string(rest[i+1]), score) {
			added++
		}
	}
	s.capture(argv)
	return resp.Integer(added)
}

func cmdZScore(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	score, ok := s.deps.Store.ZSet.ZScore(key, string(argv[2]))
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkString(formatFloat(score))
}

func cmdZRank(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	rank, ok := s.deps.Store.ZSet.ZRank(key, string(argv[2]))
	if !ok {
		return resp.NullBulk()
	}
	return resp.Integer(rank)
}

func cmdZCard(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	return resp.Integer(s.deps.Store.ZSet.ZCard(key))
}

func cmdZRange(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	start, err1 := strconv.ParseInt(string(argv[2]), 10, 64)
	stop, err2 := strconv.ParseInt(string(argv[3]), 10, 64)
	if err1 != nil || err2 != nil {
		return resp.ErrorReply(rerr.ErrNotInteger.Error())
	}
	members := s.deps.Store.ZSet.ZRange(key, start, stop)
	vs := make([]resp.Value, len(members))
	for i, m := range members {
		vs[i] = resp.BulkString(m.Member)
	}
	return resp.ArraySlice(vs)
}

func cmdZRem(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "zset", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	var removed int64
	for _, m := range argv[2:] {
		if s.deps.Store.ZSet.ZRem(key, string(m)) {
			removed++
		}
	}
	if removed > 0 {
		s.capture(argv)
	}
	return resp.Integer(removed)
}

// ---- Streams ----

func cmdXAdd(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "stream", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	idSpec := string(argv[2])
	rest := argv[3:]
	if len(rest)%2 != 0 || len(rest) == 0 {
		return resp.ErrorReply(rerr.WrongNumArgs("xadd").Error())
	}
	fields := make([][2]string, len(rest)/2)
	for i := range fields {
		fields[i] = [2]string{string(rest[2*i]), string(rest[2*i+1])}
	}
	id, err := s.deps.Store.Stream.XAdd(key, idSpec, fields)
	if err != nil {
		return resp.ErrorReply(err.Error())
	}
	replicated := append([][]byte{}, argv[:2]...)
	replicated = append(replicated, []byte(id.String()))
	replicated = append(replicated, rest...)
	s.capture(replicated)
	return resp.BulkString(id.String())
}

func cmdXRange(s *Session, argv [][]byte) resp.Value {
	key := string(argv[1])
	if t := s.deps.Store.Type(key); wrongTypeUnless(t, "stream", "none") {
		return resp.ErrorReply(rerr.ErrWrongType.Error())
	}
	from, err1 := store.ParseRangeLower(string(argv[2]))
	to, err2 := store.ParseRangeUpper(string(argv[3]))
	if err1 != nil || err2 != nil {
		return resp.ErrorReply(rerr.Errf("ERR", "Invalid stream ID specified as stream command argument").Error())
	}
	entries := s.deps.Store.Stream.XRange(key, from, to)
	return resp.ArraySlice(encodeStreamEntries(entries))
}

func cmdXRead(s *Session, argv [][]byte) resp.Value {
	rest := argv[1:]
	var blockMs int64 = -1
	if len(rest) >= 2 && strings.EqualFold(string(rest[0]), "BLOCK") {
		ms, err := strconv.ParseInt(string(rest[1]), 10, 64)
		if err != nil {
			return resp.ErrorReply(rerr.ErrNotInteger.Error())
		}
		blockMs = ms
		rest = rest[2:]
	}
	if len(rest) < 3 || !strings.EqualFold(string(rest[0]), "STREAMS") {
		return resp.ErrorReply(rerr.Errf("ERR", "syntax error").Error())
	}
	rest = rest[1:]
	if len(rest)%2 != 0 {
		return resp.ErrorReply(rerr.Errf("ERR", "Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified.").Error())
	}
	n := len(rest) / 2
	keys := bytesToStrings(rest[:n])
	lastSeen := make(map[string]store.StreamID, n)
	for i, k := range keys {
		idArg := string(rest[n+i])
		if idArg == "$" {
			lastSeen[k] = s.deps.Store.Stream.LastID(k)
			continue
		}
		id, err := store.ParseRangeLower(idArg)
		if err != nil {
			return resp.ErrorReply(rerr.Errf("ERR", "Invalid stream ID specified as stream command argument").Error())
		}
		lastSeen[k] = id
	}

	collect := func() map[string][]store.StreamEntry {
		out := make(map[string][]store.StreamEntry)
		for _, k := range keys {
			entries := s.deps.Store.Stream.EntriesAfter(k, lastSeen[k])
			if len(entries) > 0 {
				out[k] = entries
			}
		}
		return out
	}

	result := collect()
	if len(result) == 0 {
		if blockMs < 0 || s.inExec {
			return resp.NullArray()
		}
		var ok bool
		result, ok = s.deps.Coord.XReadBlock(s.ctx, keys, lastSeen, blockingDeadline(float64(blockMs)/1000))
		if !ok {
			return resp.NullArray()
		}
	}

	vs := make([]resp.Value, 0, len(result))
	for _, k := range keys {
		entries, ok := result[k]
		if !ok {
			continue
		}
		vs = append(vs, resp.Array(resp.BulkString(k), resp.ArraySlice(encodeStreamEntries(entries))))
	}
	return resp.ArraySlice(vs)
}

func encodeStreamEntries(entries []store.StreamEntry) []resp.Value {
	vs := make([]resp.Value, len(entries))
	for i, e := range entries {
		fields := make([]resp.Value, 0, len(e.Fields)*2)
		for _, fv := range e.Fields {
			fields = append(fields, resp.BulkString(fv[0]), resp.BulkString(fv[1]))
		}
		vs[i] = resp.Array(resp.BulkString(e.ID.String()), resp.ArraySlice(fields))
	}
	return vs
}

// ---- Pub/Sub ----

func (s *Session) cmdSubscribe(cmd string, argv [][]byte) {
	if len(argv) < 2 {
		s.write(resp.ErrorReply(rerr.WrongNumArgs(strings.ToLower(cmd)).Error()))
		return
	}
	reply := "subscribe"
	if cmd == "PSUBSCRIBE" {
		reply = "psubscribe"
	}
	s.mode = ModeSubscribed
	for _, ch := range argv[1:] {
		count := s.deps.PubSub.Subscribe(s, string(ch))
		s.write(resp.Array(resp.BulkString(reply), resp.Bulk(ch), resp.Integer(int64(count))))
	}
}

func (s *Session) cmdUnsubscribe(cmd string, argv [][]byte) {
	reply := "unsubscribe"
	if cmd == "PUNSUBSCRIBE" {
		reply = "punsubscribe"
	}
	channels := argv[1:]
	if len(channels) == 0 {
		for _, ch := range s.deps.PubSub.Channels(s) {
			channels = append(channels, []byte(ch))
		}
		if len(channels) == 0 {
			s.write(resp.Array(resp.BulkString(reply), resp.NullBulk(), resp.Integer(0)))
			return
		}
	}
	for _, ch := range channels {
		count := s.deps.PubSub.Unsubscribe(s, string(ch))
		s.write(resp.Array(resp.BulkString(reply), resp.Bulk(ch), resp.Integer(int64(count))))
	}
}

func cmdPublish(s *Session, argv [][]byte) resp.Value {
	n := s.deps.PubSub.Publish(string(argv[1]), argv[2])
	s.capture(argv)
	return resp.Integer(int64(n))
}

// ---- Transactions ----

func cmdMulti(s *Session, argv [][]byte) resp.Value {
	if err := s.txn.Multi(); err != nil {
		return resp.ErrorReply(err.Error())
	}
	return resp.OK
}

func cmdDiscard(s *Session, argv [][]byte) resp.Value {
	if err := s.txn.Discard(); err != nil {
		return resp.ErrorReply(err.Error())
	}
	return resp.OK
}

func cmdWatch(s *Session, argv [][]byte) resp.Value {
	return resp.OK
}

func cmdExec(s *Session, argv [][]byte) resp.Value {
	queue, err := s.txn.Exec()
	if err != nil {
		return resp.ErrorReply(err.Error())
	}
	s.inExec = true
	defer func() { s.inExec = false }()

	replies := make([]resp.Value, len(queue))
	for i, qc := range queue {
		replies[i] = s.executeQueued(qc.Argv)
	}
	return resp.ArraySlice(replies)
}

// executeQueued runs one command from a replayed transaction queue and
// returns its reply without going through dispatch's MULTI/replica-mode
// gating again (spec §4.8: EXEC itself already left InMulti).
func (s *Session) executeQueued(argv [][]byte) resp.Value {
	cmd := strings.ToUpper(string(argv[0]))
	def, ok := commandTable[cmd]
	if !ok {
		return resp.ErrorReply(rerr.UnknownCommand(cmd).Error())
	}
	if len(argv) < def.minArgs || (def.maxArgs >= 0 && len(argv) > def.maxArgs) {
		return resp.ErrorReply(rerr.WrongNumArgs(strings.ToLower(cmd)).Error())
	}
	if s.deps.Repl.IsReplica() && replication.CapturingCommands[cmd] {
		return resp.ErrorReply(rerr.ErrReadOnlyReplica.Error())
	}
	reply := def.handler(s, argv)
	s.recordMetric(cmd, reply)
	return reply
}

// ---- Replication ----

func cmdReplConf(s *Session, argv [][]byte) resp.Value {
	return resp.OK
}

func (s *Session) cmdPsync(argv [][]byte) {
	runID, offset, link := s.deps.Repl.StartFullResync(s.conn.RemoteAddr().String(), rawWriter{s})
	s.replicaLink = link
	s.mode = ModeReplicaLink
	s.write(resp.SimpleString(fmt.Sprintf("FULLRESYNC %s %d", runID, offset)))
	link.Start()
}

func cmdInfo(s *Session, argv [][]byte) resp.Value {
	return resp.BulkString(s.deps.Repl.InfoReplication())
}

// ---- helpers ----

func bytesToStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
