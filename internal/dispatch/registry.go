package dispatch

// allSpecs is the full command table (spec.md §6). MinArgs/MaxArgs count
// the command name itself; MaxArgs -1 means unbounded.
func allSpecs() []Spec {
	return []Spec{
		// Connection
		{Name: "PING", MinArgs: 1, MaxArgs: 2, NoAuth: true, InSub: true, Handler: cmdPing},
		{Name: "ECHO", MinArgs: 2, MaxArgs: 2, Handler: cmdEcho},
		{Name: "AUTH", MinArgs: 2, MaxArgs: 3, NoAuth: true, Handler: cmdAuth},
		{Name: "SELECT", MinArgs: 2, MaxArgs: 2, Handler: cmdSelect},
		{Name: "HELLO", MinArgs: 1, MaxArgs: -1, NoAuth: true, Handler: cmdHello},
		{Name: "QUIT", MinArgs: 1, MaxArgs: 1, NoAuth: true, InSub: true, Handler: cmdQuit},
		{Name: "RESET", MinArgs: 1, MaxArgs: 1, NoAuth: true, InSub: true, Handler: cmdReset},
		{Name: "CLIENT ID", MinArgs: 2, MaxArgs: 2, Handler: cmdClientID},
		{Name: "CLIENT GETNAME", MinArgs: 2, MaxArgs: 2, Handler: cmdClientGetName},
		{Name: "CLIENT SETNAME", MinArgs: 3, MaxArgs: 3, Handler: cmdClientSetName},
		{Name: "CLIENT LIST", MinArgs: 2, MaxArgs: -1, Handler: cmdClientList},
		{Name: "CLIENT PAUSE", MinArgs: 3, MaxArgs: 3, Handler: cmdClientPause},

		// Strings
		{Name: "GET", MinArgs: 2, MaxArgs: 2, Handler: cmdGet},
		{Name: "SET", MinArgs: 3, MaxArgs: -1, Handler: cmdSet},
		{Name: "SETNX", MinArgs: 3, MaxArgs: 3, Handler: cmdSetNX},
		{Name: "SETEX", MinArgs: 4, MaxArgs: 4, Handler: cmdSetEX},
		{Name: "PSETEX", MinArgs: 4, MaxArgs: 4, Handler: cmdPSetEX},
		{Name: "GETDEL", MinArgs: 2, MaxArgs: 2, Handler: cmdGetDel},
		{Name: "GETEX", MinArgs: 2, MaxArgs: -1, Handler: cmdGetEx},
		{Name: "GETSET", MinArgs: 3, MaxArgs: 3, Handler: cmdGetSet},
		{Name: "GETRANGE", MinArgs: 4, MaxArgs: 4, Handler: cmdGetRange},
		{Name: "SETRANGE", MinArgs: 4, MaxArgs: 4, Handler: cmdSetRange},
		{Name: "APPEND", MinArgs: 3, MaxArgs: 3, Handler: cmdAppend},
		{Name: "STRLEN", MinArgs: 2, MaxArgs: 2, Handler: cmdStrlen},
		{Name: "INCR", MinArgs: 2, MaxArgs: 2, Handler: cmdIncr},
		{Name: "DECR", MinArgs: 2, MaxArgs: 2, Handler: cmdDecr},
		{Name: "INCRBY", MinArgs: 3, MaxArgs: 3, Handler: cmdIncrBy},
		{Name: "DECRBY", MinArgs: 3, MaxArgs: 3, Handler: cmdDecrBy},
		{Name: "INCRBYFLOAT", MinArgs: 3, MaxArgs: 3, Handler: cmdIncrByFloat},
		{Name: "MGET", MinArgs: 2, MaxArgs: -1, Handler: cmdMGet},
		{Name: "MSET", MinArgs: 3, MaxArgs: -1, Handler: cmdMSet},
		{Name: "MSETNX", MinArgs: 3, MaxArgs: -1, Handler: cmdMSetNX},

		// Keys
		{Name: "DEL", MinArgs: 2, MaxArgs: -1, Handler: cmdDel},
		{Name: "UNLINK", MinArgs: 2, MaxArgs: -1, Handler: cmdUnlink},
		{Name: "EXISTS", MinArgs: 2, MaxArgs: -1, Handler: cmdExists},
		{Name: "TYPE", MinArgs: 2, MaxArgs: 2, Handler: cmdType},
		{Name: "OBJECT ENCODING", MinArgs: 3, MaxArgs: 3, Handler: cmdObjectEncoding},
		{Name: "KEYS", MinArgs: 2, MaxArgs: 2, Handler: cmdKeys},
		{Name: "SCAN", MinArgs: 2, MaxArgs: -1, Handler: cmdScan},
		{Name: "RENAME", MinArgs: 3, MaxArgs: 3, Handler: cmdRename},
		{Name: "RENAMENX", MinArgs: 3, MaxArgs: 3, Handler: cmdRenameNX},
		{Name: "EXPIRE", MinArgs: 3, MaxArgs: -1, Handler: cmdExpire},
		{Name: "PEXPIRE", MinArgs: 3, MaxArgs: -1, Handler: cmdPExpire},
		{Name: "EXPIREAT", MinArgs: 3, MaxArgs: -1, Handler: cmdExpireAt},
		{Name: "PEXPIREAT", MinArgs: 3, MaxArgs: -1, Handler: cmdPExpireAt},
		{Name: "TTL", MinArgs: 2, MaxArgs: 2, Handler: cmdTTL},
		{Name: "PTTL", MinArgs: 2, MaxArgs: 2, Handler: cmdPTTL},
		{Name: "PERSIST", MinArgs: 2, MaxArgs: 2, Handler: cmdPersist},
		{Name: "COPY", MinArgs: 3, MaxArgs: -1, Handler: cmdCopy},
		{Name: "TOUCH", MinArgs: 2, MaxArgs: -1, Handler: cmdTouch},

		// Lists
		{Name: "LPUSH", MinArgs: 3, MaxArgs: -1, Handler: cmdLPush},
		{Name: "RPUSH", MinArgs: 3, MaxArgs: -1, Handler: cmdRPush},
		{Name: "LPUSHX", MinArgs: 3, MaxArgs: -1, Handler: cmdLPushX},
		{Name: "RPUSHX", MinArgs: 3, MaxArgs: -1, Handler: cmdRPushX},
		{Name: "LPOP", MinArgs: 2, MaxArgs: 3, Handler: cmdLPop},
		{Name: "RPOP", MinArgs: 2, MaxArgs: 3, Handler: cmdRPop},
		{Name: "LRANGE", MinArgs: 4, MaxArgs: 4, Handler: cmdLRange},
		{Name: "LLEN", MinArgs: 2, MaxArgs: 2, Handler: cmdLLen},
		{Name: "LINDEX", MinArgs: 3, MaxArgs: 3, Handler: cmdLIndex},
		{Name: "LSET", MinArgs: 4, MaxArgs: 4, Handler: cmdLSet},
		{Name: "LINSERT", MinArgs: 5, MaxArgs: 5, Handler: cmdLInsert},
		{Name: "LREM", MinArgs: 4, MaxArgs: 4, Handler: cmdLRem},
		{Name: "LTRIM", MinArgs: 4, MaxArgs: 4, Handler: cmdLTrim},
		{Name: "RPOPLPUSH", MinArgs: 3, MaxArgs: 3, Handler: cmdRPopLPush},
		{Name: "LPOS", MinArgs: 3, MaxArgs: -1, Handler: cmdLPos},
		{Name: "BLPOP", MinArgs: 3, MaxArgs: -1, SkipCoordWrap: true, Handler: cmdBLPop},
		{Name: "BRPOP", MinArgs: 3, MaxArgs: -1, SkipCoordWrap: true, Handler: cmdBRPop},

		// Hashes
		{Name: "HSET", MinArgs: 4, MaxArgs: -1, Handler: cmdHSet},
		{Name: "HMSET", MinArgs: 4, MaxArgs: -1, Handler: cmdHMSet},
		{Name: "HSETNX", MinArgs: 4, MaxArgs: 4, Handler: cmdHSetNX},
		{Name: "HGET", MinArgs: 3, MaxArgs: 3, Handler: cmdHGet},
		{Name: "HMGET", MinArgs: 3, MaxArgs: -1, Handler: cmdHMGet},
		{Name: "HDEL", MinArgs: 3, MaxArgs: -1, Handler: cmdHDel},
		{Name: "HEXISTS", MinArgs: 3, MaxArgs: 3, Handler: cmdHExists},
		{Name: "HGETALL", MinArgs: 2, MaxArgs: 2, Handler: cmdHGetAll},
		{Name: "HKEYS", MinArgs: 2, MaxArgs: 2, Handler: cmdHKeys},
		{Name: "HVALS", MinArgs: 2, MaxArgs: 2, Handler: cmdHVals},
		{Name: "HLEN", MinArgs: 2, MaxArgs: 2, Handler: cmdHLen},
		{Name: "HSTRLEN", MinArgs: 3, MaxArgs: 3, Handler: cmdHStrlen},
		{Name: "HINCRBY", MinArgs: 4, MaxArgs: 4, Handler: cmdHIncrBy},
		{Name: "HINCRBYFLOAT", MinArgs: 4, MaxArgs: 4, Handler: cmdHIncrByFloat},
		{Name: "HSCAN", MinArgs: 3, MaxArgs: -1, Handler: cmdHScan},

		// Sets
		{Name: "SADD", MinArgs: 3, MaxArgs: -1, Handler: cmdSAdd},
		{Name: "SREM", MinArgs: 3, MaxArgs: -1, Handler: cmdSRem},
		{Name: "SMEMBERS", MinArgs: 2, MaxArgs: 2, Handler: cmdSMembers},
		{Name: "SCARD", MinArgs: 2, MaxArgs: 2, Handler: cmdSCard},
		{Name: "SISMEMBER", MinArgs: 3, MaxArgs: 3, Handler: cmdSIsMember},
		{Name: "SUNION", MinArgs: 2, MaxArgs: -1, Handler: cmdSUnion},
		{Name: "SINTER", MinArgs: 2, MaxArgs: -1, Handler: cmdSInter},
		{Name: "SDIFF", MinArgs: 2, MaxArgs: -1, Handler: cmdSDiff},
		{Name: "SUNIONSTORE", MinArgs: 3, MaxArgs: -1, Handler: cmdSUnionStore},
		{Name: "SINTERSTORE", MinArgs: 3, MaxArgs: -1, Handler: cmdSInterStore},
		{Name: "SDIFFSTORE", MinArgs: 3, MaxArgs: -1, Handler: cmdSDiffStore},
		{Name: "SPOP", MinArgs: 2, MaxArgs: 3, Handler: cmdSPop},
		{Name: "SRANDMEMBER", MinArgs: 2, MaxArgs: 3, Handler: cmdSRandMember},
		{Name: "SMOVE", MinArgs: 4, MaxArgs: 4, Handler: cmdSMove},
		{Name: "SSCAN", MinArgs: 3, MaxArgs: -1, Handler: cmdSScan},

		// Sorted sets
		{Name: "ZADD", MinArgs: 4, MaxArgs: -1, Handler: cmdZAdd},
		{Name: "ZREM", MinArgs: 3, MaxArgs: -1, Handler: cmdZRem},
		{Name: "ZCARD", MinArgs: 2, MaxArgs: 2, Handler: cmdZCard},
		{Name: "ZSCORE", MinArgs: 3, MaxArgs: 3, Handler: cmdZScore},
		{Name: "ZMSCORE", MinArgs: 3, MaxArgs: -1, Handler: cmdZMScore},
		{Name: "ZINCRBY", MinArgs: 4, MaxArgs: 4, Handler: cmdZIncrBy},
		{Name: "ZRANK", MinArgs: 3, MaxArgs: 4, Handler: cmdZRank},
		{Name: "ZREVRANK", MinArgs: 3, MaxArgs: 4, Handler: cmdZRevRank},
		{Name: "ZRANGE", MinArgs: 4, MaxArgs: -1, Handler: cmdZRange},
		{Name: "ZREVRANGE", MinArgs: 4, MaxArgs: -1, Handler: cmdZRevRange},
		{Name: "ZRANGEBYSCORE", MinArgs: 4, MaxArgs: -1, Handler: cmdZRangeByScore},
		{Name: "ZREVRANGEBYSCORE", MinArgs: 4, MaxArgs: -1, Handler: cmdZRevRangeByScore},
		{Name: "ZRANGEBYLEX", MinArgs: 4, MaxArgs: -1, Handler: cmdZRangeByLex},
		{Name: "ZREVRANGEBYLEX", MinArgs: 4, MaxArgs: -1, Handler: cmdZRevRangeByLex},
		{Name: "ZCOUNT", MinArgs: 4, MaxArgs: 4, Handler: cmdZCount},
		{Name: "ZLEXCOUNT", MinArgs: 4, MaxArgs: 4, Handler: cmdZLexCount},
		{Name: "ZPOPMIN", MinArgs: 2, MaxArgs: 3, Handler: cmdZPopMin},
		{Name: "ZPOPMAX", MinArgs: 2, MaxArgs: 3, Handler: cmdZPopMax},
		{Name: "ZUNION", MinArgs: 3, MaxArgs: -1, Handler: cmdZUnion},
		{Name: "ZINTER", MinArgs: 3, MaxArgs: -1, Handler: cmdZInter},
		{Name: "ZDIFF", MinArgs: 3, MaxArgs: -1, Handler: cmdZDiff},
		{Name: "ZUNIONSTORE", MinArgs: 4, MaxArgs: -1, Handler: cmdZUnionStore},
		{Name: "ZINTERSTORE", MinArgs: 4, MaxArgs: -1, Handler: cmdZInterStore},
		{Name: "ZDIFFSTORE", MinArgs: 4, MaxArgs: -1, Handler: cmdZDiffStore},
		{Name: "ZSCAN", MinArgs: 3, MaxArgs: -1, Handler: cmdZScan},

		// HyperLogLog
		{Name: "PFADD", MinArgs: 2, MaxArgs: -1, Handler: cmdPFAdd},
		{Name: "PFCOUNT", MinArgs: 2, MaxArgs: -1, Handler: cmdPFCount},
		{Name: "PFMERGE", MinArgs: 2, MaxArgs: -1, Handler: cmdPFMerge},

		// Transactions
		{Name: "MULTI", MinArgs: 1, MaxArgs: 1, Handler: cmdMulti},
		{Name: "EXEC", MinArgs: 1, MaxArgs: 1, SkipCoordWrap: true, Handler: cmdExec},
		{Name: "DISCARD", MinArgs: 1, MaxArgs: 1, Handler: cmdDiscard},
		{Name: "WATCH", MinArgs: 2, MaxArgs: -1, Handler: cmdWatch},
		{Name: "UNWATCH", MinArgs: 1, MaxArgs: 1, Handler: cmdUnwatch},

		// Pub/Sub
		{Name: "SUBSCRIBE", MinArgs: 2, MaxArgs: -1, InSub: true, Handler: cmdSubscribe},
		{Name: "UNSUBSCRIBE", MinArgs: 1, MaxArgs: -1, InSub: true, Handler: cmdUnsubscribe},
		{Name: "PSUBSCRIBE", MinArgs: 2, MaxArgs: -1, InSub: true, Handler: cmdPSubscribe},
		{Name: "PUNSUBSCRIBE", MinArgs: 1, MaxArgs: -1, InSub: true, Handler: cmdPUnsubscribe},
		{Name: "SSUBSCRIBE", MinArgs: 2, MaxArgs: -1, InSub: true, Handler: cmdSSubscribe},
		{Name: "SUNSUBSCRIBE", MinArgs: 1, MaxArgs: -1, InSub: true, Handler: cmdSUnsubscribe},
		{Name: "PUBLISH", MinArgs: 3, MaxArgs: 3, Handler: cmdPublish},
		{Name: "SPUBLISH", MinArgs: 3, MaxArgs: 3, Handler: cmdSPublish},
		{Name: "PUBSUB CHANNELS", MinArgs: 2, MaxArgs: 3, Handler: cmdPubSubChannels},
		{Name: "PUBSUB NUMSUB", MinArgs: 2, MaxArgs: -1, Handler: cmdPubSubNumSub},
		{Name: "PUBSUB NUMPAT", MinArgs: 2, MaxArgs: 2, Handler: cmdPubSubNumPat},
		{Name: "PUBSUB SHARDCHANNELS", MinArgs: 2, MaxArgs: 3, Handler: cmdPubSubShardChannels},
		{Name: "PUBSUB SHARDNUMSUB", MinArgs: 2, MaxArgs: -1, Handler: cmdPubSubShardNumSub},

		// Server
		{Name: "DBSIZE", MinArgs: 1, MaxArgs: 1, Handler: cmdDBSize},
		{Name: "FLUSHDB", MinArgs: 1, MaxArgs: 2, Handler: cmdFlushDB},
		{Name: "FLUSHALL", MinArgs: 1, MaxArgs: 2, Handler: cmdFlushAll},
		{Name: "SAVE", MinArgs: 1, MaxArgs: 1, Handler: cmdSave},
		{Name: "BGSAVE", MinArgs: 1, MaxArgs: 2, Handler: cmdBGSave},
		{Name: "LASTSAVE", MinArgs: 1, MaxArgs: 1, Handler: cmdLastSave},
		{Name: "SLOWLOG GET", MinArgs: 2, MaxArgs: 3, Handler: cmdSlowLogGet},
		{Name: "SLOWLOG LEN", MinArgs: 2, MaxArgs: 2, Handler: cmdSlowLogLen},
		{Name: "SLOWLOG RESET", MinArgs: 2, MaxArgs: 2, Handler: cmdSlowLogReset},
		{Name: "CONFIG GET", MinArgs: 3, MaxArgs: 3, Handler: cmdConfigGet},
		{Name: "CONFIG SET", MinArgs: 4, MaxArgs: -1, Handler: cmdConfigSet},
		{Name: "INFO", MinArgs: 1, MaxArgs: 2, Handler: cmdInfo},
	}
}
