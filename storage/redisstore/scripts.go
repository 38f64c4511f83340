package redisstore

import "github.com/redis/go-redis/v9"

// KEYS: items hash, order zset, seq counter
// ARGV: id1, payload1, id2, payload2 ...
// 任一 ID 已存在时不写入并返回该 ID
var insertScript = redis.NewScript(`
for i = 1, #ARGV, 2 do
	if redis.call('HEXISTS', KEYS[1], ARGV[i]) == 1 then
		return ARGV[i]
	end
end
for i = 1, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
	local seq = redis.call('INCR', KEYS[3])
	redis.call('ZADD', KEYS[2], seq, ARGV[i])
end
return ''
`)

// KEYS: items hash
// ARGV: id, payload
var updateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// KEYS: items hash, order zset
// ARGV: ids
// 任一 ID 不存在时不删除并返回该 ID
var deleteScript = redis.NewScript(`
for i = 1, #ARGV do
	if redis.call('HEXISTS', KEYS[1], ARGV[i]) == 0 then
		return ARGV[i]
	end
end
for i = 1, #ARGV do
	redis.call('HDEL', KEYS[1], ARGV[i])
	redis.call('ZREM', KEYS[2], ARGV[i])
end
return ''
`)
