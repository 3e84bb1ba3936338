package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/gamebot/core/logger"
)

// Key layout:
//
//	<prefix>:index              zset  room id -> created unix ms
//	<prefix>:room:<id>          hash  owner, max, created
//	<prefix>:room:<id>:players  zset  user id -> seated unix µs
//	<prefix>:user:<uid>         set   room ids
const defaultPrefix = "poker"

const (
	codeNotFound = -1
	codeConflict = -2
	codeFull     = -3
)

// joinScript seats a player atomically.
// KEYS: room, players, user. ARGV: user id, score, room id, ttl seconds.
var joinScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('ZSCORE', KEYS[2], ARGV[1]) then return -2 end
local max = tonumber(redis.call('HGET', KEYS[1], 'max'))
if redis.call('ZCARD', KEYS[2]) >= max then return -3 end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[3])
local ttl = tonumber(ARGV[4])
if ttl > 0 then
  redis.call('EXPIRE', KEYS[1], ttl)
  redis.call('EXPIRE', KEYS[2], ttl)
end
return redis.call('ZCARD', KEYS[2])
`)

// leaveScript frees a seat and closes the room when it empties.
// KEYS: room, players, user, index. ARGV: user id, room id.
var leaveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('SREM', KEYS[3], ARGV[2])
  return -1
end
if redis.call('ZREM', KEYS[2], ARGV[1]) == 0 then return -2 end
redis.call('SREM', KEYS[3], ARGV[2])
local left = redis.call('ZCARD', KEYS[2])
if left == 0 then
  redis.call('DEL', KEYS[1], KEYS[2])
  redis.call('ZREM', KEYS[4], ARGV[2])
end
return left
`)

// RedisOptions configure NewRedis.
type RedisOptions struct {
	MaxSeats int
	// TTL expires idle rooms; every create and join refreshes it. Zero keeps rooms forever.
	TTL    time.Duration
	Prefix string
	Logger *slog.Logger
}

// Redis is a Directory shared by every bot process pointing at the same server.
type Redis struct {
	rdb   redis.UniversalClient
	opts  RedisOptions
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// NewRedis wraps rdb.
func NewRedis(rdb redis.UniversalClient, opts RedisOptions) *Redis {
	if opts.MaxSeats < 2 {
		opts.MaxSeats = DefaultMaxSeats
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	return &Redis{
		rdb:   rdb,
		opts:  opts,
		log:   logger.Or(opts.Logger, "poker.rooms"),
		now:   time.Now,
		newID: NewID,
	}
}

// Dial parses url, connects and pings.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("rooms: parse redis url: %w", err)
	}
	rdb := redis.NewClient(o)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rooms: redis ping: %w", err)
	}
	return rdb, nil
}

func (r *Redis) indexKey() string            { return r.opts.Prefix + ":index" }
func (r *Redis) roomKey(id string) string    { return r.opts.Prefix + ":room:" + id }
func (r *Redis) playersKey(id string) string { return r.opts.Prefix + ":room:" + id + ":players" }
func (r *Redis) userKey(userID int64) string {
	return r.opts.Prefix + ":user:" + strconv.FormatInt(userID, 10)
}
func uid(userID int64) string { return strconv.FormatInt(userID, 10) }

func (r *Redis) Create(ctx context.Context, owner int64) (Room, error) {
	now := r.now().UTC()
	var id string
	for attempt := 0; ; attempt++ {
		id = r.newID()
		ok, err := r.rdb.HSetNX(ctx, r.roomKey(id), "owner", owner).Result()
		if err != nil {
			return Room{}, fmt.Errorf("rooms: create: %w", err)
		}
		if ok {
			break
		}
		if attempt >= 8 {
			return Room{}, fmt.Errorf("rooms: create: no free id after %d attempts", attempt+1)
		}
	}

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.roomKey(id), "max", r.opts.MaxSeats, "created", now.UnixMilli())
		p.ZAdd(ctx, r.playersKey(id), redis.Z{Score: float64(now.UnixMicro()), Member: uid(owner)})
		p.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(now.UnixMilli()), Member: id})
		p.SAdd(ctx, r.userKey(owner), id)
		if r.opts.TTL > 0 {
			p.Expire(ctx, r.roomKey(id), r.opts.TTL)
			p.Expire(ctx, r.playersKey(id), r.opts.TTL)
		}
		return nil
	})
	if err != nil {
		return Room{}, fmt.Errorf("rooms: create: %w", err)
	}
	r.log.LogAttrs(ctx, slog.LevelInfo, "room.created",
		slog.String("event", "room.created"),
		slog.String("room", id),
		slog.Int64("user_id", owner),
	)
	return Room{ID: id, Owner: owner, MaxSeats: r.opts.MaxSeats, Players: []int64{owner}, CreatedAt: now.Truncate(time.Millisecond)}, nil
}

func (r *Redis) Join(ctx context.Context, roomID string, userID int64) (Room, error) {
	code, err := joinScript.Run(ctx, r.rdb,
		[]string{r.roomKey(roomID), r.playersKey(roomID), r.userKey(userID)},
		uid(userID), r.now().UnixMicro(), roomID, int64(r.opts.TTL/time.Second),
	).Int()
	if err != nil {
		return Room{}, fmt.Errorf("rooms: join: %w", err)
	}
	if code == codeNotFound {
		return Room{}, ErrNotFound
	}
	room, err := r.Get(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	switch code {
	case codeConflict:
		return room, ErrAlreadySeated
	case codeFull:
		return room, ErrRoomFull
	}
	r.log.LogAttrs(ctx, slog.LevelDebug, "room.joined",
		slog.String("event", "room.joined"),
		slog.String("room", roomID),
		slog.Int64("user_id", userID),
		slog.Int("seats", code),
	)
	return room, nil
}

func (r *Redis) Leave(ctx context.Context, roomID string, userID int64) error {
	left, err := leaveScript.Run(ctx, r.rdb,
		[]string{r.roomKey(roomID), r.playersKey(roomID), r.userKey(userID), r.indexKey()},
		uid(userID), roomID,
	).Int()
	if err != nil {
		return fmt.Errorf("rooms: leave: %w", err)
	}
	switch left {
	case codeNotFound:
		return ErrNotFound
	case codeConflict:
		return ErrNotSeated
	case 0:
		r.log.LogAttrs(ctx, slog.LevelInfo, "room.closed",
			slog.String("event", "room.closed"),
			slog.String("room", roomID),
		)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, roomID string) (Room, error) {
	var (
		fields  *redis.MapStringStringCmd
		players *redis.StringSliceCmd
	)
	_, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		fields = p.HGetAll(ctx, r.roomKey(roomID))
		players = p.ZRange(ctx, r.playersKey(roomID), 0, -1)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Room{}, fmt.Errorf("rooms: get: %w", err)
	}
	h := fields.Val()
	if len(h) == 0 {
		return Room{}, ErrNotFound
	}
	room := Room{ID: roomID}
	room.Owner, _ = strconv.ParseInt(h["owner"], 10, 64)
	room.MaxSeats, _ = strconv.Atoi(h["max"])
	if ms, err := strconv.ParseInt(h["created"], 10, 64); err == nil {
		room.CreatedAt = time.UnixMilli(ms).UTC()
	}
	for _, p := range players.Val() {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			room.Players = append(room.Players, id)
		}
	}
	return room, nil
}

func (r *Redis) List(ctx context.Context, limit int) ([]Room, error) {
	ids, err := r.rdb.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("rooms: list: %w", err)
	}
	var (
		out   []Room
		stale []any
	)
	for _, id := range ids {
		room, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if room.Full() {
			continue
		}
		out = append(out, room)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(stale) > 0 {
		_ = r.rdb.ZRem(ctx, r.indexKey(), stale...).Err()
	}
	return out, nil
}

func (r *Redis) RoomsOf(ctx context.Context, userID int64) ([]string, error) {
	ids, err := r.rdb.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("rooms: rooms of user: %w", err)
	}
	live := ids[:0]
	for _, id := range ids {
		err := r.rdb.ZScore(ctx, r.playersKey(id), uid(userID)).Err()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("rooms: rooms of user: %w", err)
		}
		live = append(live, id)
	}
	sort.Strings(live)
	return live, nil
}
