package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Standing is one row of the ranked leaderboard.
type Standing struct {
	TeamID    string `json:"teamId"`
	Name      string `json:"name"`
	Collected int    `json:"collected"`
}

// Leaderboard mirrors team standings for cheap ranked reads. The sqlite
// ledger stays the source of truth; a mirror may lag or be absent.
type Leaderboard interface {
	Record(ctx context.Context, teamID, name string, collected int) error
	Top(ctx context.Context, n int) ([]Standing, error)
}

const (
	lbScoresKey = "arhunt:leaderboard"
	lbNamesKey  = "arhunt:teamnames"
)

// RedisLeaderboard keeps standings in a Redis sorted set, team names in a
// hash alongside.
type RedisLeaderboard struct {
	rdb *redis.Client
}

func NewRedisLeaderboard(rdb *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{rdb: rdb}
}

func (l *RedisLeaderboard) Record(ctx context.Context, teamID, name string, collected int) error {
	pipe := l.rdb.Pipeline()
	pipe.ZAdd(ctx, lbScoresKey, redis.Z{Score: float64(collected), Member: teamID})
	pipe.HSet(ctx, lbNamesKey, teamID, name)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]Standing, error) {
	entries, err := l.rdb.ZRevRangeWithScores(ctx, lbScoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Member.(string)
	}
	names, err := l.rdb.HMGet(ctx, lbNamesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, len(entries))
	for i, e := range entries {
		standings[i] = Standing{
			TeamID:    ids[i],
			Collected: int(e.Score),
		}
		if s, ok := names[i].(string); ok {
			standings[i].Name = s
		}
	}
	return standings, nil
}

// Reset drops the mirrored standings.
func (l *RedisLeaderboard) Reset(ctx context.Context) error {
	return l.rdb.Del(ctx, lbScoresKey, lbNamesKey).Err()
}

var _ Leaderboard = (*RedisLeaderboard)(nil)
