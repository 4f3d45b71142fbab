package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goCred "github.com/MrEthical07/goCred"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable indicates the account backend is unreachable.
var ErrRedisUnavailable = errors.New("account redis unavailable")

const redisSaveRetries = 4

// Redis is a Redis-backed AccountStore. Records are JSON-encoded under
// <prefix>:acct:<username>; usernames are tracked in a <prefix>:index set for
// listing and wipes. Save runs under WATCH, so the versioned compare-and-set
// holds across processes.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store. An empty prefix defaults to "gcr".
func NewRedis(redisClient redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "gcr"
	}
	return &Redis{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Redis) key(username string) string {
	return s.prefix + ":acct:" + username
}

func (s *Redis) indexKey() string {
	return s.prefix + ":index"
}

// Exists implements goCred.AccountStore.
func (s *Redis) Exists(ctx context.Context, username string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(username)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Get implements goCred.AccountStore.
func (s *Redis) Get(ctx context.Context, username string) (*goCred.Account, error) {
	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, goCred.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeAccount(data)
}

// Save implements goCred.AccountStore. The version check and the write run
// under WATCH on the account key; an interleaved writer fails the
// transaction, and the re-read then surfaces the version conflict.
func (s *Redis) Save(ctx context.Context, account *goCred.Account) (*goCred.Account, error) {
	key := s.key(account.Username)

	for i := 0; i < redisSaveRetries; i++ {
		var stored *goCred.Account

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				if account.Version != 0 {
					return goCred.ErrVersionConflict
				}
			case err != nil:
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			default:
				if account.Version == 0 {
					return goCred.ErrAccountExists
				}
				current, err := decodeAccount(data)
				if err != nil {
					return err
				}
				if current.Version != account.Version {
					return goCred.ErrVersionConflict
				}
			}

			next := account.Clone()
			next.Version++

			encoded, err := json.Marshal(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				pipe.SAdd(ctx, s.indexKey(), account.Username)
				return nil
			})
			if err != nil {
				return err
			}

			stored = next
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return stored, nil
	}

	return nil, goCred.ErrVersionConflict
}

// DeleteAll implements goCred.AccountStore.
func (s *Redis) DeleteAll(ctx context.Context) error {
	usernames, err := s.redis.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(usernames)+1)
	for _, username := range usernames {
		keys = append(keys, s.key(username))
	}
	keys = append(keys, s.indexKey())

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// List implements goCred.AccountStore, ordered by username ascending.
func (s *Redis) List(ctx context.Context, offset, limit int) ([]*goCred.Account, error) {
	usernames, err := s.redis.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	sort.Strings(usernames)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(usernames) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(usernames) {
		end = len(usernames)
	}

	out := make([]*goCred.Account, 0, end-offset)
	for _, username := range usernames[offset:end] {
		account, err := s.Get(ctx, username)
		if err != nil {
			// The index can briefly lead the key space during a wipe.
			if errors.Is(err, goCred.ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, account)
	}
	return out, nil
}

func decodeAccount(data []byte) (*goCred.Account, error) {
	var account goCred.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("corrupt account record: %v", err)
	}
	return &account, nil
}
