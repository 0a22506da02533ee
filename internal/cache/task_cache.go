package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList = "tareas:list"
	keyGen  = "tareas:list:gen"
)

// TaskCache caches the full task list in Redis. Writers bump a generation
// counter; a list read from storage is only cached if the generation did not
// move while it was being read.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current write generation. A missing key is 0.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetList returns the cached list. ok is false on a miss.
func (c *TaskCache) GetList(ctx context.Context) (list []dom.Task, ok bool, err error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, false, err
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, true, nil
}

// SetList stores list if the generation is still gen. A list that lost the
// race against a write is dropped without error.
func (c *TaskCache) SetList(ctx context.Context, gen int64, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, keyGen).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyList, b, c.ttl)
			return nil
		})
		return err
	}, keyGen)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the generation and drops the cached list. Called after
// every write.
func (c *TaskCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, keyGen)
		pipe.Del(ctx, keyList)
		return nil
	})
	return err
}
