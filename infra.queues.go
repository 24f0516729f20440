package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChangeKind names the collection mutation carried by a Change.
type ChangeKind string

const (
	ChangeInsert  ChangeKind = "insert"
	ChangeReplace ChangeKind = "replace"
	ChangeRemove  ChangeKind = "remove"
	ChangeReset   ChangeKind = "reset"
)

// Change is one successful mutation of a collection, published so that
// another collection can replay it.
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Index int        `json:"index"`
	Old   *Book      `json:"old,omitempty"`
	New   *Book      `json:"new,omitempty"`
	Books []Book     `json:"books,omitempty"`
}

// ApplyTo replays the change against c.
func (ch Change) ApplyTo(ctx context.Context, c Collection) error {
	switch ch.Kind {
	case ChangeInsert:
		if ch.New == nil {
			return fmt.Errorf("%s change without book", ch.Kind)
		}
		return c.Insert(ctx, ch.Index, *ch.New)
	case ChangeReplace:
		if ch.Old == nil || ch.New == nil {
			return fmt.Errorf("%s change without books", ch.Kind)
		}
		return c.Replace(ctx, *ch.Old, *ch.New)
	case ChangeRemove:
		if ch.Old == nil {
			return fmt.Errorf("%s change without book", ch.Kind)
		}
		_, err := c.Remove(ctx, *ch.Old)
		return err
	case ChangeReset:
		return c.Reset(ctx, ch.Books)
	}
	return fmt.Errorf("unknown change kind %q", ch.Kind)
}

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of collection changes.
type Queuer interface {
	Push(ctx context.Context, change Change) error
	Pop(ctx context.Context) (Change, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) Queuer {
	return &redisQueue{client: client, key: key}
}

// Push enqueues a change at the tail of the queue.
func (q *redisQueue) Push(ctx context.Context, change Change) error {
	changeBytes, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, q.key, changeBytes).Err()
}

// popWait bounds each blocking pop so that a cancelled context is noticed.
const popWait = time.Second

// Pop blocks until a change is available or ctx is done.
func (q *redisQueue) Pop(ctx context.Context) (Change, error) {
	var change Change
	for {
		infos, err := q.client.BLPop(ctx, popWait, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return change, ctx.Err()
			}
			continue
		}
		if err != nil {
			return change, err
		}
		err = json.Unmarshal([]byte(infos[1]), &change)
		return change, err
	}
}
