package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chemgate/chemgate/engine/core"
	"github.com/chemgate/chemgate/engine/infra/cache"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/chemgate/chemgate/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Broker dispatches jobs to Redis-backed queues and tracks task records.
// It is safe for concurrent use; all state lives in Redis.
type Broker struct {
	redis     cache.RedisInterface
	keyPrefix string
	resultTTL time.Duration
}

// NewBroker creates a broker on top of the given Redis client.
func NewBroker(client cache.RedisInterface, cfg *config.BrokerConfig) *Broker {
	return &Broker{
		redis:     client,
		keyPrefix: cfg.KeyPrefix,
		resultTTL: cfg.ResultTTL,
	}
}

func (b *Broker) taskKey(id core.ID) string {
	return fmt.Sprintf("%s:task:%s", b.keyPrefix, id)
}

func (b *Broker) queueKey(queue string) string {
	return fmt.Sprintf("%s:queue:%s", b.keyPrefix, queue)
}

func (b *Broker) ownerKey(owner string) string {
	return fmt.Sprintf("%s:owner:%s", b.keyPrefix, owner)
}

// Dispatch enqueues a job and creates its PENDING record. It returns the
// new handle immediately and never waits for execution.
func (b *Broker) Dispatch(ctx context.Context, taskName, queue string, args map[string]any, owner string) (core.ID, error) {
	id, err := core.NewID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	rec := &Record{
		ID:        id,
		Task:      taskName,
		Queue:     queue,
		State:     StatePending,
		Owner:     owner,
		CreatedAt: now,
	}
	if err := b.writeRecord(ctx, rec); err != nil {
		return "", err
	}
	job := &Job{ID: id, Task: taskName, Queue: queue, Args: args, Owner: owner, EnqueuedAt: now}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}
	if err := b.redis.RPush(ctx, b.queueKey(queue), payload).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if owner != "" {
		if err := b.redis.SAdd(ctx, b.ownerKey(owner), id.String()).Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		b.redis.Expire(ctx, b.ownerKey(owner), b.resultTTL)
	}
	logger.FromContext(ctx).Debug("task dispatched",
		"task_id", id, "task", taskName, "queue", queue, "owner", owner)
	return id, nil
}

// GetRecord fetches a task record. A handle the broker has no record of
// returns (nil, nil); callers map that to StateUnknown.
func (b *Broker) GetRecord(ctx context.Context, id core.ID) (*Record, error) {
	data, err := b.redis.Get(ctx, b.taskKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode task record %s: %w", id, err)
	}
	return &rec, nil
}

// GetState returns the current state for a handle, StateUnknown when the
// broker has no record.
func (b *Broker) GetState(ctx context.Context, id core.ID) (State, error) {
	rec, err := b.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return StateUnknown, nil
	}
	return rec.State, nil
}

// Delete removes a task record. Only the owning identity or an admin may
// delete; deleting an unknown handle is reported, not silently ignored.
func (b *Broker) Delete(ctx context.Context, id core.ID, requester string, admin bool) error {
	rec, err := b.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if rec.Owner != "" && rec.Owner != requester && !admin {
		return ErrForbidden
	}
	if err := b.redis.Del(ctx, b.taskKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if rec.Owner != "" {
		b.redis.SRem(ctx, b.ownerKey(rec.Owner), id.String())
	}
	return nil
}

// ListOwned returns all live records for an owner, newest first. Records
// that expired since being indexed are skipped.
func (b *Broker) ListOwned(ctx context.Context, owner string) ([]*Record, error) {
	ids, err := b.redis.SMembers(ctx, b.ownerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	records := make([]*Record, 0, len(ids))
	for _, raw := range ids {
		rec, err := b.GetRecord(ctx, core.ID(raw))
		if err != nil {
			return nil, err
		}
		if rec == nil {
			b.redis.SRem(ctx, b.ownerKey(owner), raw)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// QueueStats reports the backlog length of each named queue.
func (b *Broker) QueueStats(ctx context.Context, queues []string) ([]QueueStat, error) {
	stats := make([]QueueStat, 0, len(queues))
	for _, q := range queues {
		n, err := b.redis.LLen(ctx, b.queueKey(q)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		stats = append(stats, QueueStat{Name: q, Pending: n})
	}
	return stats, nil
}

// Reserve pops the next job from a queue. Workers call this; the gateway
// does not. Returns (nil, nil) when the queue is empty.
func (b *Broker) Reserve(ctx context.Context, queue string) (*Job, error) {
	data, err := b.redis.LPop(ctx, b.queueKey(queue)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// MarkStarted transitions a record to STARTED when a worker claims it.
func (b *Broker) MarkStarted(ctx context.Context, id core.ID) error {
	return b.transition(ctx, id, func(rec *Record) {
		rec.State = StateStarted
	})
}

// Complete transitions a record to the SUCCESS terminal state and stores
// the result payload.
func (b *Broker) Complete(ctx context.Context, id core.ID, result any) error {
	return b.transition(ctx, id, func(rec *Record) {
		rec.State = StateSuccess
		rec.Result = result
		rec.CompletedAt = time.Now().UTC()
	})
}

// Fail transitions a record to the FAILURE terminal state with the worker's
// error message.
func (b *Broker) Fail(ctx context.Context, id core.ID, message string) error {
	return b.transition(ctx, id, func(rec *Record) {
		rec.State = StateFailure
		rec.Error = message
		rec.CompletedAt = time.Now().UTC()
	})
}

func (b *Broker) transition(ctx context.Context, id core.ID, mutate func(*Record)) error {
	rec, err := b.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	mutate(rec)
	return b.writeRecord(ctx, rec)
}

func (b *Broker) writeRecord(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode task record: %w", err)
	}
	if err := b.redis.Set(ctx, b.taskKey(rec.ID), data, b.resultTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
