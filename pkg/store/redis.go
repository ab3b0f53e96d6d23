package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/observability"
)

// Redis stores documents in Redis for multi-instance deployments.
// Each record lives at doc:<id>; the docs set indexes stored IDs so
// listings avoid a SCAN.
type Redis struct {
	client *redis.Client
}

const (
	redisDocPrefix = "doc:"
	redisIndexKey  = "docs"
)

// NewRedis connects to the Redis server at addr and verifies the
// connection with a ping.
func NewRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "connect to redis at %s", addr)
	}
	return &Redis{client: client}, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	var rec *Record
	err := RetryWithBackoff(ctx, func() error {
		data, err := r.client.Get(ctx, redisDocPrefix+id).Bytes()
		if err == redis.Nil {
			return notFound(id)
		}
		if err != nil {
			return &RetryableError{Err: err}
		}
		rec = new(Record)
		if err := json.Unmarshal(data, rec); err != nil {
			return errors.Wrap(errors.CodeInvalidDocument, err, "parse document %s", id)
		}
		return nil
	})
	observability.Store().OnGet(ctx, "redis", id, err == nil, time.Since(start))
	if err != nil {
		return nil, wrapRetryExhausted(err, "get document %s", id)
	}
	return rec, nil
}

// Put implements Store.
func (r *Redis) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	if prev, err := r.Get(ctx, rec.ID); err == nil {
		stamp(rec, &prev.CreatedAt)
	} else {
		stamp(rec, nil)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode document %s", rec.ID)
	}
	err = RetryWithBackoff(ctx, func() error {
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, redisDocPrefix+rec.ID, data, 0)
		pipe.SAdd(ctx, redisIndexKey, rec.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	err = wrapRetryExhausted(err, "put document %s", rec.ID)
	observability.Store().OnPut(ctx, "redis", rec.ID, time.Since(start), err)
	return err
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, id string) error {
	err := RetryWithBackoff(ctx, func() error {
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, redisDocPrefix+id)
		pipe.SRem(ctx, redisIndexKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	err = wrapRetryExhausted(err, "delete document %s", id)
	observability.Store().OnDelete(ctx, "redis", id, err)
	return err
}

// List implements Store.
func (r *Redis) List(ctx context.Context) ([]Info, error) {
	var infos []Info
	err := RetryWithBackoff(ctx, func() error {
		ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
		if err != nil {
			return &RetryableError{Err: err}
		}
		if len(ids) == 0 {
			infos = nil
			return nil
		}
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = redisDocPrefix + id
		}
		vals, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return &RetryableError{Err: err}
		}
		infos = infos[:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				// Index entry without a document; drop it lazily.
				r.client.SRem(ctx, redisIndexKey, ids[i])
				continue
			}
			var rec Record
			if err := json.Unmarshal([]byte(s), &rec); err != nil {
				continue
			}
			infos = append(infos, infoOf(&rec))
		}
		return nil
	})
	if err != nil {
		return nil, wrapRetryExhausted(err, "list documents")
	}
	sortInfos(infos)
	return infos, nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}

// wrapRetryExhausted converts a still-retryable error into a coded
// store failure after the retry budget is spent. Coded errors pass
// through unchanged.
func wrapRetryExhausted(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var re *RetryableError
	if stderrors.As(err, &re) {
		return errors.Wrap(errors.CodeStoreUnavailable, re.Err, format, args...)
	}
	return err
}

var _ Store = (*Redis)(nil)
