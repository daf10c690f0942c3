package itemstore

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// retryingStore decorates a Store with bounded backoff around transient
// persistence failures. Domain outcomes (ErrItemNotFound,
// ErrConditionFailed) are never retried: a lost conditional write must
// surface to the caller so it can re-read and re-decide.
type retryingStore struct {
	inner       Store
	maxRetries  uint64
	baseBackoff time.Duration
}

// WithRetry wraps store so every call retries transient failures up to
// maxRetries times with fibonacci backoff starting at baseBackoff.
func WithRetry(store Store, maxRetries uint64, baseBackoff time.Duration) Store {
	return &retryingStore{inner: store, maxRetries: maxRetries, baseBackoff: baseBackoff}
}

func (s *retryingStore) do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(s.baseBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrConditionFailed) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (s *retryingStore) Put(ctx context.Context, key Key, item any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Put(ctx, key, item) })
}

func (s *retryingStore) PutIfAbsent(ctx context.Context, key Key, item any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.PutIfAbsent(ctx, key, item) })
}

func (s *retryingStore) Get(ctx context.Context, key Key, out any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Get(ctx, key, out) })
}

func (s *retryingStore) Scan(ctx context.Context, class string, out any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Scan(ctx, class, out) })
}

func (s *retryingStore) ScanEq(ctx context.Context, class, field string, value any, out any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.ScanEq(ctx, class, field, value, out) })
}

func (s *retryingStore) SetAttrs(ctx context.Context, key Key, attrs map[string]any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.SetAttrs(ctx, key, attrs) })
}

func (s *retryingStore) Append(ctx context.Context, key Key, field string, value any) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Append(ctx, key, field, value) })
}

func (s *retryingStore) AppendIfLen(ctx context.Context, key Key, field string, value any, length int) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.inner.AppendIfLen(ctx, key, field, value, length)
	})
}

func (s *retryingStore) RemoveAt(ctx context.Context, key Key, field string, index int, guard map[string]any) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.inner.RemoveAt(ctx, key, field, index, guard)
	})
}

func (s *retryingStore) Increment(ctx context.Context, key Key, field string, delta int) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Increment(ctx, key, field, delta) })
}

func (s *retryingStore) Delete(ctx context.Context, key Key) error {
	return s.do(ctx, func(ctx context.Context) error { return s.inner.Delete(ctx, key) })
}
