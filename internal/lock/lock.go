/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redlock

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrNotHolder is returned when a renewal or release finds the key gone or
// owned by another process.
var ErrNotHolder = errors.New("writer lock is not held by this process")

var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
return redis.call("DEL", KEYS[1])`)

	renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
return redis.call("PEXPIRE", KEYS[1], ARGV[2])`)
)

// HeldError says which process holds a writer lock we could not take.
// Holder is empty when the key expired between the attempt and the lookup.
type HeldError struct {
	Key    string
	Holder string
}

func (e *HeldError) Error() string {
	if e.Holder == "" {
		return fmt.Sprintf("writer lock %s is held by another process", e.Key)
	}
	return fmt.Sprintf("writer lock %s is held by %s", e.Key, e.Holder)
}

// WriterLock marks one process as the only writer of a ledger database. The
// key's value names the holder, so only the holder can renew or release it.
type WriterLock struct {
	client redis.UniversalClient
	key    string
	holder string
}

func NewWriterLock(client redis.UniversalClient, key, holder string) *WriterLock {
	return &WriterLock{client: client, key: key, holder: holder}
}

func (w *WriterLock) Key() string {
	return w.key
}

func (w *WriterLock) Holder() string {
	return w.holder
}

// TryAcquire makes one attempt to take the lock for ttl.
func (w *WriterLock) TryAcquire(ctx context.Context, ttl time.Duration) error {
	taken, err := w.client.SetNX(ctx, w.key, w.holder, ttl).Result()
	if err != nil {
		return errors.Wrapf(err, "acquire writer lock %s", w.key)
	}
	if taken {
		return nil
	}

	holder, err := w.client.Get(ctx, w.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrapf(err, "look up holder of %s", w.key)
	}
	return &HeldError{Key: w.key, Holder: holder}
}

// Acquire retries TryAcquire with exponential backoff for up to wait while
// another process holds the lock. Any other failure ends the wait at once.
func (w *WriterLock) Acquire(ctx context.Context, ttl, wait time.Duration) error {
	if wait <= 0 {
		return w.TryAcquire(ctx, ttl)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 25 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = wait

	return backoff.Retry(func() error {
		err := w.TryAcquire(ctx, ttl)
		var held *HeldError
		if err != nil && !errors.As(err, &held) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}

// Renew pushes the lock's expiry to ttl from now.
func (w *WriterLock) Renew(ctx context.Context, ttl time.Duration) error {
	renewed, err := renewScript.Run(ctx, w.client, []string{w.key}, w.holder, ttl.Milliseconds()).Int()
	if err != nil {
		return errors.Wrapf(err, "renew writer lock %s", w.key)
	}
	if renewed == 0 {
		return ErrNotHolder
	}
	return nil
}

// Release deletes the key if this process still holds it.
func (w *WriterLock) Release(ctx context.Context) error {
	released, err := releaseScript.Run(ctx, w.client, []string{w.key}, w.holder).Int()
	if err != nil {
		return errors.Wrapf(err, "release writer lock %s", w.key)
	}
	if released == 0 {
		return ErrNotHolder
	}
	return nil
}
