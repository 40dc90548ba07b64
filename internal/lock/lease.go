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
	"errors"
	"sync"
	"time"
)

var ErrLeaseNotHeld = errors.New("writer lease is not held")

// Lease keeps a writer lock for as long as its holder runs, renewing it
// every third of its ttl. Once a renewal fails the lease is lost for good.
type Lease struct {
	lock *WriterLock
	ttl  time.Duration

	mu   sync.Mutex
	err  error
	stop chan struct{}
	done chan struct{}
}

func NewLease(lock *WriterLock, ttl time.Duration) *Lease {
	return &Lease{lock: lock, ttl: ttl, err: ErrLeaseNotHeld}
}

// Acquire takes the lock, waiting up to wait for a previous holder to let
// go, and starts renewing it.
func (l *Lease) Acquire(ctx context.Context, wait time.Duration) error {
	if err := l.lock.Acquire(ctx, l.ttl, wait); err != nil {
		return err
	}

	l.mu.Lock()
	l.err = nil
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.keepAlive(l.stop, l.done)
	return nil
}

func (l *Lease) keepAlive(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := l.renew(); err != nil {
				return
			}
		}
	}
}

func (l *Lease) renew() error {
	ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
	defer cancel()
	err := l.lock.Renew(ctx, l.ttl)
	if err != nil {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
	}
	return err
}

// Err is nil while the lease is held. Otherwise it says why it is not.
func (l *Lease) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Release stops renewal and gives the lock up. Releasing a lease that was
// lost or never acquired is a no-op.
func (l *Lease) Release(ctx context.Context) error {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done

	l.mu.Lock()
	lost := l.err != nil
	l.err = ErrLeaseNotHeld
	l.mu.Unlock()
	if lost {
		return nil
	}
	return l.lock.Release(ctx)
}
