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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLease_AcquireAndRelease(t *testing.T) {
	server, client := newRedis(t)
	lease := NewLease(NewWriterLock(client, writerKey, "holder-1"), 30*time.Second)

	assert.ErrorIs(t, lease.Err(), ErrLeaseNotHeld)

	require.NoError(t, lease.Acquire(context.Background(), 0))
	assert.NoError(t, lease.Err())
	assert.True(t, server.Exists(writerKey))

	require.NoError(t, lease.Release(context.Background()))
	assert.ErrorIs(t, lease.Err(), ErrLeaseNotHeld)
	assert.False(t, server.Exists(writerKey))
	assert.NoError(t, lease.Release(context.Background()), "second release is a no-op")
}

func TestLease_AcquireHeldElsewhere(t *testing.T) {
	server, client := newRedis(t)
	require.NoError(t, server.Set(writerKey, "holder-1"))
	lease := NewLease(NewWriterLock(client, writerKey, "holder-2"), 30*time.Second)

	err := lease.Acquire(context.Background(), 0)
	var held *HeldError
	assert.ErrorAs(t, err, &held)
	assert.ErrorIs(t, lease.Err(), ErrLeaseNotHeld)
}

func TestLease_RenewalKeepsLockAlive(t *testing.T) {
	server, client := newRedis(t)
	lease := NewLease(NewWriterLock(client, writerKey, "holder-1"), 300*time.Millisecond)

	require.NoError(t, lease.Acquire(context.Background(), 0))
	t.Cleanup(func() { _ = lease.Release(context.Background()) })

	// miniredis only expires keys on FastForward; the renewals reset the ttl
	server.SetTTL(writerKey, time.Millisecond)
	assert.Eventually(t, func() bool {
		return server.TTL(writerKey) == 300*time.Millisecond
	}, 2*time.Second, 20*time.Millisecond)
	assert.NoError(t, lease.Err())
}

func TestLease_FailedRenewalLosesLease(t *testing.T) {
	server, client := newRedis(t)
	lease := NewLease(NewWriterLock(client, writerKey, "holder-1"), 30*time.Second)

	require.NoError(t, lease.Acquire(context.Background(), 0))

	// another process took the key over
	server.Set(writerKey, "holder-2")
	assert.ErrorIs(t, lease.renew(), ErrNotHolder)
	assert.ErrorIs(t, lease.Err(), ErrNotHolder)

	// a lost lease is not released
	assert.NoError(t, lease.Release(context.Background()))
	value, err := server.Get(writerKey)
	require.NoError(t, err)
	assert.Equal(t, "holder-2", value)
}
