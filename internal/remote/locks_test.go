package remote

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/stretchr/testify/require"
)

func TestLockTable_SerializesSameIdentity(t *testing.T) {
	locks := newLockTable()
	id := draft.NewID("user", "local-1")

	var (
		wg      sync.WaitGroup
		running int32
		maxSeen int32
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = locks.withLock(id, func() error {
				n := atomic.AddInt32(&running, 1)
				defer atomic.AddInt32(&running, -1)

				for {
					seen := atomic.LoadInt32(&maxSeen)
					if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
						break
					}
				}

				return nil
			})
		}()
	}

	wg.Wait()

	require.Equal(t, int32(1), maxSeen)
	require.Zero(t, locks.size())
}

func TestLockTable_IndependentIdentities(t *testing.T) {
	locks := newLockTable()

	first := draft.NewID("user", "local-1")
	second := draft.NewID("user", "local-2")

	// Holding the first identity's lock must not block the second.
	require.NoError(t, locks.withLock(first, func() error {
		require.Equal(t, 1, locks.size())

		return locks.withLock(second, func() error {
			require.Equal(t, 2, locks.size())
			return nil
		})
	}))

	require.Zero(t, locks.size())
}
