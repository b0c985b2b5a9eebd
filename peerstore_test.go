package harbor

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity(host byte, port int) Identity {
	return NewIdentity(net.IPv4(10, 0, 0, host), port)
}

func TestStoreSelfExclusion(t *testing.T) {
	self := testIdentity(1, 3300)
	store := NewStore(self, 32)

	assert.False(t, store.Add(self))
	assert.Equal(t, 0, store.Size())

	// Even a reconstructed equal identity is excluded.
	assert.False(t, store.Add(testIdentity(1, 3300)))
	assert.Equal(t, 0, store.Size())
}

func TestStoreIdempotentAdd(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	peer := testIdentity(2, 3300)

	assert.True(t, store.Add(peer))
	assert.False(t, store.Add(peer))
	assert.Equal(t, 1, store.Size())
}

func TestStoreCapacity(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 3)
	for i := 0; i < 3; i++ {
		require.True(t, store.Add(testIdentity(2, 9000+i)))
	}

	assert.False(t, store.Add(testIdentity(2, 9100)))
	assert.Equal(t, 3, store.Size())

	// A duplicate of a stored peer is still refreshed, not rejected as new.
	assert.False(t, store.Add(testIdentity(2, 9000)))
	assert.Equal(t, 3, store.Size())
}

func TestStoreRefreshesLastSeen(t *testing.T) {
	clk := clock.NewMock()
	store := newStoreWithClock(testIdentity(1, 3300), 32, clk)
	peer := testIdentity(2, 3300)

	require.True(t, store.Add(peer))
	first := store.Entries()[0].LastSeen

	clk.Add(time.Minute)
	require.False(t, store.Add(peer))
	second := store.Entries()[0].LastSeen

	assert.Equal(t, time.Minute, second.Sub(first))
	assert.Equal(t, 1, store.Size())
}

func TestStoreContains(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	peer := testIdentity(2, 3300)
	require.True(t, store.Add(peer))

	stored, ok := store.Contains(peer)
	require.True(t, ok)
	assert.True(t, peer.Equal(stored))
	assert.Equal(t, peer.Socket(), stored.Socket())

	_, ok = store.Contains(testIdentity(3, 3300))
	assert.False(t, ok)
}

func TestStoreRemoveIdempotent(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	peer := testIdentity(2, 3300)
	require.True(t, store.Add(peer))

	store.Remove(peer)
	assert.Equal(t, 0, store.Size())
	store.Remove(peer) // no-op
	assert.Equal(t, 0, store.Size())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	for i := 0; i < 5; i++ {
		require.True(t, store.Add(testIdentity(2, 9000+i)))
	}

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 5)

	// Mutating the store after the snapshot must not alter it.
	store.Remove(testIdentity(2, 9000))
	require.True(t, store.Add(testIdentity(3, 9000)))
	assert.Len(t, snapshot, 5)
	for _, id := range snapshot {
		assert.Equal(t, "10.0.0.2", id.IP().String())
	}
}

// Concurrent joins for distinct identities must all land; the table is
// mutated under one lock, so no update may be lost.
func TestStoreConcurrentAdds(t *testing.T) {
	const m = 16
	store := NewStore(testIdentity(1, 3300), m)

	var wg sync.WaitGroup
	wins := make(chan bool, m)
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			wins <- store.Add(testIdentity(2, port))
		}(9000 + i)
	}
	wg.Wait()
	close(wins)

	added := 0
	for win := range wins {
		if win {
			added++
		}
	}
	if added != m {
		t.Errorf("expected %d new joins, got %d", m, added)
	}
	if store.Size() != m {
		t.Errorf("expected store size %d, got %d", m, store.Size())
	}
}

// Concurrent joins for the same identity race on who wins the "newly
// joined" result, but exactly one may win and the post-state is identical.
func TestStoreConcurrentSameAdd(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	peer := testIdentity(2, 9000)

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- store.Add(peer)
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for win := range wins {
		if win {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly one winning join, got %d", winners)
	}
	if store.Size() != 1 {
		t.Errorf("expected store size 1, got %d", store.Size())
	}
}

func TestStoreEntries(t *testing.T) {
	store := NewStore(testIdentity(1, 3300), 32)
	for i := 0; i < 3; i++ {
		require.True(t, store.Add(testIdentity(2, 9000+i)))
	}
	entries := store.Entries()
	require.Len(t, entries, 3)
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.Identity.Socket()] = true
		assert.False(t, e.LastSeen.IsZero())
	}
	for i := 0; i < 3; i++ {
		assert.True(t, seen[fmt.Sprintf("10.0.0.2:%d", 9000+i)])
	}
}
