package traceability

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionStoreCreatesOnce(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()
	created := 0
	factory := func(id string) *Session {
		created++
		return &Session{ID: id, Navigator: NewNavigator()}
	}

	first, err := store.Session(ctx, "tab-1", factory)
	require.NoError(t, err)
	second, err := store.Session(ctx, "tab-1", factory)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, created)

	_, err = store.Session(ctx, "", factory)
	assert.Error(t, err)
	_, err = store.Session(ctx, "tab-2", nil)
	assert.Error(t, err)
}

func TestInMemorySessionStoreConcurrentCreate(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()
	var mu sync.Mutex
	created := 0
	factory := func(id string) *Session {
		mu.Lock()
		created++
		mu.Unlock()
		return &Session{ID: id}
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Session(ctx, "shared", factory)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestInMemorySessionStoreDeleteClosesScanner(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()
	scanner := NewScanSimulator(ScannerOptions{})
	_, err := store.Session(ctx, "tab-1", func(id string) *Session {
		return &Session{ID: id, Scanner: scanner}
	})
	require.NoError(t, err)
	require.True(t, scanner.Trigger())

	require.NoError(t, store.Delete(ctx, "tab-1"))
	assert.False(t, scanner.Busy())
	assert.False(t, scanner.Trigger(), "deleted session scanner should be closed")
	assert.NoError(t, store.Delete(ctx, "unknown"))

	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInMemorySessionStoreIDsSorted(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := store.Session(ctx, id, func(id string) *Session { return &Session{ID: id} })
		require.NoError(t, err)
	}
	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	store.Close()
	ids, _ = store.IDs(ctx)
	assert.Empty(t, ids)
}

func TestInMemorySessionStoreExpiresIdleSessions(t *testing.T) {
	store := NewInMemorySessionStore(WithSessionTTL(time.Minute))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	factory := func(id string) *Session { return &Session{ID: id, Scanner: NewScanSimulator(ScannerOptions{})} }

	idle, err := store.Session(ctx, "idle", factory)
	require.NoError(t, err)
	require.True(t, idle.Scanner.Trigger())
	_, err = store.Session(ctx, "active", factory)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	_, err = store.Session(ctx, "active", factory)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, store.Sweep(ctx))
	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, ids)
	assert.False(t, idle.Scanner.Busy(), "evicted session timers must stop")

	again, err := store.Session(ctx, "idle", factory)
	require.NoError(t, err)
	assert.NotSame(t, idle, again)
}

func TestInMemorySessionStoreReplacesExpiredOnLookup(t *testing.T) {
	store := NewInMemorySessionStore(WithSessionTTL(time.Minute))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	factory := func(id string) *Session { return &Session{ID: id} }

	first, err := store.Session(ctx, "tab", factory)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	second, err := store.Session(ctx, "tab", factory)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestInMemorySessionStoreCapsAnonymousSessions(t *testing.T) {
	store := NewInMemorySessionStore(WithMaxSessions(10))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
	ctx := context.Background()
	factory := func(id string) *Session { return &Session{ID: id} }

	for i := 0; i < 1000; i++ {
		_, err := store.Session(ctx, fmt.Sprintf("anon-%04d", i), factory)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, store.Len())
	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anon-0990", ids[0], "least recently used sessions go first")
}

func TestServiceSessionsAreBounded(t *testing.T) {
	service := newTestService(t, Options{MaxSessions: 5})
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		_, err := service.State(ctx, service.NewSessionID())
		require.NoError(t, err)
	}
	ids, err := service.opts.Sessions.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
}
