package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/routechain/pkg/adapters/redis"
	"github.com/aretw0/routechain/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Journal) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, opts...)
}

func TestJournal_AppendAndEntries(t *testing.T) {
	mr, j := setup(t, redis.WithStream("test:journal"))
	ctx := context.Background()

	require.NoError(t, j.Ping(ctx))

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id, err := j.Append(ctx, redis.Entry{Kind: redis.KindSequence, Timestamp: ts, Sequence: 4, Route: "A", Status: "completed"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, mr.Exists("test:journal"))

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, redis.KindSequence, got.Kind)
	assert.True(t, ts.Equal(got.Timestamp), "timestamp %v", got.Timestamp)
	assert.Equal(t, uint64(4), got.Sequence)
	assert.Equal(t, "A", got.Route)
	assert.Equal(t, "completed", got.Status)
	assert.Empty(t, got.Error)
}

func TestJournal_EntriesMostRecentOldestFirst(t *testing.T) {
	_, j := setup(t)
	ctx := context.Background()

	for _, route := range []string{"A", "B", "C", "D"} {
		_, err := j.Append(ctx, redis.Entry{Kind: redis.KindHook, Route: route})
		require.NoError(t, err)
	}

	entries, err := j.Entries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "C", entries[0].Route)
	assert.Equal(t, "D", entries[1].Route)
}

func TestJournal_MaxLen(t *testing.T) {
	_, j := setup(t, redis.WithMaxLen(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := j.Append(ctx, redis.Entry{Kind: redis.KindHook})
		require.NoError(t, err)
	}
	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestJournal_LifecycleHooksAndReport(t *testing.T) {
	_, j := setup(t)
	ctx := context.Background()
	hooks := j.LifecycleHooks()

	hooks.OnHookEnd(ctx, &domain.HookEvent{Sequence: 1, Node: "A", Hook: domain.HookEnter})
	hooks.OnHookEnd(ctx, &domain.HookEvent{Sequence: 1, Node: "A.A", Hook: domain.HookEnter, Superseded: true})
	j.Report(ctx, &domain.ChainItemError{Node: "B", Hook: domain.HookExit, Item: "#0", Phase: domain.PhaseAction, Err: errors.New("boom")})
	hooks.OnSequenceEnd(ctx, &domain.SequenceEvent{Sequence: 1, Next: []string{"application", "A", "A.A"}, Status: domain.RunSuperseded})

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, redis.KindHook, entries[0].Kind)
	assert.Equal(t, "ok", entries[0].Status)
	assert.Equal(t, "superseded", entries[1].Status)

	assert.Equal(t, redis.KindError, entries[2].Kind)
	assert.Equal(t, "B", entries[2].Route)
	assert.Equal(t, "onExit", entries[2].Hook)
	assert.Contains(t, entries[2].Error, "boom")

	assert.Equal(t, redis.KindSequence, entries[3].Kind)
	assert.Equal(t, "A.A", entries[3].Route)
	assert.Equal(t, "superseded", entries[3].Status)
}

func TestJournal_UnavailableServer(t *testing.T) {
	mr, j := setup(t)
	mr.Close()
	ctx := context.Background()

	_, err := j.Append(ctx, redis.Entry{Kind: redis.KindHook})
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		j.Report(ctx, errors.New("lost"))
		j.LifecycleHooks().OnSequenceEnd(ctx, &domain.SequenceEvent{})
	})
}
