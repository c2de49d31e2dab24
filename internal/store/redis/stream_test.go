package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kodax/bulkpay/internal/domain/event"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPublish(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewStream("redis://"+mr.Addr(), "test:events")
	require.NoError(t, err)
	defer s.Close()

	env, err := event.NewEnvelope(time.Now(), event.BatchCancelled{Batch: "b1"})
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), env))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	entries, err := client.XRange(context.Background(), "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(event.KindBatchCancelled), entries[0].Values["kind"])
	assert.Equal(t, env.ID.String(), entries[0].Values["id"])
	assert.NotEmpty(t, entries[0].Values["event"])
}

func TestStreamPublish_AppendOrder(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewStream("redis://"+mr.Addr(), "test:events")
	require.NoError(t, err)
	defer s.Close()

	kinds := []event.Payload{
		event.VaultInitialized{Vault: "v1", Authority: "a1"},
		event.BatchCreated{Batch: "b1", Vault: "v1", BatchID: 1},
		event.BatchExecuted{Batch: "b1"},
	}
	for _, p := range kinds {
		env, err := event.NewEnvelope(time.Now(), p)
		require.NoError(t, err)
		require.NoError(t, s.Publish(context.Background(), env))
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	entries, err := client.XRange(context.Background(), "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, string(event.KindVaultInitialized), entries[0].Values["kind"])
	assert.Equal(t, string(event.KindBatchCreated), entries[1].Values["kind"])
	assert.Equal(t, string(event.KindBatchExecuted), entries[2].Values["kind"])
}

func TestNewStream_DefaultKey(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewStream("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, defaultStreamKey, s.key)
}

func TestNewStream_BadURL(t *testing.T) {
	_, err := NewStream("not-a-url", "k")
	assert.Error(t, err)
}
