package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kodax/bulkpay/internal/domain/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStream_AppendOrder(t *testing.T) {
	s := NewInMemoryStream()

	for _, p := range []event.Payload{
		event.VaultInitialized{Vault: "v1", Authority: "a1"},
		event.BatchCreated{Batch: "b1", Vault: "v1"},
		event.BatchCancelled{Batch: "b1"},
	} {
		env, err := event.NewEnvelope(time.Now(), p)
		require.NoError(t, err)
		require.NoError(t, s.Publish(context.Background(), env))
	}

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, event.KindVaultInitialized, entries[0].Kind)
	assert.Equal(t, event.KindBatchCreated, entries[1].Kind)
	assert.Equal(t, event.KindBatchCancelled, entries[2].Kind)
}

func TestInMemoryStream_EntriesIsSnapshot(t *testing.T) {
	s := NewInMemoryStream()

	env, err := event.NewEnvelope(time.Now(), event.BatchCancelled{Batch: "b1"})
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), env))

	snapshot := s.Entries()
	require.NoError(t, s.Publish(context.Background(), env))
	assert.Len(t, snapshot, 1)
	assert.Len(t, s.Entries(), 2)
}

func TestInMemoryStream_ConcurrentPublish(t *testing.T) {
	s := NewInMemoryStream()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env, err := event.NewEnvelope(time.Now(), event.BatchCancelled{Batch: "b1"})
			require.NoError(t, err)
			require.NoError(t, s.Publish(context.Background(), env))
		}()
	}
	wg.Wait()

	assert.Len(t, s.Entries(), 20)
}
