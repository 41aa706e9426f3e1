package identity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReservations_Exclusive(t *testing.T) {
	res := NewMemoryReservations()
	ctx := context.Background()

	release, ok, err := res.Reserve(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = res.Reserve(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	other, ok, err := res.Reserve(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	other()

	release()
	release()

	again, ok, err := res.Reserve(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestMemoryReservations_Concurrent(t *testing.T) {
	res := NewMemoryReservations()
	var winners int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := res.Reserve(context.Background(), "alice"); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}
