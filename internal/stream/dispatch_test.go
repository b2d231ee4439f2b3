package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := NewLoop(8)
	go loop.Run(ctx)

	var got []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		loop.Post(func() {
			got = append(got, i)
			wg.Done()
		})
	}
	wg.Wait()

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestCallWaitsForResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(1)
	go loop.Run(ctx)

	var v int
	require.NoError(t, Call(context.Background(), loop, func() { v = 7 }))
	assert.Equal(t, 7, v)

	cancel()
	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	// posting after stop is dropped, Call gives up on its context
	callCtx, callCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer callCancel()
	err := Call(callCtx, loop, func() { v = 8 })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 7, v)
}

func TestCallInline(t *testing.T) {
	ran := false
	require.NoError(t, Call(context.Background(), Inline{}, func() { ran = true }))
	assert.True(t, ran)
}
