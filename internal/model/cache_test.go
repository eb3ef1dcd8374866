package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct{ id string }

func (h *stubHandle) ID() string { return h.id }

func (h *stubHandle) Translate(_ context.Context, text string) (string, error) {
	return h.id + ":" + text, nil
}

func countingLoader(calls *atomic.Int32, delay time.Duration) Loader {
	return func(ctx context.Context, id string) (Handle, error) {
		calls.Add(1)
		time.Sleep(delay)
		return &stubHandle{id: id}, nil
	}
}

func TestGet_LoadsOnceAndReturnsSameHandle(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 0))

	h1, err := c.Get(context.Background(), "X")
	require.NoError(t, err)
	h2, err := c.Get(context.Background(), "X")
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_DistinctIDsLoadSeparately(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 0))

	a, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	b, err := c.Get(context.Background(), "b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"a", "b"}, c.Loaded())
}

func TestGet_ConcurrentCallersShareOneLoad(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 50*time.Millisecond))

	const n = 16
	handles := make([]Handle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := c.Get(context.Background(), "shared")
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestGet_FailureNotCached(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("model not found")
	c := NewCache(func(ctx context.Context, id string) (Handle, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &stubHandle{id: id}, nil
	})

	_, err := c.Get(context.Background(), "flaky")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, c.Loaded())

	h, err := c.Get(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "flaky", h.ID())
	assert.Equal(t, int32(2), calls.Load())
}

func TestPreload_StopsAtFirstError(t *testing.T) {
	c := NewCache(func(ctx context.Context, id string) (Handle, error) {
		if id == "bad" {
			return nil, errors.New("nope")
		}
		return &stubHandle{id: id}, nil
	})

	err := c.Preload(context.Background(), "ok", "bad", "never")
	require.Error(t, err)
	assert.Equal(t, []string{"ok"}, c.Loaded())
}

func TestGet_CancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := NewCache(func(ctx context.Context, id string) (Handle, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &stubHandle{id: id}, nil
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(ctxA, "X")
		errA <- err
	}()
	<-started

	type result struct {
		h   Handle
		err error
	}
	resB := make(chan result, 1)
	go func() {
		h, err := c.Get(context.Background(), "X")
		resB <- result{h, err}
	}()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "X", b.h.ID())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"X"}, c.Loaded())
}

func TestGet_NilHandleIsAnError(t *testing.T) {
	c := NewCache(func(ctx context.Context, id string) (Handle, error) {
		return nil, nil
	})

	h, err := c.Get(context.Background(), "empty")
	require.ErrorIs(t, err, ErrNilHandle)
	assert.Nil(t, h)
	assert.Empty(t, c.Loaded())
}
