package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_CachesWhileSignatureUnchanged(t *testing.T) {
	c := New[string]()
	var calls int32

	load := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "dataset", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get("/data", "sig-1", load)
		require.NoError(t, err)
		assert.Equal(t, "dataset", v)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_SignatureChangeForcesReload(t *testing.T) {
	c := New[int]()
	var calls int32

	load := func() (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, err := c.Get("/data", "sig-1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Get("/data", "sig-2", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "changed signature must reload")

	v, err = c.Get("/data", "sig-2", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestInvalidate(t *testing.T) {
	c := New[int]()
	var calls int32

	load := func() (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	_, err := c.Get("/data", "sig-1", load)
	require.NoError(t, err)

	c.Invalidate("/data")

	v, err := c.Get("/data", "sig-1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidated key must reload even with the same signature")
}

func TestGet_ErrorsNotCached(t *testing.T) {
	c := New[int]()
	var calls int32

	failing := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, errors.New("boom")
	}

	_, err := c.Get("/data", "sig-1", failing)
	assert.Error(t, err)

	v, err := c.Get("/data", "sig-1", func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v, "a failed load must not poison the cache")
}

func TestGet_ConcurrentLoadsCollapse(t *testing.T) {
	c := New[string]()
	var calls int32
	start := make(chan struct{})

	load := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "dataset", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := c.Get("/data", "sig-1", load)
			assert.NoError(t, err)
			assert.Equal(t, "dataset", v)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent loads must collapse into one")
}
