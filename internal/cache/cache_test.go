package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRistrettoCache_SetGet(t *testing.T) {
	c, err := New[string](100)
	require.NoError(t, err)

	c.Set("key", "value", time.Minute)
	c.Wait()

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestRistrettoCache_Miss(t *testing.T) {
	c, err := New[string](100)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestRistrettoCache_Delete(t *testing.T) {
	c, err := New[int](100)
	require.NoError(t, err)

	c.Set("key", 42, time.Minute)
	c.Wait()

	c.Delete("key")
	c.Wait()

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestRistrettoCache_TTLExpiry(t *testing.T) {
	c, err := New[int](100)
	require.NoError(t, err)

	c.Set("key", 1, 10*time.Millisecond)
	c.Wait()

	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestRistrettoCache_Clear(t *testing.T) {
	c, err := New[int](100)
	require.NoError(t, err)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Wait()

	c.Clear()

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOp[string]()

	c.Set("key", "value", time.Minute)
	c.Wait()

	_, ok := c.Get("key")
	assert.False(t, ok, "no-op cache must never return a hit")

	// Delete and Clear must not panic
	c.Delete("key")
	c.Clear()
}
