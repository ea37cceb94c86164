package cache_test

import (
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/infra/cache"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTTLMap_ExpiresEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := cache.NewTTLMapWithClock(time.Minute, clock.Now)

	m.Set("1.2.3.4:blocked", true)
	v, ok := m.Get("1.2.3.4:blocked")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	clock.Advance(time.Minute)
	_, ok = m.Get("1.2.3.4:blocked")
	assert.True(t, ok, "entry is alive up to its deadline")

	clock.Advance(time.Second)
	_, ok = m.Get("1.2.3.4:blocked")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestTTLMap_SetWithTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := cache.NewTTLMapWithClock(time.Minute, clock.Now)

	m.SetWithTTL("short", 1, 10*time.Second)
	m.Set("long", 2)

	left, ok := m.Remaining("short")
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, left)

	clock.Advance(11 * time.Second)
	_, ok = m.Get("short")
	assert.False(t, ok)
	_, ok = m.Get("long")
	assert.True(t, ok)
}

func TestTTLMap_DeleteAndClear(t *testing.T) {
	m := cache.NewTTLMap(time.Minute)
	m.Set("a", 1)
	m.Set("b", 2)

	m.Delete("a")
	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Clear()
	assert.Equal(t, 0, m.Len())
}
