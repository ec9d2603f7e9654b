package dataset

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedMapAgainstBuiltin(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := newPackedMap[int64](0)
	expected := make(map[int64]int64)

	for i := 0; i < 100_000; i++ {
		id := rng.Int63n(50_000) - 25_000
		v := rng.Int63()
		_, existed := expected[id]
		assert.Equal(t, existed, m.Put(id, v))
		expected[id] = v
	}
	require.EqualValues(t, len(expected), m.Len())
	require.Equal(t, m.Len(), m.used.Count())

	for id, v := range expected {
		got, ok := m.Get(id)
		require.True(t, ok, id)
		require.Equal(t, v, got, id)
	}
	_, ok := m.Get(1 << 40)
	assert.False(t, ok)

	seen := 0
	m.ForEach(func(id int64, v int64) {
		seen++
		assert.Equal(t, expected[id], v)
	})
	assert.Equal(t, len(expected), seen)
}

func TestPackedMapExtremeIds(t *testing.T) {
	m := newPackedMap[float64](4)
	ids := []int64{0, -1, math.MinInt64, math.MaxInt64, 1 << 32}
	for i, id := range ids {
		m.Put(id, float64(i))
	}
	for i, id := range ids {
		v, ok := m.Get(id)
		require.True(t, ok)
		assert.Equal(t, float64(i), v)
	}
	assert.True(t, m.Put(math.MinInt64, 9))
	v, _ := m.Get(math.MinInt64)
	assert.Equal(t, 9.0, v)
	assert.EqualValues(t, len(ids), m.Len())
}

func TestCapacityFor(t *testing.T) {
	assert.EqualValues(t, minCapacity, capacityFor(0))
	assert.EqualValues(t, 16, capacityFor(11))
	assert.EqualValues(t, 32, capacityFor(12))
	for _, hint := range []uint64{100, 1000, 12345} {
		c := capacityFor(hint)
		assert.GreaterOrEqual(t, c*3, hint*4, hint)
	}
}

func TestPackedMapPresizedDoesNotGrow(t *testing.T) {
	m := newPackedMap[int64](1000)
	capacity := len(m.keys)
	for i := int64(0); i < 1000; i++ {
		m.Put(i, i)
	}
	assert.Equal(t, capacity, len(m.keys))
}
