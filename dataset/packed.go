package dataset

import (
	"math/bits"

	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/utils"
)

const (
	minCapacity = 16
	fibHash     = 0x9E3779B97F4A7C15
)

// Open addressing hash map from vertex id to value, with linear probing.
// Keys and values live in flat parallel slices and occupancy in a bitmap, so an entry costs 8 + sizeof(T) bytes
// plus slack for the load factor, and nothing is boxed.
type packedMap[T rule.Value] struct {
	keys  []int64
	vals  []T
	used  utils.Bitmap
	size  uint64
	shift uint8 // 64 - log2(len(keys)).
}

func newPackedMap[T rule.Value](hint uint64) *packedMap[T] {
	m := &packedMap[T]{}
	m.alloc(capacityFor(hint))
	return m
}

// Smallest power of two that holds hint entries under the 3/4 load factor.
func capacityFor(hint uint64) uint64 {
	return utils.Max(utils.RoundUpPow(hint+hint/3+1), minCapacity)
}

func (m *packedMap[T]) alloc(capacity uint64) {
	m.keys = make([]int64, capacity)
	m.vals = make([]T, capacity)
	m.used = utils.NewBitmap(capacity)
	m.size = 0
	m.shift = uint8(64 - bits.TrailingZeros64(capacity))
}

func (m *packedMap[T]) slot(id int64) uint64 {
	return (uint64(id) * fibHash) >> m.shift
}

func (m *packedMap[T]) mask() uint64 {
	return uint64(len(m.keys)) - 1
}

func (m *packedMap[T]) Len() uint64 {
	return m.size
}

// Inserts or overwrites. Returns true if an existing entry was overwritten.
func (m *packedMap[T]) Put(id int64, v T) (overwritten bool) {
	if (m.size+1)*4 > uint64(len(m.keys))*3 {
		m.grow()
	}
	mask := m.mask()
	for i := m.slot(id); ; i = (i + 1) & mask {
		if !m.used.QuickGet(i) {
			m.used.QuickSet(i)
			m.keys[i] = id
			m.vals[i] = v
			m.size++
			return false
		}
		if m.keys[i] == id {
			m.vals[i] = v
			return true
		}
	}
}

func (m *packedMap[T]) Get(id int64) (v T, ok bool) {
	mask := m.mask()
	for i := m.slot(id); m.used.QuickGet(i); i = (i + 1) & mask {
		if m.keys[i] == id {
			return m.vals[i], true
		}
	}
	return v, false
}

// Visits entries in slot order, which is fixed for a given sequence of insertions.
func (m *packedMap[T]) ForEach(f func(id int64, v T)) {
	for i := range m.keys {
		if m.used.QuickGet(uint64(i)) {
			f(m.keys[i], m.vals[i])
		}
	}
}

func (m *packedMap[T]) grow() {
	oldKeys, oldVals, oldUsed := m.keys, m.vals, m.used
	m.alloc(uint64(len(oldKeys)) * 2)
	mask := m.mask()
	for s := range oldKeys {
		if !oldUsed.QuickGet(uint64(s)) {
			continue
		}
		id := oldKeys[s]
		i := m.slot(id)
		for m.used.QuickGet(i) {
			i = (i + 1) & mask
		}
		m.used.QuickSet(i)
		m.keys[i] = id
		m.vals[i] = oldVals[s]
		m.size++
	}
}
