package utils

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Index view over an input array, so the heap can order positions without moving the values.
type indexedSf[T constraints.Ordered] struct {
	Index []int
	Input []T
}

func (s indexedSf[T]) Len() int { return len(s.Index) }
func (s indexedSf[T]) Swap(i, j int) {
	s.Index[i], s.Index[j] = s.Index[j], s.Index[i]
}

// Less reports whether the element with index i should sort before the element with index j.
// Ties go to the larger position, so the earliest of equal values survives the longest.
func (s indexedSf[T]) Less(i, j int) bool {
	a, b := s.Input[s.Index[i]], s.Input[s.Index[j]]
	if a == b {
		return s.Index[i] > s.Index[j]
	}
	return a < b
}

// For very small N, this is faster than sorting a large array.
// Does not modify input array.
// Largest values first; equal values keep their input order.
func FindTopNInArray[T constraints.Integer | constraints.Float](array []T, topCount uint32) []Pair[uint32, T] {
	topCount = Min(topCount, uint32(len(array)))
	if topCount == 0 {
		return nil
	}
	// Make a smallest first priority queue, starting with the first N elements.
	pq := PriorityQueueSf[T]{}
	pq.Init(array, int(topCount))

	// Replace the smallest-of-the-largest whenever a larger one is found. ( O(N * C log C) )
	for i := int(topCount); i < len(array); i++ {
		if array[pq.Peek()] < array[i] {
			pq.Replace(0, i)
		}
	}

	topSet := make([]Pair[uint32, T], topCount)
	for i := uint32(0); i < topCount; i++ {
		index := pq.Extract()
		// Backwards, because the smallest element is at the front.
		topSet[topCount-i-1] = Pair[uint32, T]{uint32(index), array[index]}
	}
	return topSet
}

// Smallest first priority queue, that works on indexes rather than sorting the input.
// Use Init instead of heap.Init, Extract instead of heap.Pop, and Replace instead of changing then calling heap.Fix.
type PriorityQueueSf[T constraints.Ordered] struct {
	indexedSf[T]
}

func (pq *PriorityQueueSf[T]) Init(input []T, size int) {
	pq.Input = input
	pq.Index = make([]int, size)
	for i := range pq.Index {
		pq.Index[i] = i
	}
	heap.Init(pq)
}

func (pq *PriorityQueueSf[T]) Extract() (v int) {
	return heap.Pop(pq).(int)
}

func (pq *PriorityQueueSf[T]) Peek() (idx int) {
	return pq.Index[0]
}

func (pq *PriorityQueueSf[T]) Replace(pos int, idx int) {
	pq.Index[pos] = idx
	heap.Fix(pq, pos)
}

// Heap functions below (prefer not to use them directly).

func (pq *PriorityQueueSf[T]) Push(x any) {
	pq.Index = append(pq.Index, x.(int))
}

func (pq *PriorityQueueSf[T]) Pop() any {
	last := len(pq.Index) - 1
	item := pq.Index[last]
	pq.Index = pq.Index[:last]
	return item
}
